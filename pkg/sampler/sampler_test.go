package sampler

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsampler.dev/pkg/deepsampler/pkg/model"
)

type bean struct {
	Name string
}

func (b *bean) Equal(other *bean) bool {
	return b != nil && other != nil && b.Name == other.Name
}

type handle struct{ id int }

var (
	beanA = &bean{Name: "A"}
	beanB = &bean{Name: "B"}
)

type service interface {
	EchoParameter(b *bean) *bean
	Greet(name string) (string, error)
	Add(a, b int) int
	Touch(h *handle) int
	Reset() error
}

type realService struct {
	resets int
}

func (r *realService) EchoParameter(b *bean) *bean { return b }
func (r *realService) Greet(name string) (string, error) { return "hello " + name, nil }
func (r *realService) Add(a, b int) int { return a + b }
func (r *realService) Touch(*handle) int { return 0 }
func (r *realService) Reset() error {
	r.resets++
	return nil
}

type serviceProxy struct {
	*Proxy
	real service
}

func serviceSampler(p *Proxy, real service) service {
	return &serviceProxy{Proxy: p, real: real}
}

func (s *serviceProxy) EchoParameter(b *bean) *bean {
	ret, _ := s.Call("EchoParameter", func(args []any) (any, error) {
		return s.real.EchoParameter(As[*bean](args[0])), nil
	}, b)

	return As[*bean](ret)
}

func (s *serviceProxy) Greet(name string) (string, error) {
	ret, err := s.Call("Greet", func(args []any) (any, error) {
		return s.real.Greet(args[0].(string))
	}, name)

	return As[string](ret), err
}

func (s *serviceProxy) Add(a, b int) int {
	ret, _ := s.Call("Add", func(args []any) (any, error) {
		return s.real.Add(args[0].(int), args[1].(int)), nil
	}, a, b)

	return As[int](ret)
}

func (s *serviceProxy) Touch(h *handle) int {
	ret, _ := s.Call("Touch", func(args []any) (any, error) {
		return s.real.Touch(As[*handle](args[0])), nil
	}, h)

	return As[int](ret)
}

func (s *serviceProxy) Reset() error {
	_, err := s.Call("Reset", func([]any) (any, error) {
		return nil, s.real.Reset()
	})

	return err
}

func recoverError(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}

			err = fmt.Errorf("%v", r)
		}
	}()

	fn()

	return nil
}

func TestAnyMatcherAcceptsEveryValue(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)

	Of(s, declare.EchoParameter(Any[*bean](s))).Is(beanA)

	live := Intercept(s, serviceSampler, service(&realService{}))
	assert.Same(t, beanA, live.EchoParameter(beanA))
	assert.Same(t, beanA, live.EchoParameter(beanB))
	assert.Same(t, beanA, live.EchoParameter(nil))
}

func TestFirstDeclaredSampleWins(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)

	Of(s, declare.Add(EqualTo(s, 1), Any[int](s))).Is(10)
	Of(s, declare.Add(Any[int](s), Any[int](s))).Is(20)

	live := Intercept(s, serviceSampler, service(&realService{}))
	assert.Equal(t, 10, live.Add(1, 5))
	assert.Equal(t, 20, live.Add(2, 5))
}

func TestLiteralArgumentsBecomeEqualsMatchers(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)

	Of(s, Value(declare.Greet("bob"))).Is("hi bob")

	definition := s.Samples().CurrentSampleDefinition()
	require.NotNil(t, definition)
	assert.Equal(t, []any{"bob"}, definition.ParameterValues)

	live := Intercept(s, serviceSampler, service(&realService{}))
	got, err := live.Greet("bob")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", got)

	err = recoverError(func() { _, _ = live.Greet("alice") })

	var noMatch *model.NoMatchingParametersFoundError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, []any{"alice"}, noMatch.Args)
}

func TestUnsampledMethodCallsOriginal(t *testing.T) {
	s := NewSession()
	live := Intercept(s, serviceSampler, service(&realService{}))

	assert.Equal(t, 3, live.Add(1, 2))

	got, err := live.Greet("x")
	require.NoError(t, err)
	assert.Equal(t, "hello x", got)
}

func TestMixedMatchersAndLiteralsAreRejected(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)

	err := recoverError(func() { declare.Add(Any[int](s), 2) })

	var cfg *model.InvalidMatcherConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, 1, cfg.Matchers)
	assert.Equal(t, 2, cfg.Parameters)
}

func TestEqualToRequiresValueEquality(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)

	Of(s, declare.Touch(EqualTo(s, &handle{id: 1}))).Is(1)

	live := Intercept(s, serviceSampler, service(&realService{}))
	err := recoverError(func() { live.Touch(&handle{id: 1}) })

	var cfg *model.InvalidConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Contains(t, cfg.Error(), "*sampler.handle")
}

func TestSameAsMatchesIdentity(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)

	h := &handle{id: 1}
	Of(s, declare.Touch(SameAs(s, h))).Is(7)
	Of(s, declare.Touch(Any[*handle](s))).Is(0)

	live := Intercept(s, serviceSampler, service(&realService{}))
	assert.Equal(t, 7, live.Touch(h))
	assert.Equal(t, 0, live.Touch(&handle{id: 1}))
}

func TestCustomMatcher(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)

	Of(s, Value(declare.Greet(Matcher(s, func(name string) bool {
		return strings.HasPrefix(name, "Dr. ")
	})))).Is("good day")

	live := Intercept(s, serviceSampler, service(&realService{}))
	got, err := live.Greet("Dr. Who")
	require.NoError(t, err)
	assert.Equal(t, "good day", got)
}

func TestNotASampler(t *testing.T) {
	s := NewSession()
	real := &realService{}

	err := recoverError(func() { Of(s, real.Add(1, 2)) })

	var notSampler *model.NotASamplerError
	require.ErrorAs(t, err, &notSampler)

	declare := Prepare(s, serviceSampler)
	Of(s, declare.Add(1, 2)).Is(5)

	err = recoverError(func() { Of(s, real.Add(1, 2)) })
	require.ErrorAs(t, err, &notSampler, "a second Of without a new sampler call must fail")

	err = recoverError(func() { OfVoid(s, func() { _ = real.Reset() }) })
	require.ErrorAs(t, err, &notSampler)

	err = recoverError(func() { ForPersistence(s, service(real)) })
	require.ErrorAs(t, err, &notSampler)
}

func TestBuilderAnswers(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		declare func(s *Session, declare service)
		want    string
		wantErr error
	}{
		{
			name: "answers with invocation arguments",
			declare: func(s *Session, declare service) {
				Of(s, Value(declare.Greet(Any[string](s)))).Answers(func(inv *model.StubMethodInvocation) (string, error) {
					return "answered " + inv.Args[0].(string), nil
				})
			},
			want: "answered bob",
		},
		{
			name: "returns error",
			declare: func(s *Session, declare service) {
				Of(s, Value(declare.Greet(Any[string](s)))).ReturnsError(boom)
			},
			wantErr: boom,
		},
		{
			name: "calls original method",
			declare: func(s *Session, declare service) {
				Of(s, Value(declare.Greet(Any[string](s)))).CallsOriginalMethod()
			},
			want: "hello bob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			tt.declare(s, Prepare(s, serviceSampler))

			got, err := Intercept(s, serviceSampler, service(&realService{})).Greet("bob")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVoidSamples(t *testing.T) {
	boom := errors.New("boom")

	t.Run("does nothing", func(t *testing.T) {
		s := NewSession()
		declare := Prepare(s, serviceSampler)
		OfVoid(s, func() { _ = declare.Reset() }).DoesNothing()

		real := &realService{}
		require.NoError(t, Intercept(s, serviceSampler, service(real)).Reset())
		assert.Equal(t, 0, real.resets)
	})

	t.Run("returns error", func(t *testing.T) {
		s := NewSession()
		declare := Prepare(s, serviceSampler)
		OfVoid(s, func() { _ = declare.Reset() }).ReturnsError(boom)

		require.ErrorIs(t, Intercept(s, serviceSampler, service(&realService{})).Reset(), boom)
	})

	t.Run("calls original method", func(t *testing.T) {
		s := NewSession()
		declare := Prepare(s, serviceSampler)
		OfVoid(s, func() { _ = declare.Reset() }).CallsOriginalMethod()

		real := &realService{}
		require.NoError(t, Intercept(s, serviceSampler, service(real)).Reset())
		assert.Equal(t, 1, real.resets)
	})
}

func TestVerifyCallQuantity(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)
	Of(s, declare.Add(1, 2)).Is(3)
	Of(s, declare.Add(2, 2)).Is(4)

	live := Intercept(s, serviceSampler, service(&realService{}))
	live.Add(1, 2)
	live.Add(1, 2)

	VerifyCallQuantity(s, serviceSampler, Twice).Add(1, 2)
	VerifyCallQuantity(s, serviceSampler, Never).Add(2, 2)
	VerifyCallQuantity(s, serviceSampler, Never).Add(9, 9)

	var verr *model.VerifyError

	err := recoverError(func() { VerifyCallQuantity(s, serviceSampler, Once).Add(1, 2) })
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Expected)
	assert.Equal(t, 2, verr.Actual)

	err = recoverError(func() { VerifyCallQuantity(s, serviceSampler, Once).Add(9, 9) })
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []any{1, 2}, verr.OtherArgs, "reports the arguments the method was called with instead")
	assert.Contains(t, verr.Error(), "was actually called with")
}

func TestVerifyCallQuantity_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("verification succeeds exactly for the observed count", prop.ForAll(
		func(calls int, other int) bool {
			s := NewSession()
			declare := Prepare(s, serviceSampler)
			Of(s, Value(declare.Greet("bob"))).Is("hi")

			live := Intercept(s, serviceSampler, service(&realService{}))
			for i := 0; i < calls; i++ {
				_, _ = live.Greet("bob")
			}

			if err := recoverError(func() { _, _ = VerifyCallQuantity(s, serviceSampler, Times(calls)).Greet("bob") }); err != nil {
				return false
			}

			if other == calls {
				return true
			}

			var verr *model.VerifyError

			err := recoverError(func() { _, _ = VerifyCallQuantity(s, serviceSampler, Times(other)).Greet("bob") })

			return errors.As(err, &verr) && verr.Actual == calls
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

func TestReturnProcessors(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)

	Of(s, Value(declare.Greet("a"))).Is("a")
	UseForLastSample(s, func(_ *model.SampleDefinition, _ *model.StubMethodInvocation, v any) any {
		return v.(string) + "-local"
	})
	Of(s, Value(declare.Greet("b"))).Is("b")
	UseGlobal(s, func(_ *model.SampleDefinition, _ *model.StubMethodInvocation, v any) any {
		return v.(string) + "-global"
	})

	live := Intercept(s, serviceSampler, service(&realService{}))

	got, err := live.Greet("a")
	require.NoError(t, err)
	assert.Equal(t, "a-global-local", got)

	got, err = live.Greet("b")
	require.NoError(t, err)
	assert.Equal(t, "b-global", got)
}

func TestPersistentDeclarations(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)

	PersistentOf(s, Value(declare.Greet(Any[string](s)))).HasID("greet")

	greet := s.Samples().LastSampleDefinition()
	require.NotNil(t, greet)
	assert.True(t, greet.MarkedForPersistence)
	assert.Equal(t, "greet", greet.SampleID)
	assert.Nil(t, greet.Answer)

	_ = ForPersistence(s, declare).Reset()
	SetIDToLastMethodCall(s, "reset")

	reset := s.Samples().CurrentSampleDefinition()
	assert.True(t, reset.MarkedForPersistence)
	assert.Equal(t, "reset", reset.SampleID)

	declare.Add(1, 1)
	assert.False(t, s.Samples().CurrentSampleDefinition().MarkedForPersistence, "the mark applies to one call only")
}

func TestRecordingCallsWithoutAnswer(t *testing.T) {
	s := NewSession()
	declare := Prepare(s, serviceSampler)
	PersistentOf(s, Value(declare.Greet(Any[string](s))))

	live := Intercept(s, serviceSampler, service(&realService{}))
	got, err := live.Greet("bob")
	require.NoError(t, err)
	assert.Equal(t, "hello bob", got)

	definition := s.Samples().LastSampleDefinition()
	info := s.Executions().GetOrCreateBySample(definition)
	assert.Equal(t, 1, info.TimesInvoked())
	assert.Equal(t, []model.MethodCall{{Args: []any{"bob"}, ReturnValue: "hello bob"}}, info.MethodCalls())
}

func TestSessionScopes(t *testing.T) {
	t.Run("local sessions are isolated", func(t *testing.T) {
		first, second := NewSession(), NewSession()

		Of(first, Prepare(first, serviceSampler).Add(1, 1)).Is(5)

		assert.Equal(t, 1, first.Samples().Size())
		assert.True(t, second.Samples().IsEmpty())
	})

	t.Run("singleton sessions share samples", func(t *testing.T) {
		first, second := NewSession(), NewSession()
		require.NoError(t, first.SetScope(ScopeSingleton))
		require.NoError(t, second.SetScope(ScopeSingleton))

		defer func() {
			require.NoError(t, first.SetScope(ScopeLocal))
		}()

		Of(first, Prepare(first, serviceSampler).Add(1, 1)).Is(5)

		assert.Equal(t, 5, Intercept(second, serviceSampler, service(&realService{})).Add(1, 1))
		assert.Equal(t, ScopeSingleton, second.Scope())
	})

	t.Run("switching scope drops previous samples", func(t *testing.T) {
		s := NewSession()
		Of(s, Prepare(s, serviceSampler).Add(1, 1)).Is(5)

		require.NoError(t, s.SetScope(ScopeLocal))
		assert.True(t, s.Samples().IsEmpty())
	})

	t.Run("unknown scope", func(t *testing.T) {
		require.Error(t, NewSession().SetScope(ScopeType(7)))
	})

	t.Run("clear", func(t *testing.T) {
		s := NewSession()
		Of(s, Prepare(s, serviceSampler).Add(1, 1)).Is(5)
		Intercept(s, serviceSampler, service(&realService{})).Add(1, 1)

		s.Clear()
		assert.True(t, s.Samples().IsEmpty())
		assert.Empty(t, s.Executions().GetAll())
	})
}

func TestAs(t *testing.T) {
	type celsius float64

	assert.Equal(t, 0, As[int](nil))
	assert.Equal(t, "x", As[string]("x"))
	assert.Equal(t, celsius(1.5), As[celsius](1.5))
	assert.Panics(t, func() { As[int]("x") })
}
