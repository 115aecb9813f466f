package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsampler.dev/pkg/deepsampler/pkg/bean"
	"deepsampler.dev/pkg/deepsampler/pkg/model"
	"deepsampler.dev/pkg/deepsampler/pkg/sampler"
)

type item struct {
	Name  string
	Price int64
}

type catalog interface {
	Find(name string) (*item, error)
	Count() int
	Price(it *item) int64
}

type realCatalog struct {
	calls int
}

func (c *realCatalog) Find(name string) (*item, error) {
	c.calls++
	return &item{Name: name, Price: int64(len(name))}, nil
}

func (c *realCatalog) Count() int {
	c.calls++
	return 42
}

func (c *realCatalog) Price(it *item) int64 {
	c.calls++
	if it == nil {
		return -1
	}

	return it.Price
}

// flakyCatalog fails every lookup of "down".
type flakyCatalog struct {
	realCatalog
}

func (c *flakyCatalog) Find(name string) (*item, error) {
	if name == "down" {
		return nil, errors.New("backend down")
	}

	return c.realCatalog.Find(name)
}

type catalogProxy struct {
	*sampler.Proxy
	real catalog
}

func catalogSampler(p *sampler.Proxy, real catalog) catalog {
	return &catalogProxy{Proxy: p, real: real}
}

func (c *catalogProxy) Find(name string) (*item, error) {
	ret, err := c.Call("Find", func(args []any) (any, error) {
		return c.real.Find(args[0].(string))
	}, name)

	return sampler.As[*item](ret), err
}

func (c *catalogProxy) Price(it *item) int64 {
	ret, _ := c.Call("Price", func(args []any) (any, error) {
		return c.real.Price(args[0].(*item)), nil
	}, it)

	return sampler.As[int64](ret)
}

func (c *catalogProxy) Count() int {
	ret, _ := c.Call("Count", func([]any) (any, error) {
		return c.real.Count(), nil
	})

	return sampler.As[int](ret)
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

func declareFind(s *sampler.Session) string {
	declare := sampler.Prepare(s, catalogSampler)
	sampler.PersistentOf(s, sampler.Value(declare.Find(sampler.Any[string](s))))

	return s.Samples().LastSampleDefinition().SampleID
}

func TestRecordThenLoad(t *testing.T) {
	ctx := context.Background()
	source := NewMemorySource(nil)

	recording := sampler.NewSession()
	id := declareFind(recording)

	live := sampler.Intercept(recording, catalogSampler, catalog(&realCatalog{}))
	for _, name := range []string{"a", "bb", "a"} {
		_, err := live.Find(name)
		require.NoError(t, err)
	}

	recorder := NewManager(recording, source)
	recorder.newID = func() string { return "recording-1" }
	require.NoError(t, recorder.Record(ctx))

	saved, err := source.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "recording-1", saved.ID)
	assert.Equal(t, []string{id}, saved.IDs())
	require.Len(t, saved.Samples[id].Calls, 2, "identical calls are recorded once")
	assert.Equal(t, Call{
		Parameter:   Parameter{Args: []any{"a"}},
		ReturnValue: &bean.DefaultBean{Values: map[string]any{"0$Name": "a", "0$Price": int64(1)}},
	}, saved.Samples[id].Calls[0])

	replay := sampler.NewSession()
	declareFind(replay)
	require.NoError(t, NewManager(replay, source).Load(ctx))

	assert.Equal(t, 2, replay.Samples().Size())

	real := &realCatalog{}
	replayed := sampler.Intercept(replay, catalogSampler, catalog(real))

	got, err := replayed.Find("bb")
	require.NoError(t, err)
	assert.Equal(t, &item{Name: "bb", Price: 2}, got)
	assert.Zero(t, real.calls, "loaded samples answer without the real catalog")

	err = recoverError(func() { _, _ = replayed.Find("zzz") })

	var noMatch *model.NoMatchingParametersFoundError
	require.ErrorAs(t, err, &noMatch)
}

func TestRecordSkipsFailedCalls(t *testing.T) {
	ctx := context.Background()
	source := NewMemorySource(nil)

	recording := sampler.NewSession()
	id := declareFind(recording)

	live := sampler.Intercept(recording, catalogSampler, catalog(&flakyCatalog{}))

	_, err := live.Find("a")
	require.NoError(t, err)

	_, err = live.Find("down")
	require.EqualError(t, err, "backend down")

	require.NoError(t, NewManager(recording, source).Record(ctx))

	saved, err := source.Load(ctx)
	require.NoError(t, err)
	require.Len(t, saved.Samples[id].Calls, 1)
	assert.Equal(t, []any{"a"}, saved.Samples[id].Calls[0].Parameter.Args)

	replay := sampler.NewSession()
	declareFind(replay)
	require.NoError(t, NewManager(replay, source).Load(ctx))

	replayed := sampler.Intercept(replay, catalogSampler, catalog(&realCatalog{}))

	err = recoverError(func() { _, _ = replayed.Find("down") })

	var noMatch *model.NoMatchingParametersFoundError
	require.ErrorAs(t, err, &noMatch, "a failed call is not replayed as a success")
}

func TestRecordOnlyFailedCallsPersistsNothing(t *testing.T) {
	recording := sampler.NewSession()
	declareFind(recording)

	live := sampler.Intercept(recording, catalogSampler, catalog(&flakyCatalog{}))

	_, err := live.Find("down")
	require.Error(t, err)

	persisted, err := NewManager(recording).BuildModel()
	require.NoError(t, err)
	assert.Zero(t, persisted.CallCount())
}

func TestReplayNilPointerArgument(t *testing.T) {
	ctx := context.Background()
	source := NewMemorySource(nil)

	declarePrice := func(s *sampler.Session) {
		declare := sampler.Prepare(s, catalogSampler)
		sampler.PersistentOf(s, declare.Price(sampler.Any[*item](s))).HasID("catalog.Price")
	}

	recording := sampler.NewSession()
	declarePrice(recording)

	live := sampler.Intercept(recording, catalogSampler, catalog(&realCatalog{}))
	assert.Equal(t, int64(-1), live.Price(nil))
	require.NoError(t, NewManager(recording, source).Record(ctx))

	replay := sampler.NewSession()
	declarePrice(replay)
	require.NoError(t, NewManager(replay, source).Load(ctx))

	real := &realCatalog{}
	replayed := sampler.Intercept(replay, catalogSampler, catalog(real))

	assert.NotPanics(t, func() {
		assert.Equal(t, int64(-1), replayed.Price(nil))
	})
	assert.Zero(t, real.calls)
}

func TestRecordIgnoresSamplesWithoutCalls(t *testing.T) {
	s := sampler.NewSession()
	declareFind(s)

	persisted, err := NewManager(s).BuildModel()
	require.NoError(t, err)
	assert.Empty(t, persisted.Samples)
	assert.NotEmpty(t, persisted.ID)
}

func countModel(ids ...string) *Model {
	persisted := NewModel("model")
	for i, id := range ids {
		persisted.AddCall(id, Call{ReturnValue: i + 10})
	}

	return persisted
}

func declareCount(s *sampler.Session, id string) {
	declare := sampler.Prepare(s, catalogSampler)
	sampler.PersistentOf(s, declare.Count()).HasID(id)
}

func TestLoadDiscardsSamplesWithoutDeclaration(t *testing.T) {
	s := sampler.NewSession()
	declareCount(s, "A")

	require.NoError(t, NewManager(s, NewMemorySource(countModel("A", "B"))).Load(context.Background()))

	samples := s.Samples().Samples()
	require.Len(t, samples, 1)
	assert.Equal(t, "A", samples[0].SampleID)
	assert.Equal(t, 10, sampler.Intercept(s, catalogSampler, catalog(&realCatalog{})).Count())
}

func TestLoadFailsWhenNothingMatches(t *testing.T) {
	s := sampler.NewSession()
	declareCount(s, "A")

	err := NewManager(s, NewMemorySource(countModel("B"))).Load(context.Background())

	var empty *NoSamplesLoadedError
	require.ErrorAs(t, err, &empty)
}

func TestLoadRejectsParameterCountMismatch(t *testing.T) {
	s := sampler.NewSession()
	declareCount(s, "A")

	persisted := NewModel("model")
	persisted.AddCall("A", Call{Parameter: Parameter{Args: []any{"unexpected"}}, ReturnValue: 1})

	err := NewManager(s, NewMemorySource(persisted)).Load(context.Background())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "0 parameters but 1")
}

func TestLoadReportsArgumentsRejectedByDeclaration(t *testing.T) {
	s := sampler.NewSession()
	declare := sampler.Prepare(s, catalogSampler)
	sampler.PersistentOf(s, sampler.Value(declare.Find("a")))
	id := s.Samples().LastSampleDefinition().SampleID

	persisted := NewModel("model")
	persisted.AddCall(id, Call{Parameter: Parameter{Args: []any{"a"}}})
	persisted.AddCall(id, Call{Parameter: Parameter{Args: []any{"z"}}})

	err := NewManager(s, NewMemorySource(persisted)).Load(context.Background())

	var notMatched *ParametersAreNotMatchedError
	require.ErrorAs(t, err, &notMatched)
	assert.Equal(t, []MissedCall{{ID: id, Args: []any{"z"}}}, notMatched.Calls)
}

func TestLoadLastSourceWins(t *testing.T) {
	s := sampler.NewSession()
	declareCount(s, "A")
	declareCount(s, "B")

	m := NewManager(s, NewMemorySource(countModel("A"))).AddSource(NewMemorySource(countModel("B")))
	require.NoError(t, m.Load(context.Background()))

	samples := s.Samples().Samples()
	require.Len(t, samples, 1)
	assert.Equal(t, "B", samples[0].SampleID)
}

func TestLoadPropagatesSourceErrors(t *testing.T) {
	s := sampler.NewSession()
	declareCount(s, "A")

	err := NewManager(s, NewMemorySource(nil)).Load(context.Background())
	require.ErrorIs(t, err, ErrNothingSaved)
}

func TestComboMatcher(t *testing.T) {
	tests := []struct {
		name      string
		persisted string
		call      string
		wantMatch bool
	}{
		{"persisted and called with X", "X", "X", true},
		{"called with another value", "X", "Y", false},
		{"persisted another value", "Y", "X", true},
		{"persisted and called with another value", "Y", "Y", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampler.NewSession()
			declare := sampler.Prepare(s, catalogSampler)

			sampler.PersistentOf(s, sampler.Value(declare.Find(Combo(s, sampler.Any[string](s), func(actual, _ string) bool {
				return actual == "X"
			})))).HasID("find")

			combo, ok := s.Samples().LastSampleDefinition().ParameterMatchers[0].(*ComboMatcher)
			require.True(t, ok)
			assert.True(t, combo.Matches("anything"), "declared samples use the live matcher")

			persisted := NewModel("model")
			persisted.AddCall("find", Call{
				Parameter:   Parameter{Args: []any{tt.persisted}},
				ReturnValue: &bean.DefaultBean{Values: map[string]any{"0$Name": "loaded"}},
			})
			require.NoError(t, NewManager(s, NewMemorySource(persisted)).Load(context.Background()))

			live := sampler.Intercept(s, catalogSampler, catalog(&realCatalog{}))

			var got *item

			err := recoverError(func() { got, _ = live.Find(tt.call) })
			if !tt.wantMatch {
				var noMatch *model.NoMatchingParametersFoundError
				require.ErrorAs(t, err, &noMatch)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, &item{Name: "loaded"}, got)
		})
	}
}

func TestComboNeedsMatcher(t *testing.T) {
	s := sampler.NewSession()

	err := recoverError(func() {
		Combo(s, "literal", func(_, _ string) bool { return true })
	})

	var cfg *model.InvalidConfigError
	require.ErrorAs(t, err, &cfg)
}

func TestClosestDeclaredID(t *testing.T) {
	d := declarations{ids: []string{"catalog.Find", "catalog.Count"}}

	assert.Equal(t, "catalog.Find", d.closest("catalog.Fnd"))
	assert.Equal(t, "", declarations{}.closest("x"))
}

func TestModelMergeDeduplicates(t *testing.T) {
	first := NewModel("first")
	assert.True(t, first.AddCall("a", Call{ReturnValue: 1}))
	assert.False(t, first.AddCall("a", Call{ReturnValue: 1}))

	second := NewModel("second")
	second.AddCall("a", Call{ReturnValue: 1})
	second.AddCall("a", Call{ReturnValue: 2})
	second.AddCall("b", Call{Parameter: Parameter{Args: []any{"x"}}})

	first.Merge(second)

	assert.Equal(t, []string{"a", "b"}, first.IDs())
	assert.Equal(t, 3, first.CallCount())
}
