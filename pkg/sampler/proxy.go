package sampler

import (
	"log/slog"
	"reflect"

	"deepsampler.dev/pkg/deepsampler/pkg/model"
)

type proxyMode int

const (
	modeDeclare proxyMode = iota
	modeVerify
	modeLive
)

// Factory builds a sampler of T. The returned value must embed the given *Proxy and route
// every method through Proxy.Call; delegate is the real implementation, or the zero value
// when the sampler only declares or verifies samples.
//
//	func greeterSampler(p *sampler.Proxy, real Greeter) Greeter {
//		return &greeterProxy{Proxy: p, real: real}
//	}
//
//	func (g *greeterProxy) Greet(name string) (string, error) {
//		ret, err := g.Call("Greet", func(args []any) (any, error) {
//			return g.real.Greet(args[0].(string))
//		}, name)
//		return sampler.As[string](ret), err
//	}
type Factory[T any] func(p *Proxy, delegate T) T

// Proxy intercepts the method calls of a sampler.
type Proxy struct {
	session  *Session
	target   reflect.Type
	mode     proxyMode
	quantity Quantity
}

func (p *Proxy) proxy() *Proxy {
	return p
}

type proxied interface {
	proxy() *Proxy
}

// Target returns the type the proxy stands in for.
func (p *Proxy) Target() reflect.Type {
	return p.target
}

// Prepare returns a sampler whose method calls declare samples.
func Prepare[T any](s *Session, factory Factory[T]) T {
	var zero T
	return factory(&Proxy{session: s, target: typeOf[T](), mode: modeDeclare}, zero)
}

// Intercept returns a sampler whose method calls are served by the declared samples. Calls
// without a sample reach delegate.
func Intercept[T any](s *Session, factory Factory[T], delegate T) T {
	return factory(&Proxy{session: s, target: typeOf[T](), mode: modeLive}, delegate)
}

// VerifyCallQuantity returns a sampler whose method calls assert that the matching sample
// was invoked quantity times. A failed assertion panics with *model.VerifyError.
func VerifyCallQuantity[T any](s *Session, factory Factory[T], quantity Quantity) T {
	var zero T
	return factory(&Proxy{session: s, target: typeOf[T](), mode: modeVerify, quantity: quantity}, zero)
}

// Call dispatches a method call according to the proxy's mode. original runs the real
// method and may be nil if there is none.
//
// Declaring and verifying return the zero value of the method's result. Framework misuse
// panics with the typed error from package model; errors returned by answers and by the
// original method are returned.
func (p *Proxy) Call(name string, original model.OriginalMethod, args ...any) (any, error) {
	method, err := model.NewSampledMethod(p.target, name)
	if err != nil {
		panic(err)
	}

	switch p.mode {
	case modeDeclare:
		p.declare(method, args)
		return zeroResult(method), nil
	case modeVerify:
		p.verify(method, args)
		return zeroResult(method), nil
	default:
		return p.invoke(method, original, args)
	}
}

func (p *Proxy) declare(method model.SampledMethod, args []any) {
	samples := p.session.Samples()

	matchers := samples.TakeCurrentParameterMatchers()
	if len(matchers) > 0 && len(matchers) != len(args) {
		panic(&model.InvalidMatcherConfigError{Method: method, Matchers: len(matchers), Parameters: len(args)})
	}

	if len(matchers) == 0 {
		matchers = make([]model.ParameterMatcher, 0, len(args))
		for _, arg := range args {
			matchers = append(matchers, model.NewEqualsMatcher(arg))
		}
	}

	definition := model.NewSampleDefinition(method)
	definition.ParameterMatchers = matchers
	definition.ParameterValues = append([]any{}, args...)
	definition.MarkedForPersistence = samples.TakeMarkNextVoidSamplerForPersistence()

	samples.Add(definition)
}

func (p *Proxy) verify(method model.SampledMethod, args []any) {
	samples := p.session.Samples()
	executions := p.session.Executions()

	samples.ClearCurrentParameterMatchers()

	definition, err := samples.FindUnvalidated(method, args)
	if err != nil {
		panic(err)
	}

	expected := p.quantity.Times()

	if definition != nil {
		actual := executions.GetOrCreateBySample(definition).TimesInvoked()
		if actual != expected {
			panic(&model.VerifyError{Method: definition.SampledMethod(), Expected: expected, Actual: actual})
		}

		return
	}

	if expected == 0 {
		return
	}

	for _, similar := range samples.FindAllForMethod(method) {
		if times := executions.GetOrCreateBySample(similar).TimesInvoked(); times != 0 {
			panic(&model.VerifyError{
				Method:    method,
				Args:      args,
				OtherArgs: append([]any{}, similar.ParameterValues...),
				Actual:    times,
				Expected:  expected,
				SampleID:  similar.SampleID,
			})
		}
	}

	panic(&model.VerifyError{Method: method, Args: args, Expected: expected, Actual: 0})
}

func (p *Proxy) invoke(method model.SampledMethod, original model.OriginalMethod, args []any) (any, error) {
	definition, err := p.session.Samples().FindValidated(method, args)
	if err != nil {
		panic(err)
	}

	invocation := model.NewStubMethodInvocation(args, original)

	if definition == nil {
		return invocation.CallOriginalMethod()
	}

	executions := p.session.Executions()

	if definition.Answer == nil {
		ret, err := invocation.CallOriginalMethod()
		if err != nil {
			slog.Debug("call not recorded", "sample", definition.SampleID, "error", err)
			return ret, err
		}

		executions.AddMethodCall(definition, model.MethodCall{Args: append([]any{}, args...), ReturnValue: ret})

		return ret, nil
	}

	executions.Notify(definition)

	ret, err := definition.Answer(invocation)
	for _, processor := range executions.ReturnProcessors(definition) {
		ret = processor(definition, invocation, ret)
	}

	return ret, err
}

func zeroResult(method model.SampledMethod) any {
	rt := method.ReturnType()
	if rt == nil {
		return nil
	}

	return reflect.Zero(rt).Interface()
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// As converts the untyped result of Proxy.Call to T. nil becomes the zero value of T.
func As[T any](value any) T {
	var zero T

	if value == nil {
		return zero
	}

	if typed, ok := value.(T); ok {
		return typed
	}

	rv := reflect.ValueOf(value)
	if target := typeOf[T](); rv.Kind() == target.Kind() && rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface().(T)
	}

	panic(model.NewInvalidConfigError("a sample returned %s where %s was expected", rv.Type(), typeOf[T]()))
}

// Value drops the error of a (T, error) method call so it can be passed to Of.
func Value[T any](value T, _ error) T {
	return value
}
