// Package model holds the core data types shared by the sampler, the repositories and the
// persistence layer.
package model

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// SampledMethod identifies a method by the type it is addressed through and its reflected
// method. It is the identity key used when matching declarations to calls.
type SampledMethod struct {
	Target reflect.Type
	Method reflect.Method
}

// NewSampledMethod looks up the method name on target.
//
// A sampled method may have at most one result besides a trailing error.
func NewSampledMethod(target reflect.Type, name string) (SampledMethod, error) {
	if target == nil {
		return SampledMethod{}, NewInvalidConfigError("cannot sample method %s of a nil type", name)
	}

	method, ok := target.MethodByName(name)
	if !ok {
		return SampledMethod{}, NewInvalidConfigError("type %s has no method %s", target, name)
	}

	sm := SampledMethod{Target: target, Method: method}

	sig := sm.Signature()
	results := sig.NumOut()

	if results > 0 && sig.Out(results-1) == errorType {
		results--
	}

	if results > 1 {
		return SampledMethod{}, NewInvalidConfigError(
			"method %s returns %d values, a sampled method may return one value and an optional error",
			sm.Name(), sig.NumOut())
	}

	return sm, nil
}

// Name returns the method name.
func (s SampledMethod) Name() string {
	return s.Method.Name
}

// Signature returns the method's func type without the receiver.
func (s SampledMethod) Signature() reflect.Type {
	t := s.Method.Type
	if t == nil {
		return nil
	}

	if s.Target != nil && s.Target.Kind() == reflect.Interface {
		return t
	}

	in := make([]reflect.Type, 0, t.NumIn())
	for i := 1; i < t.NumIn(); i++ {
		in = append(in, t.In(i))
	}

	out := make([]reflect.Type, 0, t.NumOut())
	for i := 0; i < t.NumOut(); i++ {
		out = append(out, t.Out(i))
	}

	return reflect.FuncOf(in, out, t.IsVariadic())
}

// ParameterTypes returns the declared parameter types in order.
func (s SampledMethod) ParameterTypes() []reflect.Type {
	sig := s.Signature()
	types := make([]reflect.Type, 0, sig.NumIn())

	for i := 0; i < sig.NumIn(); i++ {
		types = append(types, sig.In(i))
	}

	return types
}

// ReturnType returns the declared result type, ignoring a trailing error. It returns nil
// for methods that only return an error or nothing at all.
func (s SampledMethod) ReturnType() reflect.Type {
	sig := s.Signature()
	for i := 0; i < sig.NumOut(); i++ {
		if sig.Out(i) != errorType {
			return sig.Out(i)
		}
	}

	return nil
}

// ReturnsError reports whether the last result is an error.
func (s SampledMethod) ReturnsError() bool {
	sig := s.Signature()
	return sig.NumOut() > 0 && sig.Out(sig.NumOut()-1) == errorType
}

// SameMethod reports whether both refer to a method with equal name and signature.
func (s SampledMethod) SameMethod(other SampledMethod) bool {
	return s.Method.Name == other.Method.Name && s.Signature() == other.Signature()
}

// IsCompatible reports whether a call addressed through wanted may be served by a sample
// declared on s: the wanted type must be assignable to s.Target and the methods must match.
func (s SampledMethod) IsCompatible(wanted SampledMethod) bool {
	if s.Target == nil || wanted.Target == nil {
		return false
	}

	return wanted.Target.AssignableTo(s.Target) && s.SameMethod(wanted)
}

// GenericString renders a stable textual id such as
// "example.com/pkg.Greeter.Greet(string) (string, error)".
func (s SampledMethod) GenericString() string {
	sig := strings.TrimPrefix(s.Signature().String(), "func")

	return typeName(s.Target) + "." + s.Method.Name + sig
}

func (s SampledMethod) String() string {
	return fmt.Sprintf("SampledMethod{target=%s, method=%s}", typeName(s.Target), s.Method.Name)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	if t.Kind() == reflect.Pointer && t.Elem().Name() != "" {
		return "(*" + qualifiedName(t.Elem()) + ")"
	}

	if t.Name() != "" {
		return qualifiedName(t)
	}

	return t.String()
}

func qualifiedName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}

	return t.PkgPath() + "." + t.Name()
}
