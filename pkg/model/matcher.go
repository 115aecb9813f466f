package model

import (
	"reflect"
)

// ParameterMatcher decides whether an actual argument satisfies a declared parameter.
type ParameterMatcher interface {
	Matches(actual any) bool
}

// MatcherFunc adapts a plain predicate to ParameterMatcher.
type MatcherFunc func(actual any) bool

// Matches implements ParameterMatcher.
func (f MatcherFunc) Matches(actual any) bool {
	return f(actual)
}

// AnyMatcher accepts every value, nil included.
func AnyMatcher() ParameterMatcher {
	return MatcherFunc(func(any) bool { return true })
}

// EqualsMatcher compares by value equality.
//
// Matches panics with an *InvalidConfigError when the actual value's type has no value
// equality (see CheckEquality), since such a matcher would silently never match.
type EqualsMatcher struct {
	Expected any
}

// NewEqualsMatcher returns a matcher comparing against expected.
func NewEqualsMatcher(expected any) *EqualsMatcher {
	return &EqualsMatcher{Expected: expected}
}

// Matches implements ParameterMatcher.
func (m *EqualsMatcher) Matches(actual any) bool {
	if err := CheckEquality(actual); err != nil {
		panic(err)
	}

	return ValuesEqual(m.Expected, actual)
}

// SameMatcher compares by identity.
type SameMatcher struct {
	Expected any
}

// NewSameMatcher returns a matcher accepting only expected itself.
func NewSameMatcher(expected any) *SameMatcher {
	return &SameMatcher{Expected: expected}
}

// Matches implements ParameterMatcher.
func (m *SameMatcher) Matches(actual any) bool {
	return Same(m.Expected, actual)
}

// CheckEquality returns an *InvalidConfigError if values of v's type cannot be compared by
// value. Types declaring an Equal method always pass; pointers, funcs, channels and unsafe
// pointers without one fail. A nil value passes, typed nils included.
func CheckEquality(v any) error {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
	}

	t := rv.Type()
	if equalMethod(t) != nil {
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return NewInvalidConfigError("the type %s must implement Equal(%s) bool if you want to use an EqualsMatcher", t, t)
	default:
		return nil
	}
}

// ValuesEqual compares two values using an Equal method when the type declares one and
// reflect.DeepEqual otherwise.
func ValuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if eq, ok := callEqual(actual, expected); ok {
		return eq
	}

	return reflect.DeepEqual(expected, actual)
}

// Same reports identity: reference kinds compare by address, comparable values by ==.
func Same(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	ev := reflect.ValueOf(expected)
	av := reflect.ValueOf(actual)

	if ev.Type() != av.Type() {
		return false
	}

	switch ev.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ev.Pointer() == av.Pointer()
	}

	if ev.Type().Comparable() {
		return expected == actual
	}

	return false
}

// equalMethod returns the Equal method of t if it has the shape Equal(X) bool where t is
// assignable to X, or *t is and t is a pointer.
func equalMethod(t reflect.Type) *reflect.Method {
	m, ok := t.MethodByName("Equal")
	if !ok {
		return nil
	}

	// Method.Type includes the receiver for concrete types.
	mt := m.Type
	if mt.NumIn() != 2 || mt.NumOut() != 1 || mt.Out(0).Kind() != reflect.Bool {
		return nil
	}

	param := mt.In(1)
	if t.AssignableTo(param) || (t.Kind() == reflect.Pointer && t.Elem().AssignableTo(param)) {
		return &m
	}

	return nil
}

func callEqual(receiver, other any) (bool, bool) {
	rv := reflect.ValueOf(receiver)

	m := equalMethod(rv.Type())
	if m == nil {
		return false, false
	}

	param := m.Type.In(1)
	ov := reflect.ValueOf(other)

	switch {
	case ov.Type().AssignableTo(param):
	case ov.Kind() == reflect.Pointer && ov.Type().Elem().AssignableTo(param):
		if ov.IsNil() {
			return false, true
		}

		ov = ov.Elem()
	default:
		return false, true
	}

	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return false, true
	}

	return rv.MethodByName("Equal").Call([]reflect.Value{ov})[0].Bool(), true
}
