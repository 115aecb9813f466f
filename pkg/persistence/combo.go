package persistence

import (
	"deepsampler.dev/pkg/deepsampler/pkg/model"
)

// PersistentMatcher compares the argument of a live call with the persisted argument.
type PersistentMatcher func(actual, persisted any) bool

// ComboMatcher acts as Live while samples are declared and matched. Samples loaded from a
// persisted model use Persistent against the persisted argument instead of equality.
type ComboMatcher struct {
	Live       model.ParameterMatcher
	Persistent PersistentMatcher
}

// NewComboMatcher returns a ComboMatcher.
func NewComboMatcher(live model.ParameterMatcher, persistent PersistentMatcher) *ComboMatcher {
	return &ComboMatcher{Live: live, Persistent: persistent}
}

// Matches implements model.ParameterMatcher.
func (m *ComboMatcher) Matches(actual any) bool {
	return m.Live.Matches(actual)
}

// Combo turns the matcher produced by placeholder into a ComboMatcher:
//
//	persistence.Combo(s, sampler.Any[string](s), func(actual, persisted string) bool {
//		return strings.EqualFold(actual, persisted)
//	})
//
// It panics with *model.InvalidConfigError if no matcher was registered.
func Combo[T any](repos Repositories, placeholder T, persistent func(actual, persisted T) bool) T {
	typed := func(actual, persisted any) bool {
		a, ok := asType[T](actual)
		if !ok {
			return false
		}

		p, ok := asType[T](persisted)

		return ok && persistent(a, p)
	}

	wrapped := repos.Samples().ReplaceLastParameterMatcher(func(live model.ParameterMatcher) model.ParameterMatcher {
		return NewComboMatcher(live, typed)
	})
	if !wrapped {
		panic(model.NewInvalidConfigError("Combo needs a matcher such as sampler.Any as its placeholder"))
	}

	return placeholder
}

func asType[T any](value any) (T, bool) {
	if value == nil {
		var zero T
		return zero, true
	}

	typed, ok := value.(T)

	return typed, ok
}
