package sampler

import (
	"deepsampler.dev/pkg/deepsampler/pkg/model"
)

// The matcher functions register a matcher for the next parameter of the declaration in
// progress and return a placeholder of the parameter's type. Use matchers for all
// parameters of a call or for none.

// Any accepts every value.
func Any[T any](s *Session) T {
	return MatchWith[T](s, model.AnyMatcher())
}

// EqualTo accepts values equal to expected.
func EqualTo[T any](s *Session, expected T) T {
	return MatchWith[T](s, model.NewEqualsMatcher(expected))
}

// SameAs accepts expected itself.
func SameAs[T any](s *Session, expected T) T {
	return MatchWith[T](s, model.NewSameMatcher(expected))
}

// Matcher accepts values satisfying predicate. Values of another type never match.
func Matcher[T any](s *Session, predicate func(actual T) bool) T {
	return MatchWith[T](s, model.MatcherFunc(func(actual any) bool {
		if actual == nil {
			var zero T
			return predicate(zero)
		}

		typed, ok := actual.(T)

		return ok && predicate(typed)
	}))
}

// MatchWith registers a custom matcher.
func MatchWith[T any](s *Session, matcher model.ParameterMatcher) T {
	s.Samples().AddCurrentParameterMatcher(matcher)

	var zero T

	return zero
}
