package sampler

import (
	"deepsampler.dev/pkg/deepsampler/pkg/model"
)

// SampleBuilder sets the behaviour of a sample whose method returns T.
type SampleBuilder[T any] struct {
	definition *model.SampleDefinition
}

// Of starts a sample for the sampler call evaluated as its argument:
//
//	sampler.Of(s, greeter.Count()).Is(3)
//
// It panics with *model.NotASamplerError if the argument was not produced by a prepared
// sampler.
func Of[T any](s *Session, _ T) *SampleBuilder[T] {
	return &SampleBuilder[T]{definition: commitCurrent(s)}
}

// Definition returns the sample being built.
func (b *SampleBuilder[T]) Definition() *model.SampleDefinition {
	return b.definition
}

// Is makes the sample return value.
func (b *SampleBuilder[T]) Is(value T) {
	b.definition.Answer = model.FixedAnswer(value)
}

// Answers makes the sample compute its result with answer.
func (b *SampleBuilder[T]) Answers(answer func(invocation *model.StubMethodInvocation) (T, error)) {
	b.definition.Answer = func(invocation *model.StubMethodInvocation) (any, error) {
		return answer(invocation)
	}
}

// ReturnsError makes the sample fail with err.
func (b *SampleBuilder[T]) ReturnsError(err error) {
	b.definition.Answer = model.ErrorAnswer(err)
}

// CallsOriginalMethod makes the sample run the real method.
func (b *SampleBuilder[T]) CallsOriginalMethod() {
	b.definition.Answer = model.OriginalAnswer()
}

// VoidSampleBuilder sets the behaviour of a sample whose method has no result besides an
// optional error.
type VoidSampleBuilder struct {
	definition *model.SampleDefinition
}

// OfVoid starts a sample for the sampler call made inside call:
//
//	sampler.OfVoid(s, func() { _ = greeter.Reset() }).DoesNothing()
func OfVoid(s *Session, call func()) *VoidSampleBuilder {
	samples := s.Samples()
	before := samples.CurrentSampleDefinition()

	call()

	current := samples.CurrentSampleDefinition()
	if current == nil || current == before {
		panic(&model.NotASamplerError{Reason: "the call did not invoke a method on a sampler; " +
			"did you use a sampler created by sampler.Prepare?"})
	}

	samples.SetLastSampleDefinition(current)

	return &VoidSampleBuilder{definition: current}
}

// Definition returns the sample being built.
func (b *VoidSampleBuilder) Definition() *model.SampleDefinition {
	return b.definition
}

// DoesNothing makes the sample skip the real method.
func (b *VoidSampleBuilder) DoesNothing() {
	b.definition.Answer = model.VoidAnswer()
}

// ReturnsError makes the sample fail with err.
func (b *VoidSampleBuilder) ReturnsError(err error) {
	b.definition.Answer = model.ErrorAnswer(err)
}

// CallsOriginalMethod makes the sample run the real method.
func (b *VoidSampleBuilder) CallsOriginalMethod() {
	b.definition.Answer = model.OriginalAnswer()
}

// Answers makes the sample run answer.
func (b *VoidSampleBuilder) Answers(answer func(invocation *model.StubMethodInvocation) error) {
	b.definition.Answer = func(invocation *model.StubMethodInvocation) (any, error) {
		return nil, answer(invocation)
	}
}

// PersistentSampleBuilder configures a sample whose calls are recorded and loaded by the
// persistence layer.
type PersistentSampleBuilder struct {
	VoidSampleBuilder
}

// PersistentOf marks the sampler call evaluated as its argument for persistence.
func PersistentOf[T any](s *Session, _ T) *PersistentSampleBuilder {
	definition := commitCurrent(s)
	definition.MarkedForPersistence = true

	return &PersistentSampleBuilder{VoidSampleBuilder{definition: definition}}
}

// HasID overrides the id the sample is persisted under.
func (b *PersistentSampleBuilder) HasID(id string) *PersistentSampleBuilder {
	b.definition.SampleID = id
	return b
}

// ForPersistence marks the next call on sampler, typically a method without result, for
// persistence.
func ForPersistence[T any](s *Session, sampler T) T {
	p, ok := any(sampler).(proxied)
	if !ok || p.proxy() == nil {
		panic(&model.NotASamplerError{Reason: "the value does not embed *sampler.Proxy"})
	}

	s.Samples().SetMarkNextVoidSamplerForPersistence(true)

	return sampler
}

// SetIDToLastMethodCall overrides the id of the most recently declared sample.
func SetIDToLastMethodCall(s *Session, id string) {
	current := s.Samples().CurrentSampleDefinition()
	if current == nil {
		panic(&model.NotASamplerError{Reason: "no sampler method has been called yet"})
	}

	current.SampleID = id
}

func commitCurrent(s *Session) *model.SampleDefinition {
	samples := s.Samples()

	current := samples.CurrentSampleDefinition()
	if current == samples.LastSampleDefinition() {
		panic(&model.NotASamplerError{Reason: "the sampled method call was not made on a sampler; " +
			"did you prepare it using sampler.Prepare?"})
	}

	samples.SetLastSampleDefinition(current)

	return current
}
