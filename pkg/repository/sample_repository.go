package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"deepsampler.dev/pkg/deepsampler/pkg/model"
)

// SampleRepository is the ordered list of declared samples plus the state of the
// declaration in progress.
type SampleRepository struct {
	mu sync.Mutex

	samples []*model.SampleDefinition
	current *model.SampleDefinition
	last    *model.SampleDefinition

	currentMatchers         []model.ParameterMatcher
	markNextVoidPersistence bool
}

// NewSampleRepository creates an empty repository.
func NewSampleRepository() *SampleRepository {
	return &SampleRepository{}
}

// Add appends a definition and makes it the current one.
func (r *SampleRepository) Add(definition *model.SampleDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, definition)
	r.current = definition
	slog.Debug("sample added", "id", definition.SampleID, "handle", definition.Handle())
}

// Get returns the definition at index.
func (r *SampleRepository) Get(index int) (*model.SampleDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.samples) {
		return nil, fmt.Errorf("sample index %d out of range [0, %d)", index, len(r.samples))
	}

	return r.samples[index], nil
}

// Remove deletes the definition at index.
func (r *SampleRepository) Remove(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.samples) {
		return fmt.Errorf("sample index %d out of range [0, %d)", index, len(r.samples))
	}

	r.samples = append(r.samples[:index], r.samples[index+1:]...)

	return nil
}

// Replace substitutes the definition at index with definitions, keeping their order.
func (r *SampleRepository) Replace(index int, definitions []*model.SampleDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.samples) {
		return fmt.Errorf("sample index %d out of range [0, %d)", index, len(r.samples))
	}

	replaced := make([]*model.SampleDefinition, 0, len(r.samples)-1+len(definitions))
	replaced = append(replaced, r.samples[:index]...)
	replaced = append(replaced, definitions...)
	replaced = append(replaced, r.samples[index+1:]...)
	r.samples = replaced

	return nil
}

// ReplaceAll swaps the whole content for definitions.
func (r *SampleRepository) ReplaceAll(definitions []*model.SampleDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append([]*model.SampleDefinition(nil), definitions...)
}

// Samples returns a copy of the declared definitions in declaration order.
func (r *SampleRepository) Samples() []*model.SampleDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*model.SampleDefinition(nil), r.samples...)
}

// Size returns the number of definitions.
func (r *SampleRepository) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.samples)
}

// IsEmpty reports whether no definition is declared.
func (r *SampleRepository) IsEmpty() bool {
	return r.Size() == 0
}

// FindAllForMethod returns every definition that is method-compatible with wanted,
// regardless of arguments.
func (r *SampleRepository) FindAllForMethod(wanted model.SampledMethod) []*model.SampleDefinition {
	var found []*model.SampleDefinition

	for _, definition := range r.Samples() {
		if definition.SampledMethod().IsCompatible(wanted) {
			found = append(found, definition)
		}
	}

	return found
}

// FindValidated returns the first definition serving the call. It fails with
// *model.NoMatchingParametersFoundError if the method has samples but none accepts args,
// and returns nil without error if the method has no samples at all.
func (r *SampleRepository) FindValidated(wanted model.SampledMethod, args []any) (*model.SampleDefinition, error) {
	candidates := r.FindAllForMethod(wanted)

	definition, err := firstMatch(candidates, args)
	if err != nil {
		return nil, err
	}

	if definition == nil && len(candidates) > 0 {
		return nil, &model.NoMatchingParametersFoundError{Method: wanted, Args: args}
	}

	return definition, nil
}

// FindUnvalidated returns the first definition serving the call, or nil. An error is only
// returned for a misconfigured matcher.
func (r *SampleRepository) FindUnvalidated(wanted model.SampledMethod, args []any) (*model.SampleDefinition, error) {
	return firstMatch(r.FindAllForMethod(wanted), args)
}

// firstMatch walks candidates in declaration order. A matcher panicking with a framework
// configuration error is turned into a returned error.
func firstMatch(candidates []*model.SampleDefinition, args []any) (found *model.SampleDefinition, err error) {
	defer func() {
		if r := recover(); r != nil {
			recovered, ok := r.(error)

			var cfg *model.InvalidConfigError
			if !ok || !errors.As(recovered, &cfg) {
				panic(r)
			}

			found, err = nil, recovered
		}
	}()

	for _, definition := range candidates {
		if definition.ArgumentsMatch(args) {
			return definition, nil
		}
	}

	return nil, nil
}

// CurrentSampleDefinition returns the definition most recently added.
func (r *SampleRepository) CurrentSampleDefinition() *model.SampleDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

// LastSampleDefinition returns the definition most recently handed to a builder.
func (r *SampleRepository) LastSampleDefinition() *model.SampleDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.last
}

// SetLastSampleDefinition commits definition as handed to a builder.
func (r *SampleRepository) SetLastSampleDefinition(definition *model.SampleDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.last = definition
}

// AddCurrentParameterMatcher collects a matcher for the declaration in progress.
func (r *SampleRepository) AddCurrentParameterMatcher(matcher model.ParameterMatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currentMatchers = append(r.currentMatchers, matcher)
}

// ReplaceLastParameterMatcher swaps the most recently collected matcher. It returns false
// if no matcher has been collected.
func (r *SampleRepository) ReplaceLastParameterMatcher(wrap func(model.ParameterMatcher) model.ParameterMatcher) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.currentMatchers) == 0 {
		return false
	}

	last := len(r.currentMatchers) - 1
	r.currentMatchers[last] = wrap(r.currentMatchers[last])

	return true
}

// CurrentParameterMatchers returns the matchers collected so far.
func (r *SampleRepository) CurrentParameterMatchers() []model.ParameterMatcher {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]model.ParameterMatcher(nil), r.currentMatchers...)
}

// TakeCurrentParameterMatchers returns the collected matchers and clears the list.
func (r *SampleRepository) TakeCurrentParameterMatchers() []model.ParameterMatcher {
	r.mu.Lock()
	defer r.mu.Unlock()

	matchers := r.currentMatchers
	r.currentMatchers = nil

	return matchers
}

// ClearCurrentParameterMatchers drops the collected matchers.
func (r *SampleRepository) ClearCurrentParameterMatchers() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currentMatchers = nil
}

// SetMarkNextVoidSamplerForPersistence flags the next declaration as persistent.
func (r *SampleRepository) SetMarkNextVoidSamplerForPersistence(mark bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.markNextVoidPersistence = mark
}

// TakeMarkNextVoidSamplerForPersistence returns the flag and resets it.
func (r *SampleRepository) TakeMarkNextVoidSamplerForPersistence() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	mark := r.markNextVoidPersistence
	r.markNextVoidPersistence = false

	return mark
}

// Clear drops all definitions, cursors and pending matchers.
func (r *SampleRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = nil
	r.current = nil
	r.last = nil
	r.currentMatchers = nil
	r.markNextVoidPersistence = false
}
