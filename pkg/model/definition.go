package model

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

// Handle is a stable, process-unique identity assigned to every SampleDefinition.
type Handle uint64

var lastHandle atomic.Uint64

// SampleDefinition is one declared stub: a method, the matchers deciding which calls it
// serves and the Answer producing the response.
type SampleDefinition struct {
	handle Handle
	method SampledMethod

	// ParameterValues are the literal arguments seen when the sample was declared or loaded.
	ParameterValues []any
	// ParameterMatchers has one matcher per parameter of the method.
	ParameterMatchers []ParameterMatcher
	// Answer is nil for samples that record calls instead of answering them.
	Answer Answer
	// SampleID defaults to the method's GenericString.
	SampleID             string
	MarkedForPersistence bool
}

// NewSampleDefinition creates a definition for method with a fresh handle.
func NewSampleDefinition(method SampledMethod) *SampleDefinition {
	return &SampleDefinition{
		handle:   Handle(lastHandle.Add(1)),
		method:   method,
		SampleID: method.GenericString(),
	}
}

// Handle returns the identity of this definition.
func (d *SampleDefinition) Handle() Handle {
	return d.handle
}

// SampledMethod returns the method this definition stubs.
func (d *SampleDefinition) SampledMethod() SampledMethod {
	return d.method
}

// Equal compares method, parameter values and sample id. Matchers and answers are ignored,
// so a live declaration and its persisted counterpart compare equal.
func (d *SampleDefinition) Equal(other *SampleDefinition) bool {
	if d == nil || other == nil {
		return d == other
	}

	return d.SampleID == other.SampleID &&
		d.method.Target == other.method.Target &&
		d.method.SameMethod(other.method) &&
		reflect.DeepEqual(d.ParameterValues, other.ParameterValues)
}

// ArgumentsMatch reports whether every matcher accepts the argument at its position.
func (d *SampleDefinition) ArgumentsMatch(args []any) bool {
	if len(d.ParameterMatchers) != len(args) {
		return false
	}

	for i, matcher := range d.ParameterMatchers {
		if !matcher.Matches(args[i]) {
			return false
		}
	}

	return true
}

func (d *SampleDefinition) String() string {
	return fmt.Sprintf("SampleDefinition{id=%s, method=%s, values=%s}", d.SampleID, d.method, FormatArgs(d.ParameterValues))
}
