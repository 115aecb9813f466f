// Package persistence records sampled method calls into a neutral Model and loads such a
// Model back into sample definitions that replay the recorded return values.
package persistence

import (
	"reflect"
	"sort"
)

// Model is the persisted form of a recording: the recorded calls per sample id.
type Model struct {
	ID      string
	Samples map[string]*ActualSample
}

// ActualSample holds the recorded calls of one sample id.
type ActualSample struct {
	Calls []Call
}

// Call is one recorded invocation in neutral form.
type Call struct {
	Parameter   Parameter
	ReturnValue any
}

// Parameter holds the neutral arguments of a call.
type Parameter struct {
	Args []any
}

// NewModel returns an empty model.
func NewModel(id string) *Model {
	return &Model{ID: id, Samples: make(map[string]*ActualSample)}
}

// AddCall appends call to the sample id unless an identical call is already present. It
// reports whether the call was added.
func (m *Model) AddCall(id string, call Call) bool {
	if m.Samples == nil {
		m.Samples = make(map[string]*ActualSample)
	}

	sample, ok := m.Samples[id]
	if !ok {
		sample = &ActualSample{}
		m.Samples[id] = sample
	}

	for _, existing := range sample.Calls {
		if reflect.DeepEqual(existing, call) {
			return false
		}
	}

	sample.Calls = append(sample.Calls, call)

	return true
}

// Merge adds the calls of other, skipping duplicates.
func (m *Model) Merge(other *Model) {
	for _, id := range other.IDs() {
		for _, call := range other.Samples[id].Calls {
			m.AddCall(id, call)
		}
	}
}

// IDs returns the sample ids in sorted order.
func (m *Model) IDs() []string {
	ids := make([]string, 0, len(m.Samples))
	for id := range m.Samples {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// CallCount returns the number of calls over all samples.
func (m *Model) CallCount() int {
	total := 0
	for _, sample := range m.Samples {
		total += len(sample.Calls)
	}

	return total
}
