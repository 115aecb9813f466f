// Package model defines the data the deepsampler CLI passes between its layers.
package model

import (
	"deepsampler.dev/pkg/deepsampler/pkg/model"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence"
)

// Path represents a file system path.
type Path string

// SampleSummary counts the recorded calls of one sample id.
type SampleSummary struct {
	ID    string
	Calls int
}

// FileSummary describes one sample file.
type FileSummary struct {
	Path    Path
	ModelID string
	Samples []SampleSummary
}

// CallCount returns the number of calls over all samples of the file.
func (f FileSummary) CallCount() int {
	total := 0
	for _, s := range f.Samples {
		total += s.Calls
	}

	return total
}

// Summarize lists the sample ids of a model in sorted order.
func Summarize(path Path, m *persistence.Model) FileSummary {
	summary := FileSummary{Path: path, ModelID: m.ID}

	for _, id := range m.IDs() {
		summary.Samples = append(summary.Samples, SampleSummary{ID: id, Calls: len(m.Samples[id].Calls)})
	}

	return summary
}

// CallView is a printable recorded call.
type CallView struct {
	SampleID    string
	Index       int
	Args        string
	ReturnValue string
}

// Describe renders every call of a model, ordered by sample id and then call order.
func Describe(m *persistence.Model) []CallView {
	var views []CallView

	for _, id := range m.IDs() {
		for i, call := range m.Samples[id].Calls {
			views = append(views, CallView{
				SampleID:    id,
				Index:       i,
				Args:        model.FormatArgs(call.Parameter.Args),
				ReturnValue: model.FormatValue(call.ReturnValue),
			})
		}
	}

	return views
}
