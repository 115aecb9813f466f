package persistence

import (
	"fmt"
	"strings"

	"deepsampler.dev/pkg/deepsampler/pkg/model"
)

// PersistenceError reports persisted data that does not fit the declared samples.
type PersistenceError struct {
	Msg string
}

// NewPersistenceError formats a PersistenceError.
func NewPersistenceError(format string, args ...any) *PersistenceError {
	return &PersistenceError{Msg: fmt.Sprintf(format, args...)}
}

func (e *PersistenceError) Error() string {
	return e.Msg
}

// MissedCall is a persisted call whose arguments no declaration accepts.
type MissedCall struct {
	ID   string
	Args []any
}

// ParametersAreNotMatchedError lists persisted calls that have a declaration whose
// matchers reject the persisted arguments.
type ParametersAreNotMatchedError struct {
	Calls []MissedCall
}

func (e *ParametersAreNotMatchedError) Error() string {
	parts := make([]string, 0, len(e.Calls))
	for _, call := range e.Calls {
		parts = append(parts, call.ID+"\n\t"+model.FormatArgs(call.Args))
	}

	return "the following persistent samples have a declaration but their parameters are not accepted by it:\n" +
		strings.Join(parts, "\n\n")
}

// NoSamplesLoadedError reports a load that produced no sample at all.
type NoSamplesLoadedError struct{}

func (e *NoSamplesLoadedError) Error() string {
	return "no samples from the sources could be matched to declared sampled methods; " +
		"did you declare them with sampler.PersistentOf in your test?"
}
