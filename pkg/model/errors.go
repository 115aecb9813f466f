package model

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

var argFormatter = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// FormatValue renders a single argument or return value for error messages.
func FormatValue(v any) string {
	if v == nil {
		return "nil"
	}

	return argFormatter.Sprintf("%+v", v)
}

// FormatArgs renders an argument list as "(a, b, c)".
func FormatArgs(args []any) string {
	if args == nil {
		return "(nil)"
	}

	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, FormatValue(arg))
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

// NotASamplerError reports that a declaration was attempted on something that is not a
// prepared sampler.
type NotASamplerError struct {
	Reason string
}

func (e *NotASamplerError) Error() string {
	return "not a sampler: " + e.Reason
}

// InvalidMatcherConfigError reports a declaration that mixes matchers and literal values.
type InvalidMatcherConfigError struct {
	Method     SampledMethod
	Matchers   int
	Parameters int
}

func (e *InvalidMatcherConfigError) Error() string {
	return fmt.Sprintf(
		"invalid matcher configuration for %s: %d matcher(s) for %d parameter(s); "+
			"use matchers for all parameters or for none",
		e.Method.GenericString(), e.Matchers, e.Parameters)
}

// InvalidConfigError reports a misconfiguration by the test author.
type InvalidConfigError struct {
	Msg string
}

// NewInvalidConfigError formats a new InvalidConfigError.
func NewInvalidConfigError(format string, args ...any) *InvalidConfigError {
	return &InvalidConfigError{Msg: fmt.Sprintf(format, args...)}
}

func (e *InvalidConfigError) Error() string {
	return "invalid configuration: " + e.Msg
}

// NoMatchingParametersFoundError is raised when a method has samples but none accepts the
// actual arguments.
type NoMatchingParametersFoundError struct {
	Method SampledMethod
	Args   []any
}

func (e *NoMatchingParametersFoundError) Error() string {
	params := make([]string, 0)
	for _, p := range e.Method.ParameterTypes() {
		params = append(params, p.String())
	}

	return fmt.Sprintf(
		"the method %s should be stubbed, but it has been called with unexpected parameters %s; "+
			"either the sample (e.g. Of(%s(%s))) defines wrong parameters or the tested code has changed",
		e.Method.GenericString(), FormatArgs(e.Args), e.Method.Name(), strings.Join(params, ", "))
}

// VerifyError reports an unexpected number of invocations.
type VerifyError struct {
	Method   SampledMethod
	Args     []any
	Expected int
	Actual   int
	// OtherArgs is set when the method was invoked with different arguments instead.
	OtherArgs []any
	SampleID  string
}

func (e *VerifyError) Error() string {
	if e.OtherArgs != nil {
		return fmt.Sprintf(
			"the sampled method %s that was expected to be called with %s was actually called with %s (%d times)",
			e.SampleID, FormatArgs(e.Args), FormatArgs(e.OtherArgs), e.Actual)
	}

	if e.Args != nil {
		return fmt.Sprintf(
			"the sampled method %s called with %s was expected to get invoked %d times, actually it got invoked %d times",
			e.Method.GenericString(), FormatArgs(e.Args), e.Expected, e.Actual)
	}

	return fmt.Sprintf(
		"the sampled method %s was expected to get invoked %d times, actually it got invoked %d times",
		e.Method.GenericString(), e.Expected, e.Actual)
}
