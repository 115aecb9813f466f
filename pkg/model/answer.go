package model

import "errors"

// ErrNoOriginalMethod is returned by CallOriginalMethod when the sampler was created
// without a delegate.
var ErrNoOriginalMethod = errors.New("no original method available")

// OriginalMethod invokes the real implementation behind a sampler.
type OriginalMethod func(args []any) (any, error)

// StubMethodInvocation describes an intercepted call handed to an Answer.
type StubMethodInvocation struct {
	Args     []any
	original OriginalMethod
}

// NewStubMethodInvocation creates an invocation for args. original may be nil.
func NewStubMethodInvocation(args []any, original OriginalMethod) *StubMethodInvocation {
	return &StubMethodInvocation{Args: args, original: original}
}

// CallOriginalMethod runs the real method with the invocation's arguments.
func (i *StubMethodInvocation) CallOriginalMethod() (any, error) {
	if i.original == nil {
		return nil, ErrNoOriginalMethod
	}

	return i.original(i.Args)
}

// Answer produces the response for a stubbed call.
type Answer func(invocation *StubMethodInvocation) (any, error)

// FixedAnswer always returns value.
func FixedAnswer(value any) Answer {
	return func(*StubMethodInvocation) (any, error) {
		return value, nil
	}
}

// ErrorAnswer always fails with err.
func ErrorAnswer(err error) Answer {
	return func(*StubMethodInvocation) (any, error) {
		return nil, err
	}
}

// VoidAnswer does nothing.
func VoidAnswer() Answer {
	return func(*StubMethodInvocation) (any, error) {
		return nil, nil
	}
}

// OriginalAnswer delegates to the real method.
func OriginalAnswer() Answer {
	return func(invocation *StubMethodInvocation) (any, error) {
		return invocation.CallOriginalMethod()
	}
}

// MethodCall is one observed invocation.
type MethodCall struct {
	Args        []any
	ReturnValue any
}

// SampleReturnProcessor may replace the value returned by an Answer.
type SampleReturnProcessor func(definition *SampleDefinition, invocation *StubMethodInvocation, returnValue any) any
