package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a release run stopped.
type FailureKind int

const (
	KindUnknown      FailureKind = iota
	KindPrecondition             // Invalid or missing input, caught before any external call
	KindTool                     // An external process exited non-zero or timed out
	KindTransport                // Registry unreachable or returned unparseable data
)

// String returns the string representation of the FailureKind.
func (k FailureKind) String() string {
	if k < 0 || int(k) >= len(failureKindNames) {
		return "unknown"
	}
	return failureKindNames[k]
}

var failureKindNames = [...]string{
	KindUnknown:      "unknown",
	KindPrecondition: "precondition",
	KindTool:         "tool",
	KindTransport:    "transport",
}

// PreconditionError wraps input validation failures.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string {
	return e.Err.Error()
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// TransportError wraps registry transport and decoding failures.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("registry %s: %s", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StepError records the pipeline step that failed and the stage the run was in.
type StepError struct {
	From Stage // last stage reached before the failure
	Step Stage // stage that was being attempted
	Kind FailureKind
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step.Action(), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
