package domain

import (
	"errors"
	"time"
)

// FailureKind classifies why an adapter invocation did not produce output.
type FailureKind string

const (
	FailureCompileError      FailureKind = "compile_error"
	FailureRuntimeError      FailureKind = "runtime_error"
	FailureTimeLimitExceeded FailureKind = "time_limit_exceeded"
	FailureInternalError     FailureKind = "internal_error"
)

const TimeLimitExceededMessage = "Time limit exceeded"

// ExecutionResult is the successful outcome of one run phase.
type ExecutionResult struct {
	Stdout   string
	Duration time.Duration
}

// DurationMs is the run duration in whole milliseconds.
func (r *ExecutionResult) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

// ExecutionError is the failed outcome of one adapter invocation.
type ExecutionError struct {
	Kind    FailureKind
	Message string
}

func (e *ExecutionError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// NewExecutionError builds a typed failure.
func NewExecutionError(kind FailureKind, message string) *ExecutionError {
	return &ExecutionError{Kind: kind, Message: message}
}

// InternalError wraps an infrastructure failure so it is never mistaken for a
// problem with the candidate's code.
func InternalError(err error) *ExecutionError {
	return &ExecutionError{Kind: FailureInternalError, Message: err.Error()}
}

// AsExecutionError extracts the typed failure from err, classifying anything else
// as internal_error. It returns nil for a nil error.
func AsExecutionError(err error) *ExecutionError {
	if err == nil {
		return nil
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr
	}
	return InternalError(err)
}
