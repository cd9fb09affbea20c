// Package errs defines the engine's single error kind, unifying the
// ValidationError/GitError/AgentError/TimeoutError/IOError/AbortError
// taxonomy behind one exported struct rather than a hierarchy of types.
package errs

import "fmt"

// Kind is the closed set of error categories the engine can produce.
type Kind string

const (
	Validation Kind = "ValidationError"
	Git        Kind = "GitError"
	Agent      Kind = "AgentError"
	Timeout    Kind = "TimeoutError"
	IO         Kind = "IOError"
	Abort      Kind = "AbortError"
)

// Error is the engine's one error type. Cause wraps the underlying error
// (a git stderr capture, an os error, an agent.Error) using the standard
// %w verb so callers can still errors.Is/As through it.
type Error struct {
	Kind        Kind
	Message     string
	Cause       error
	Recoverable bool
	Suggestion  string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

func Gitf(cause error, format string, args ...any) *Error {
	return &Error{Kind: Git, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func IOf(cause error, format string, args ...any) *Error {
	return &Error{Kind: IO, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func Abortf(format string, args ...any) *Error {
	return &Error{Kind: Abort, Message: fmt.Sprintf(format, args...)}
}

// FromAgentError lifts an agent.ErrorCode-classified failure into the
// unified Kind, preserving its recoverable/suggestion fields.
func FromAgentError(message string, recoverable bool, suggestion string, cause error) *Error {
	return &Error{Kind: Agent, Message: message, Cause: cause, Recoverable: recoverable, Suggestion: suggestion}
}

// FromTimeout builds a TimeoutError, reported identically to a
// recoverable AgentError per the propagation policy.
func FromTimeout(message string) *Error {
	return &Error{Kind: Timeout, Message: message, Recoverable: true}
}
