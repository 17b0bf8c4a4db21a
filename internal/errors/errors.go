// Package errors provides shared error types that map to CLI exit codes,
// enabling consistent error handling across all skillctl commands.
package errors

import (
	"fmt"
)

// Kind represents the category of an error, which determines the CLI exit code.
type Kind int

const (
	// KindInvalidArgs represents invalid input arguments.
	// CLI exit code: 2
	KindInvalidArgs Kind = iota

	// KindNotFound represents a missing resource.
	// CLI exit code: 3
	KindNotFound

	// KindStateError represents an operation attempted in an invalid state
	// (e.g. shipping with a dirty working tree).
	// CLI exit code: 4
	KindStateError

	// KindStorage represents a history database error.
	// CLI exit code: 5
	KindStorage

	// KindGeneral represents a general error that doesn't fit other categories.
	// CLI exit code: 1
	KindGeneral
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgs:
		return "InvalidArgs"
	case KindNotFound:
		return "NotFound"
	case KindStateError:
		return "StateError"
	case KindStorage:
		return "Storage"
	case KindGeneral:
		return "General"
	default:
		return "Unknown"
	}
}

// Error represents a structured error with kind, message, cause, and an
// optional suggestion for the user.
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CLIExitCode returns the appropriate CLI exit code for this error.
func (e *Error) CLIExitCode() int {
	switch e.Kind {
	case KindInvalidArgs:
		return 2
	case KindNotFound:
		return 3
	case KindStateError:
		return 4
	case KindStorage:
		return 5
	case KindGeneral:
		return 1
	default:
		return 1
	}
}

// WithSuggestion adds a suggestion to the error and returns it for chaining.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// Constructor functions

// NotFound creates an error for missing resources.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// InvalidArgs creates an error for invalid arguments.
func InvalidArgs(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindInvalidArgs,
		Message: fmt.Sprintf(format, args...),
	}
}

// StateError creates an error for operations attempted in an invalid state.
func StateError(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindStateError,
		Message: fmt.Sprintf(format, args...),
	}
}

// Storage creates an error for history database failures.
func Storage(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindStorage,
		Message: fmt.Sprintf(format, args...),
	}
}

// General creates a general error.
func General(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindGeneral,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with a specific kind and message.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// Helper functions for extracting error information

// GetKind extracts the Kind from an error, returning KindGeneral if the error
// is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindGeneral
}

// GetCLIExitCode extracts the CLI exit code from an error.
func GetCLIExitCode(err error) int {
	if e, ok := err.(*Error); ok {
		return e.CLIExitCode()
	}
	return 1
}

// Is returns true if the error is of the specified kind.
func Is(err error, kind Kind) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == kind
	}
	return false
}
