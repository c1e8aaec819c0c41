// Package errors provides structured error types and exit codes for conformrun.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess          = 0 // Success, every test passed or was skipped
	ExitFailure          = 1 // Failed/unknown tests or a runtime error
	ExitConfigError      = 2 // Invalid configuration or flags
	ExitEnvironmentError = 3 // Missing toolchain or unusable environment
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindValidation
	KindEnvironment
)

// Error is the base error type for conformrun.
type Error struct {
	Kind    ErrorKind
	Message string
	Suite   string // Suite name if applicable
	Test    string // Test identifier if applicable
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Suite != "" && e.Test != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Suite, e.Test, msg)
	}
	if e.Suite != "" {
		return fmt.Sprintf("[%s] %s", e.Suite, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitFailure
	}
}

// New creates a new runtime error.
func New(message string) *Error {
	return &Error{Kind: KindRuntime, Message: message}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *Error {
	return &Error{Kind: KindConfig, Message: message}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...any) *Error {
	return Config(fmt.Sprintf(format, args...))
}

// Environment creates a new environment error.
func Environment(message string) *Error {
	return &Error{Kind: KindEnvironment, Message: message}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...any) *Error {
	return Environment(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *Error {
	return &Error{Kind: KindRuntime, Message: message, Cause: err}
}

// WrapConfig wraps an error as a configuration error.
func WrapConfig(err error, message string) *Error {
	return &Error{Kind: KindConfig, Message: message, Cause: err}
}

// SuiteError creates an error scoped to a suite and optionally a test.
func SuiteError(suite, test, message string) *Error {
	return &Error{Kind: KindRuntime, Suite: suite, Test: test, Message: message}
}

// NotFound creates a not found error.
func NotFound(what, name string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// GetExitCode returns the exit code for an error.
// Wrapped errors are inspected so that a config error survives fmt.Errorf("%w").
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.ExitCode()
	}
	return ExitFailure
}
