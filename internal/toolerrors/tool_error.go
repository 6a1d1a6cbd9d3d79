// Package toolerrors provides structured error types for tool invocation
// failures. ToolError preserves error chains and supports errors.Is/As,
// and carries the errkind.Kind driving policy decisions in the agent loop
// and supervisor (spec §7).
package toolerrors

import (
	"errors"
	"fmt"

	"github.com/ojashyadav101/lucy-sub000/internal/errkind"
)

// ToolError represents a structured tool failure that preserves message,
// causal context, and a classification kind while still implementing the
// standard error interface. Tool errors may be nested via Cause to retain
// diagnostics across retries and sub-agent delegation hops.
type ToolError struct {
	// Message is the human-readable summary of the failure.
	Message string
	// Kind classifies the failure for policy and degradation-formatter use.
	Kind errkind.Kind
	// Cause links to the underlying tool error, enabling error chains with
	// errors.Is/As.
	Cause *ToolError
}

// New constructs a ToolError of the given kind. Use when the failure does
// not wrap an underlying error but still requires structured reporting.
func New(kind errkind.Kind, message string) *ToolError {
	if message == "" {
		message = "tool error"
	}
	return &ToolError{Message: message, Kind: kind}
}

// NewWithCause constructs a ToolError that wraps an underlying error. The
// cause is converted into a ToolError chain so classification and message
// survive serialization while still supporting errors.Is/As through Unwrap.
func NewWithCause(kind errkind.Kind, message string, cause error) *ToolError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ToolError{
		Message: message,
		Kind:    kind,
		Cause:   FromError(cause),
	}
}

// FromError converts an arbitrary error into a ToolError chain, classifying
// it as Unknown unless it already carries a kind.
func FromError(err error) *ToolError {
	if err == nil {
		return nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{
		Message: err.Error(),
		Kind:    errkind.Unknown,
		Cause:   FromError(errors.Unwrap(err)),
	}
}

// Errorf formats according to a format specifier and returns the string as
// an Unknown-kind ToolError. Use New/NewWithCause directly when the kind is
// known, which is the common case.
func Errorf(format string, args ...any) *ToolError {
	return New(errkind.Unknown, fmt.Sprintf(format, args...))
}

// Retryable reports whether a fresh attempt is ever appropriate, delegating
// to the error's Kind.
func (e *ToolError) Retryable() bool {
	if e == nil {
		return false
	}
	return e.Kind.Retryable()
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the underlying tool error to support errors.Is/As.
func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
