// Package apperr defines the error taxonomy shared by the roller, the macro
// engine and the persistence layer.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies the class of a failure.
type Code string

const (
	ErrNotConfigured      Code = "NOT_CONFIGURED"
	ErrCaptureFailure     Code = "CAPTURE_FAILURE"
	ErrOCRFailure         Code = "OCR_FAILURE"
	ErrValidationFailure  Code = "VALIDATION_FAILURE"
	ErrPersistenceFailure Code = "PERSISTENCE_FAILURE"
	ErrBusy               Code = "BUSY"
	ErrNotFound           Code = "NOT_FOUND"
)

// Error is a coded error with optional details and cause.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error carrying the same code, so callers can write
// errors.Is(err, &apperr.Error{Code: apperr.ErrBusy}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewNotConfigured reports a missing prerequisite such as the anchor point.
func NewNotConfigured(what string) *Error {
	return &Error{
		Code:    ErrNotConfigured,
		Message: fmt.Sprintf("%s is not set", what),
		Details: map[string]any{"missing": what},
	}
}

// NewCaptureFailure wraps a screen capture error.
func NewCaptureFailure(cause error) *Error {
	return &Error{Code: ErrCaptureFailure, Message: "screen capture failed", Cause: cause}
}

// NewOCRFailure wraps a text recognition error.
func NewOCRFailure(cause error) *Error {
	return &Error{Code: ErrOCRFailure, Message: "text recognition failed", Cause: cause}
}

// NewOutOfRange rejects a value outside [min, max].
func NewOutOfRange(field string, value, min, max int) *Error {
	return &Error{
		Code:    ErrValidationFailure,
		Message: fmt.Sprintf("%s must be between %d and %d, got %d", field, min, max, value),
		Details: map[string]any{"field": field, "value": value, "min": min, "max": max},
	}
}

// NewInvalid rejects malformed input.
func NewInvalid(msg string) *Error {
	return &Error{Code: ErrValidationFailure, Message: msg}
}

// NewPersistenceFailure wraps a file or database error.
func NewPersistenceFailure(op, path string, cause error) *Error {
	return &Error{
		Code:    ErrPersistenceFailure,
		Message: fmt.Sprintf("failed to %s %s", op, path),
		Details: map[string]any{"op": op, "path": path},
		Cause:   cause,
	}
}

// NewBusy reports an operation refused because a conflicting loop is running.
func NewBusy(msg string) *Error {
	return &Error{Code: ErrBusy, Message: msg}
}

// NewNotFound reports a missing sequence item or file.
func NewNotFound(msg string) *Error {
	return &Error{Code: ErrNotFound, Message: msg}
}

// CodeOf returns the code of the first *Error in the chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
