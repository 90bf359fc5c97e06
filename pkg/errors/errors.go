// Package errors provides structured error types for pagesmith.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code]. The HTTP API maps codes to status codes, the CLI prints the
// human-readable message, and the editor surfaces them as notifications.
//
// # Error Codes
//
// Codes follow a coarse naming convention:
//   - INVALID_* / UNSUPPORTED_*: the request itself is wrong
//   - *_NOT_FOUND: the referenced record does not exist (or is not yours)
//   - UNAUTHORIZED / FORBIDDEN / SESSION_EXPIRED: authentication failures
//   - NETWORK_ERROR / INTERNAL_ERROR: collaborator failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "project name is required")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // report to the user, leave state untouched
//	}
//
//	err := errors.Wrap(errors.ErrCodeInternal, dbErr, "save project %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidElement    Code = "INVALID_ELEMENT"
	ErrCodeInvalidStyle      Code = "INVALID_STYLE"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeProjectNotFound  Code = "PROJECT_NOT_FOUND"
	ErrCodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"
	ErrCodeUserNotFound     Code = "USER_NOT_FOUND"

	// State errors
	ErrCodeConflict Code = "CONFLICT"

	// Authentication errors
	ErrCodeUnauthorized   Code = "UNAUTHORIZED"
	ErrCodeForbidden      Code = "FORBIDDEN"
	ErrCodeSessionExpired Code = "SESSION_EXPIRED"

	// Collaborator errors
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotFound reports whether err carries any of the not-found codes.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeProjectNotFound, ErrCodeTemplateNotFound, ErrCodeUserNotFound:
		return true
	}
	return false
}

// IsValidation reports whether err is a rejected-input error.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidElement,
		ErrCodeInvalidStyle, ErrCodeUnsupportedFormat:
		return true
	}
	return false
}
