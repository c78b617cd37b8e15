// Package errors provides structured error types for upset.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so the CLI and the HTTP server can tell a broken upload apart from a
// file that could not be read:
//
//   - FILE_READ: the input could not be read (FileReadError)
//   - INVALID_FORMAT: a data line does not have exactly two tab-separated
//     fields; the whole file is rejected (FormatError)
//   - INVALID_VALUE: a count did not parse as a non-negative integer; the
//     line is dropped and parsing continues (ValueWarning)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "line %d: expected 2 fields, got %d", n, got)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // reject the upload
//	}
//
//	err = errors.Wrap(errors.ErrCodeFileRead, ioErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidValue  Code = "INVALID_VALUE"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// I/O errors
	ErrCodeFileRead     Code = "FILE_READ"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeConflict Code = "CONFLICT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// HTTPStatus maps an error to the status code the server responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidValue, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
