// Package errors provides structured error types for svgcrop.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - The batch index of the offending document, when there is one
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Every failure of a crop call maps to one of the crop codes:
//   - CONFIGURATION_ERROR: the tile size cannot fit on the render canvas
//   - MALFORMED_INPUT: a document has no <svg> element
//   - INVALID_VIEWBOX: no usable viewBox could be read or inferred
//   - NO_OPAQUE_CONTENT: a rendered document has no visible pixel
//   - RENDER_FAILURE: the renderer or decoder failed
//
// # Usage
//
//	err := errors.AtIndex(errors.ErrCodeMalformedInput, i, "Incorrect data in svg #%d", i)
//	if errors.Is(err, errors.ErrCodeMalformedInput) {
//	    idx := errors.GetIndex(err)
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRenderFailure, origErr, "screenshot failed")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Crop errors
	ErrCodeConfiguration  Code = "CONFIGURATION_ERROR"
	ErrCodeMalformedInput Code = "MALFORMED_INPUT"
	ErrCodeInvalidViewBox Code = "INVALID_VIEWBOX"
	ErrCodeNoOpaque       Code = "NO_OPAQUE_CONTENT"
	ErrCodeRenderFailure  Code = "RENDER_FAILURE"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// NoIndex marks an error that is not tied to a single document.
const NoIndex = -1

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Index   int    // Batch index of the offending document, or NoIndex
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
		Index:   NoIndex,
	}
}

// AtIndex creates a new Error tied to the document at index i.
func AtIndex(code Code, i int, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Index:   i,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Index:   NoIndex,
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

// GetIndex extracts the document index from an error.
// Returns NoIndex if the error is not an *Error or is not tied to a document.
func GetIndex(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Index
	}
	return NoIndex
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
