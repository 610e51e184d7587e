// Package errors provides structured error types for papersync.
//
// Every failure the sync engine can hit maps to a machine-readable [Code].
// The engine never aborts on these errors: a parse error skips one block,
// a degenerate region or a missing match skips one recompute. Callers that
// need to distinguish the cases use [Is]:
//
//	if errors.Is(err, errors.ErrCodeParse) {
//	    // skip the block, keep going
//	}
//
// Wrap keeps the original cause available to the standard library's
// errors.Is and errors.As:
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch page %d", i)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Geometry and layout errors
	ErrCodeParse             Code = "PARSE_ERROR"
	ErrCodeDegenerateRegion  Code = "DEGENERATE_REGION"
	ErrCodeNoMatch           Code = "NO_MATCH"
	ErrCodePageNotFound      Code = "PAGE_NOT_FOUND"
	ErrCodeImagesNotLoaded   Code = "IMAGES_NOT_LOADED"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidDocument   Code = "INVALID_DOCUMENT"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
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

// Is reports whether err carries the given error code.
// It walks the whole chain, so a PARSE_ERROR wrapped in an INTERNAL_ERROR
// still matches ErrCodeParse.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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

// Skippable reports whether err only invalidates the current recompute.
// Skippable errors leave the last rendered frame in place.
func Skippable(err error) bool {
	switch GetCode(err) {
	case ErrCodeParse, ErrCodeDegenerateRegion, ErrCodeNoMatch, ErrCodePageNotFound, ErrCodeImagesNotLoaded:
		return true
	}
	return false
}
