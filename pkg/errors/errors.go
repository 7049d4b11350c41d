// Package errors provides standardized error types for the notebook bridge.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for conversion, serialization, and plan rendering failures.
const (
	CodeInvalidDocument     = "INVALID_DOCUMENT"
	CodeInvalidOutput       = "INVALID_OUTPUT"
	CodeSerializationFailed = "SERIALIZATION_FAILED"
	CodePlanParseFailed     = "PLAN_PARSE_FAILED"
	CodeRenderFailed        = "RENDER_FAILED"
	CodeQueryFailed         = "QUERY_FAILED"
	CodeConnectionFailed    = "CONNECTION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
	CodeCanceled            = "CANCELED"
	CodeUnimplemented       = "UNIMPLEMENTED"
)

// QuillError represents a bridge error with code, message, and optional details.
type QuillError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
func (e *QuillError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *QuillError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *QuillError) Is(target error) bool {
	t, ok := target.(*QuillError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail adds a single detail to the error.
func (e *QuillError) WithDetail(key string, value interface{}) *QuillError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common errors
var (
	ErrInvalidDocument = &QuillError{Code: CodeInvalidDocument, Message: "invalid notebook document"}
	ErrInvalidOutput   = &QuillError{Code: CodeInvalidOutput, Message: "invalid cell output"}
	ErrEmptyPlan       = &QuillError{Code: CodePlanParseFailed, Message: "execution plan is empty"}
	ErrQueryFailed     = &QuillError{Code: CodeQueryFailed, Message: "query execution failed"}
	ErrNotImplemented  = &QuillError{Code: CodeUnimplemented, Message: "feature not implemented"}
)

// New creates a new QuillError with the given code and message.
func New(code, message string) *QuillError {
	return &QuillError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with a QuillError.
func Wrap(err error, code, message string) *QuillError {
	if err == nil {
		return nil
	}
	return &QuillError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code, format string, args ...interface{}) *QuillError {
	if err == nil {
		return nil
	}
	return &QuillError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	var qerr *QuillError
	if errors.As(err, &qerr) {
		return qerr.Code == CodeNotFound
	}
	return false
}

// IsInvalidDocument checks if an error is an invalid document error.
func IsInvalidDocument(err error) bool {
	var qerr *QuillError
	if errors.As(err, &qerr) {
		return qerr.Code == CodeInvalidDocument
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) string {
	var qerr *QuillError
	if errors.As(err, &qerr) {
		return qerr.Code
	}
	return CodeInternal
}
