// Package apperr defines the coded domain errors raised by the recipe core
// and mapped to HTTP responses at the API boundary.
//
// Services return typed errors; handlers check them with errors.Is against
// the sentinels or errors.As into *Error for the code and field details:
//
//	if errors.Is(err, apperr.ErrAlreadyExists) { ... }
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

// Error codes of the recipe core plus the ambient ones used by the HTTP layer.
const (
	CodeInvalidField           Code = "INVALID_FIELD"
	CodeMissingRequiredField   Code = "MISSING_REQUIRED_FIELD"
	CodeDuplicateReference     Code = "DUPLICATE_REFERENCE"
	CodeAlreadyExists          Code = "ALREADY_EXISTS"
	CodeNotFound               Code = "NOT_FOUND"
	CodeSelfReferenceForbidden Code = "SELF_REFERENCE_FORBIDDEN"
	CodeForbidden              Code = "FORBIDDEN"
	CodeUnauthorized           Code = "UNAUTHORIZED"
	CodeValidation             Code = "VALIDATION"
	CodeInternal               Code = "INTERNAL"
)

// HTTPStatus returns the status code the API answers with for this code.
// Relationship conflicts answer 400 to keep the public API contract.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidField, CodeMissingRequiredField, CodeDuplicateReference,
		CodeAlreadyExists, CodeSelfReferenceForbidden, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error. Field is set for field-level validation errors.
type Error struct {
	Code    Code
	Field   string
	Message string
	Details map[string]string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Sentinels for errors.Is.
var (
	ErrInvalidField           = &Error{Code: CodeInvalidField, Message: "invalid field"}
	ErrMissingRequiredField   = &Error{Code: CodeMissingRequiredField, Message: "missing required field"}
	ErrDuplicateReference     = &Error{Code: CodeDuplicateReference, Message: "duplicate reference"}
	ErrAlreadyExists          = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrNotFound               = &Error{Code: CodeNotFound, Message: "not found"}
	ErrSelfReferenceForbidden = &Error{Code: CodeSelfReferenceForbidden, Message: "self reference forbidden"}
	ErrForbidden              = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrUnauthorized           = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrValidation             = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal               = &Error{Code: CodeInternal, Message: "internal error"}
)

// InvalidField reports a scalar value that violates a business rule.
func InvalidField(field, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidField, Field: field, Message: fmt.Sprintf(format, args...)}
}

// MissingRequiredField reports an absent required value or collection.
func MissingRequiredField(field, format string, args ...any) *Error {
	return &Error{Code: CodeMissingRequiredField, Field: field, Message: fmt.Sprintf(format, args...)}
}

// DuplicateReference reports ids referenced more than once in one submission.
func DuplicateReference(field, format string, args ...any) *Error {
	return &Error{Code: CodeDuplicateReference, Field: field, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists reports a relation pair that is already stored.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// NotFound reports a missing entity or relation.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// SelfReferenceForbidden reports an attempt to relate a subject to itself.
func SelfReferenceForbidden(msg string) *Error {
	return &Error{Code: CodeSelfReferenceForbidden, Message: msg}
}

// Forbidden reports an operation the caller may not perform.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Validation reports payload shape errors, keyed by field name.
func Validation(msg string, details map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal wraps an unexpected failure. The cause is logged, never shown.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// CodeOf returns the code of err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
