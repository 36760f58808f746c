// Package apperr defines the error kinds the API reports to clients and the
// HTTP status each one maps to.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error carries a client-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
	// Fields names the offending request fields for validation errors.
	Fields []string
	cause  error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

// Is lets errors.Is match the kind sentinel.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.cause
}

func Validation(message string, fields ...string) *Error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

// MissingFields builds the validation error for absent required fields.
func MissingFields(fields ...string) *Error {
	return Validation("missing required fields: "+strings.Join(fields, ", "), fields...)
}

func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: ErrForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Conflict wraps cause, typically a unique-constraint violation.
func Conflict(message string, cause error) *Error {
	return &Error{Kind: ErrConflict, Message: message, cause: cause}
}

// Status returns the HTTP status for err. Unknown errors are 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show a client. Internal errors never
// leak their detail.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	if Status(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

// IsInternal reports whether err has no client-facing kind.
func IsInternal(err error) bool {
	return err != nil && Status(err) == http.StatusInternalServerError
}
