// Package apperrors defines the operational error taxonomy shared by services,
// handlers and the request observability wrapper.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the category of an application error
type Kind string

const (
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindInternal     Kind = "internal"
	KindCustom       Kind = "custom"
)

// UnknownErrorMessage is reported for failures that carry no usable message
const UnknownErrorMessage = "Unknown error"

// Context carries structured diagnostic data attached to an error.
// It is written to logs and spans, never to response bodies.
type Context map[string]interface{}

// AppError is an error with an HTTP status and an operational flag
type AppError struct {
	Kind        Kind
	Message     string
	Status      int
	Operational bool
	Context     Context
	Err         error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// StatusCode returns the HTTP status carried by the error
func (e *AppError) StatusCode() int {
	return e.Status
}

// IsOperational reports whether the error is an expected, client-attributable failure
func (e *AppError) IsOperational() bool {
	return e.Operational
}

// WithContext adds a context entry to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// New creates an application error with an explicit status.
// A status outside 400-599 is coerced to a non-operational 500.
func New(message string, status int, operational bool, ctx Context) *AppError {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
		operational = false
	}
	return &AppError{
		Kind:        kindForStatus(status),
		Message:     message,
		Status:      status,
		Operational: operational,
		Context:     ctx,
	}
}

// BadRequest creates a 400 operational error
func BadRequest(message string, ctx Context) *AppError {
	return newKind(KindBadRequest, message, ctx)
}

// Unauthorized creates a 401 operational error
func Unauthorized(message string, ctx Context) *AppError {
	return newKind(KindUnauthorized, message, ctx)
}

// Forbidden creates a 403 operational error
func Forbidden(message string, ctx Context) *AppError {
	return newKind(KindForbidden, message, ctx)
}

// NotFound creates a 404 operational error
func NotFound(message string, ctx Context) *AppError {
	return newKind(KindNotFound, message, ctx)
}

// Internal creates a 500 non-operational error
func Internal(message string, ctx Context) *AppError {
	return newKind(KindInternal, message, ctx)
}

// WrapInternal wraps a cause as a 500 non-operational error
func WrapInternal(message string, err error, ctx Context) *AppError {
	appErr := Internal(message, ctx)
	appErr.Err = err
	return appErr
}

func newKind(kind Kind, message string, ctx Context) *AppError {
	status := statusForKind(kind)
	return &AppError{
		Kind:        kind,
		Message:     message,
		Status:      status,
		Operational: kind != KindInternal,
		Context:     ctx,
	}
}

func statusForKind(kind Kind) int {
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusInternalServerError:
		return KindInternal
	default:
		return KindCustom
	}
}

// Error kind checking helpers

// IsBadRequest checks if an error is a bad request error
func IsBadRequest(err error) bool {
	return kindOf(err) == KindBadRequest
}

// IsUnauthorized checks if an error is an unauthorized error
func IsUnauthorized(err error) bool {
	return kindOf(err) == KindUnauthorized
}

// IsForbidden checks if an error is a forbidden error
func IsForbidden(err error) bool {
	return kindOf(err) == KindForbidden
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return kindOf(err) == KindInternal
}

func kindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
