// Package apperr defines the error kinds surfaced by the API and their HTTP mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the kind of failure reported to clients.
type Code string

const (
	CodeValidation      Code = "validation_error"
	CodeRange           Code = "range_error"
	CodeFormat          Code = "format_error"
	CodeRateLimited     Code = "rate_limit_exceeded"
	CodeNotFound        Code = "not_found"
	CodePayloadTooLarge Code = "payload_too_large"
	CodeUnauthenticated Code = "authentication_failed"
	CodeInternal        Code = "internal_error"
)

// Error is a client-facing error. Message is safe to return in a response body;
// Err, when set, is the underlying cause and is only logged.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Code {
	case CodeValidation, CodeRange, CodeFormat, CodePayloadTooLarge:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error      { return &Error{Code: CodeValidation, Message: msg} }
func Range(msg string) *Error           { return &Error{Code: CodeRange, Message: msg} }
func Format(msg string) *Error          { return &Error{Code: CodeFormat, Message: msg} }
func RateLimited(msg string) *Error     { return &Error{Code: CodeRateLimited, Message: msg} }
func NotFound(msg string) *Error        { return &Error{Code: CodeNotFound, Message: msg} }
func PayloadTooLarge(msg string) *Error { return &Error{Code: CodePayloadTooLarge, Message: msg} }
func Unauthenticated(msg string) *Error { return &Error{Code: CodeUnauthenticated, Message: msg} }

// Internal wraps a storage or filesystem failure behind a generic message.
func Internal(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Status maps any error to an HTTP status; errors outside the taxonomy are 500.
func Status(err error) int {
	if e, ok := As(err); ok {
		return e.Status()
	}
	return http.StatusInternalServerError
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
