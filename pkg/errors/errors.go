// Package errors defines the error taxonomy shared across rolodex.
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrUnauthenticated is returned when no authenticated principal exists for the request
	ErrUnauthenticated = "unauthenticated"

	// ErrNotFound is returned when a requested resource does not exist
	ErrNotFound = "not_found"

	// ErrForbidden is returned when the policy decision point denies the requested action
	ErrForbidden = "forbidden"

	// ErrUpstream is returned when the identity provider or policy decision point
	// is unreachable or responds with a server error
	ErrUpstream = "upstream"

	// ErrStateMismatch is returned when the OAuth callback state does not match
	// the anti-forgery value stored in the session
	ErrStateMismatch = "state_mismatch"

	// ErrMalformedRequest is returned when a decision request fails validation
	// before or at the policy decision point
	ErrMalformedRequest = "malformed_request"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewUnauthenticatedError creates a new unauthenticated error
func NewUnauthenticatedError(message string, cause error) *Error {
	return NewError(ErrUnauthenticated, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *Error {
	return NewError(ErrNotFound, message, cause)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, cause error) *Error {
	return NewError(ErrForbidden, message, cause)
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(message string, cause error) *Error {
	return NewError(ErrUpstream, message, cause)
}

// NewStateMismatchError creates a new state mismatch error
func NewStateMismatchError(message string, cause error) *Error {
	return NewError(ErrStateMismatch, message, cause)
}

// NewMalformedRequestError creates a new malformed request error
func NewMalformedRequestError(message string, cause error) *Error {
	return NewError(ErrMalformedRequest, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

// IsType reports whether err (or any error it wraps) is an *Error of the
// given type.
func IsType(err error, errorType string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errorType
	}
	return false
}
