// Package http provides the transport adapter shared by the Jira resource
// clients: single round-trip requests returning deferred responses, the
// transport error type, and status sentinels.
package http

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for API failures.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing authentication.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the user lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("bad request")

	// ErrServerError indicates a server-side error occurred.
	ErrServerError = errors.New("server error")

	// ErrAuthenticate indicates the BeforeRequest hook could not attach
	// credentials, e.g. a token endpoint refused them. No request was sent.
	ErrAuthenticate = errors.New("authenticate request")
)

// StatusSentinel returns the sentinel error for an HTTP status code,
// or nil when none applies.
func StatusSentinel(statusCode int) error {
	switch statusCode {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if statusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// TransportError represents a failure to complete an HTTP round trip:
// connection refused, timeout, canceled context, unreadable body.
// Authenticator failures are not transport errors; see ErrAuthenticate.
type TransportError struct {
	// Service is the name of the integration (e.g., "jira").
	Service string

	// Method is the HTTP method of the failed request.
	Method string

	// URL is the request target.
	URL string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Service, e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError represents validation failures for request data.
type ValidationError struct {
	// Service is the integration that rejected the request.
	Service string

	// Field is the field that failed validation.
	Field string

	// Message explains the validation failure.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s validation error on %s: %s", e.Service, e.Field, e.Message)
	}
	return fmt.Sprintf("%s validation error: %s", e.Service, e.Message)
}

// Unwrap returns ErrBadRequest.
func (e *ValidationError) Unwrap() error {
	return ErrBadRequest
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden reports whether the error indicates permission was denied.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsAuthenticateError reports whether credentials could not be attached to
// the request.
func IsAuthenticateError(err error) bool {
	return errors.Is(err, ErrAuthenticate)
}

// IsTransportError reports whether err is a failure to complete a round trip.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsValidationError reports whether err is a local input validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
