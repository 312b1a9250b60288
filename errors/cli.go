package errors

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/jira"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string

	cause error
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// Unwrap returns both the CLI sentinel and the original cause, so callers
// can still match jira and transport errors through a CLIError.
func (e *CLIError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.cause}
}

// ErrorMessenger provides customizable error messages.
// Implement this interface to customize suggestions for your CLI.
type ErrorMessenger interface {
	AuthErrorMessage() (message, suggestion string)
	SessionExpiredMessage() (message, suggestion string)
	PermissionDeniedMessage() (message, suggestion string)
	ConnectionErrorMessage(serverURL string) (message, suggestion string)
	TLSErrorMessage(serverURL string) (message, suggestion string)
	TimeoutErrorMessage(serverURL string) (message, suggestion string)
	NotConfiguredMessage() (message, suggestion string)
	NotFoundMessage() (message, suggestion string)
	InvalidInputMessage() (message, suggestion string)
	UnsupportedMessage() (message, suggestion string)
}

// DefaultMessenger provides default error messages for jirarest.
type DefaultMessenger struct{}

func (m DefaultMessenger) AuthErrorMessage() (string, string) {
	return "Jira rejected the configured credentials.",
		"Check auth.type and its credentials with 'jirarest config list'."
}

func (m DefaultMessenger) SessionExpiredMessage() (string, string) {
	return "Your access token has expired.", "Refresh the token and run 'jirarest config set auth.access_token <token>'."
}

func (m DefaultMessenger) PermissionDeniedMessage() (string, string) {
	return "You don't have permission to perform this action.",
		"Ask a Jira administrator for the required project permission."
}

func (m DefaultMessenger) ConnectionErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Cannot connect to Jira at %s", serverURL),
		"Check that:\n  - The server is running\n  - The URL is correct\n  - Your network connection is working"
}

func (m DefaultMessenger) TLSErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("TLS/certificate error connecting to %s", serverURL),
		"Check that the server certificate is valid."
}

func (m DefaultMessenger) TimeoutErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Connection to %s timed out", serverURL),
		"The server may be overloaded or unreachable.\nTry again in a moment, or raise http.timeout."
}

func (m DefaultMessenger) NotConfiguredMessage() (string, string) {
	return "The Jira connection is not configured.",
		"Run 'jirarest config set url <jira url>' and set auth.type."
}

func (m DefaultMessenger) NotFoundMessage() (string, string) {
	return "Jira could not find that resource.",
		"Check the key or id, and that you can see it in the browser."
}

func (m DefaultMessenger) InvalidInputMessage() (string, string) {
	return "The request was rejected.", ""
}

func (m DefaultMessenger) UnsupportedMessage() (string, string) {
	return "This operation is not supported by the Jira REST API.", ""
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

func wrap(sentinel, cause error, msg, suggestion, details string) *CLIError {
	return &CLIError{Err: sentinel, cause: cause, Message: msg, Suggestion: suggestion, Details: details}
}

// Wrap maps any error returned by the jira client to a CLIError. Errors it
// does not recognise are returned unchanged.
func Wrap(err error, serverURL string, opts ...Option) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}
	if wrapped := WrapConfigError(err, opts...); wrapped != err {
		return wrapped
	}
	if wrapped := WrapAuthError(err, opts...); wrapped != err {
		return wrapped
	}
	if wrapped := WrapConnectionError(err, serverURL, opts...); wrapped != err {
		return wrapped
	}
	return WrapRequestError(err, opts...)
}

// WrapConfigError wraps configuration validation failures.
func WrapConfigError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	if !IsConfigError(err) {
		return err
	}
	msg, suggestion := getMessenger(opts).NotConfiguredMessage()
	return wrap(ErrNotConfigured, err, msg, suggestion, err.Error())
}

// WrapAuthError wraps authentication-related errors with helpful guidance.
func WrapAuthError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	messenger := getMessenger(opts)

	// oauth2 token sources report expiry in the message only
	if strings.Contains(errStr, "token") && strings.Contains(errStr, "expired") {
		msg, suggestion := messenger.SessionExpiredMessage()
		return wrap(ErrSessionExpired, err, msg, suggestion, "")
	}

	if errors.Is(err, devhttp.ErrUnauthorized) {
		msg, suggestion := messenger.AuthErrorMessage()
		return wrap(ErrNotAuthenticated, err, msg, suggestion, apiDetails(err))
	}

	if devhttp.IsAuthenticateError(err) {
		msg, suggestion := messenger.AuthErrorMessage()
		return wrap(ErrNotAuthenticated, err, msg, suggestion, err.Error())
	}

	if errors.Is(err, devhttp.ErrForbidden) {
		msg, suggestion := messenger.PermissionDeniedMessage()
		return wrap(ErrPermissionDenied, err, msg, suggestion, apiDetails(err))
	}

	return err
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
func WrapConnectionError(err error, serverURL string, opts ...Option) error {
	if err == nil || !IsConnectionError(err) {
		return err
	}

	errStr := strings.ToLower(err.Error())
	messenger := getMessenger(opts)

	if strings.Contains(errStr, "certificate") || strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") {
		msg, suggestion := messenger.TLSErrorMessage(serverURL)
		return wrap(ErrConnectionFailed, err, msg, suggestion, err.Error())
	}

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		msg, suggestion := messenger.TimeoutErrorMessage(serverURL)
		return wrap(ErrConnectionFailed, err, msg, suggestion, "")
	}

	msg, suggestion := messenger.ConnectionErrorMessage(serverURL)
	return wrap(ErrConnectionFailed, err, msg, suggestion, "")
}

// WrapRequestError wraps not-found, validation and unsupported-operation
// errors. Server messages are carried in Details.
func WrapRequestError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	messenger := getMessenger(opts)

	switch {
	case jira.IsUnsupported(err):
		msg, suggestion := messenger.UnsupportedMessage()
		return wrap(ErrUnsupported, err, msg, suggestion, err.Error())
	case jira.IsNotFound(err):
		msg, suggestion := messenger.NotFoundMessage()
		return wrap(ErrNotFound, err, msg, suggestion, apiDetails(err))
	case devhttp.IsValidationError(err), errors.Is(err, devhttp.ErrBadRequest), errors.Is(err, jira.ErrIssueKeyInvalid):
		msg, suggestion := messenger.InvalidInputMessage()
		details := apiDetails(err)
		if details == "" {
			details = err.Error()
		}
		return wrap(ErrInvalidInput, err, msg, suggestion, details)
	}
	return err
}

// apiDetails lists the server's messages from an *jira.APIError, one per line.
func apiDetails(err error) string {
	var apiErr *jira.APIError
	if !errors.As(err, &apiErr) {
		return ""
	}
	var lines []string
	lines = append(lines, apiErr.ErrorMessages...)
	for _, field := range slices.Sorted(maps.Keys(apiErr.Errors)) {
		lines = append(lines, field+": "+apiErr.Errors[field])
	}
	if len(lines) == 0 && apiErr.Body != "" {
		return apiErr.Body
	}
	return strings.Join(lines, "\n")
}

// NewNotConfiguredError creates an error for a missing server URL.
func NewNotConfiguredError(opts ...Option) error {
	msg, suggestion := getMessenger(opts).NotConfiguredMessage()
	return wrap(ErrNotConfigured, nil, msg, suggestion, "")
}

// NewNotAuthenticatedError creates an error for rejected credentials.
func NewNotAuthenticatedError(opts ...Option) error {
	msg, suggestion := getMessenger(opts).AuthErrorMessage()
	return wrap(ErrNotAuthenticated, nil, msg, suggestion, "")
}
