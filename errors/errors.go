package errors

import "errors"

// Common CLI errors with actionable guidance.
var (
	// ErrNotAuthenticated indicates the configured credentials were rejected.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired indicates the access token has expired.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotConfigured indicates no usable Jira server configuration exists.
	ErrNotConfigured = errors.New("not configured")

	// ErrConnectionFailed indicates the server is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrPermissionDenied indicates insufficient permissions.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound indicates the requested Jira entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the request was rejected before or by the server.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupported indicates the operation is not offered by the API.
	ErrUnsupported = errors.New("unsupported")
)
