package errors

import (
	"errors"
	"strings"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/jira"
)

var configErrors = []error{
	jira.ErrConfigURLRequired,
	jira.ErrConfigURLInvalid,
	jira.ErrConfigAuthTypeRequired,
	jira.ErrConfigAuthTypeInvalid,
	jira.ErrConfigAPITokenAuth,
	jira.ErrConfigBasicAuth,
	jira.ErrConfigPATAuth,
	jira.ErrConfigOAuth2Auth,
	jira.ErrConfigJWTAuth,
	jira.ErrConfigAPIVersionInvalid,
}

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrSessionExpired) {
		return true
	}
	return errors.Is(err, devhttp.ErrUnauthorized) || devhttp.IsAuthenticateError(err)
}

// IsConnectionError checks if an error is connection-related.
// This includes TLS errors, timeouts, and network connectivity issues.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrConnectionFailed) || devhttp.IsTransportError(err) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	// Network connectivity
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp") {
		return true
	}
	// TLS/certificate errors (consistent with WrapConnectionError)
	if strings.Contains(errStr, "x509") {
		return true
	}
	return false
}

// IsConfigError checks if an error came from jira.Config validation.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) {
		return true
	}
	for _, target := range configErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsPermissionError checks if an error is permission-related.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, devhttp.ErrForbidden)
}

// IsNotFoundError checks if the requested entity does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || jira.IsNotFound(err)
}
