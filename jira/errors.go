package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	devhttp "github.com/randalmurphal/jirarest/http"
)

// Configuration errors.
var (
	ErrConfigURLRequired       = errors.New("jira url is required")
	ErrConfigURLInvalid        = errors.New("jira url must be an absolute http(s) url")
	ErrConfigAuthTypeRequired  = errors.New("jira auth type is required")
	ErrConfigAuthTypeInvalid   = errors.New("jira auth type must be anonymous, api_token, oauth2, basic, pat, or jwt")
	ErrConfigAPITokenAuth      = errors.New("api_token auth requires email and token")
	ErrConfigBasicAuth         = errors.New("basic auth requires username and password")
	ErrConfigPATAuth           = errors.New("pat auth requires token")
	ErrConfigOAuth2Auth        = errors.New("oauth2 auth requires access_token, or client_id, client_secret and token_url")
	ErrConfigJWTAuth           = errors.New("jwt auth requires app_key and shared_secret")
	ErrConfigAPIVersionInvalid = errors.New("api_version must be v2 or v3")
)

// Request errors, raised before any call is made.
var (
	ErrIssueKeyInvalid = errors.New("invalid issue id or key")
	ErrURIRequired     = errors.New("resource uri is required")

	// ErrUnsupportedOperation marks operations the modelled API does not
	// provide. They fail without issuing a request.
	ErrUnsupportedOperation = errors.New("operation not supported")
)

// ErrMalformedResponse is matched by every *DecodeError.
var ErrMalformedResponse = errors.New("malformed jira response")

var (
	errMissingField = errors.New("missing required field")
	errNotObject    = errors.New("expected a JSON object")
)

// APIError is a non-2xx response from the Jira API.
//
// When the body has the standard Jira error shape, ErrorMessages and Errors
// hold its contents. Otherwise Body holds the raw response text.
type APIError struct {
	StatusCode    int               `json:"-"`
	ErrorMessages []string          `json:"errorMessages,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	Body          string            `json:"-"`
	Endpoint      string            `json:"-"`
	RequestID     string            `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var parts []string
	parts = append(parts, e.ErrorMessages...)
	for _, field := range sortedKeys(e.Errors) {
		parts = append(parts, field+": "+e.Errors[field])
	}
	if len(parts) == 0 && e.Body != "" {
		parts = append(parts, truncate(e.Body, 200))
	}

	prefix := fmt.Sprintf("jira api error (%d)", e.StatusCode)
	if e.Endpoint != "" {
		prefix += " at " + e.Endpoint
	}
	if e.RequestID != "" {
		prefix += " [" + e.RequestID + "]"
	}
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ": " + strings.Join(parts, "; ")
}

// Unwrap returns the underlying sentinel error based on status code.
func (e *APIError) Unwrap() error {
	return devhttp.StatusSentinel(e.StatusCode)
}

// Messages returns all server messages, general ones first.
func (e *APIError) Messages() []string {
	msgs := append([]string(nil), e.ErrorMessages...)
	for _, field := range sortedKeys(e.Errors) {
		msgs = append(msgs, e.Errors[field])
	}
	return msgs
}

// IsNotFound returns true if this is a 404 error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if this is a 401 error.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsForbidden returns true if this is a 403 error.
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// NewAPIError creates a new APIError from status code and error messages.
func NewAPIError(statusCode int, messages []string, fieldErrors map[string]string) *APIError {
	return &APIError{
		StatusCode:    statusCode,
		ErrorMessages: messages,
		Errors:        fieldErrors,
	}
}

// DecodeError reports a well-formed response the client cannot understand.
type DecodeError struct {
	// Entity is the kind of object being decoded (e.g. "component").
	Entity string

	// Field is the dotted path of the offending field, empty when the
	// document itself is malformed.
	Field string

	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("jira: decode %s: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("jira: decode %s: field %q: %v", e.Entity, e.Field, e.Err)
}

// Unwrap exposes both ErrMalformedResponse and the cause.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Err}
}

// within re-roots e under the field prefix of an enclosing entity.
func (e *DecodeError) within(entity, prefix string) *DecodeError {
	field := prefix
	switch {
	case e.Field == "":
	case strings.HasPrefix(e.Field, "["):
		field = prefix + e.Field
	default:
		field = prefix + "." + e.Field
	}
	return &DecodeError{Entity: entity, Field: field, Err: e.Err}
}

// translateError turns a non-2xx response into an *APIError.
func translateError(resp *devhttp.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("X-Request-Id"),
	}
	if resp.URL != nil {
		apiErr.Endpoint = resp.URL.Path
	}

	var body struct {
		ErrorMessages *[]string         `json:"errorMessages"`
		Errors        map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil || (body.ErrorMessages == nil && body.Errors == nil) {
		apiErr.Body = string(resp.Body)
		return apiErr
	}

	if body.ErrorMessages != nil {
		apiErr.ErrorMessages = *body.ErrorMessages
	}
	apiErr.Errors = body.Errors
	return apiErr
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, devhttp.ErrNotFound)
}

// IsPermissionDenied reports whether the server rejected the credentials or
// the user's permissions (401 or 403).
func IsPermissionDenied(err error) bool {
	return errors.Is(err, devhttp.ErrUnauthorized) || errors.Is(err, devhttp.ErrForbidden)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, devhttp.ErrRateLimited)
}

// IsUnsupported reports whether err came from an unsupported operation.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedOperation)
}

// IsDecodeError reports whether the response could not be understood.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsAPIError reports whether err is a translated non-2xx response.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
