package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// Authenticator adds credentials to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request) error
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(req *http.Request) error

// Apply implements Authenticator.
func (f AuthenticatorFunc) Apply(req *http.Request) error {
	return f(req)
}

// Anonymous sends requests without credentials.
type Anonymous struct{}

// Apply implements Authenticator.
func (Anonymous) Apply(*http.Request) error { return nil }

// Basic authenticates with a username and password (Jira Server).
type Basic struct {
	Username string
	Password string
}

// Apply implements Authenticator.
func (b Basic) Apply(req *http.Request) error {
	if b.Username == "" {
		return ErrMissingCredentials
	}
	req.Header.Set("Authorization", "Basic "+basicCredentials(b.Username, b.Password))
	return nil
}

// APIToken authenticates with an account email and API token (Jira Cloud).
type APIToken struct {
	Email string
	Token string
}

// Apply implements Authenticator.
func (a APIToken) Apply(req *http.Request) error {
	if a.Email == "" || a.Token == "" {
		return ErrMissingCredentials
	}
	req.Header.Set("Authorization", "Basic "+basicCredentials(a.Email, a.Token))
	return nil
}

// Bearer authenticates with a personal access token (Server/Data Center).
type Bearer struct {
	Token string
}

// Apply implements Authenticator.
func (b Bearer) Apply(req *http.Request) error {
	if b.Token == "" {
		return ErrMissingCredentials
	}
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

func basicCredentials(user, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + secret))
}

// MaskSecret returns s with all but the first four characters replaced,
// for display in logs and CLI output.
func MaskSecret(s string) string {
	const visible = 4
	if len(s) <= visible {
		return strings.Repeat("*", len(s))
	}
	return s[:visible] + strings.Repeat("*", len(s)-visible)
}
