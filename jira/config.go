package jira

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/randalmurphal/jirarest/auth"
)

// AuthType represents the type of authentication to use.
type AuthType string

// Authentication types supported by the Jira client.
const (
	AuthAnonymous AuthType = "anonymous"
	AuthAPIToken  AuthType = "api_token" // Cloud: email + API token
	AuthOAuth2    AuthType = "oauth2"    // Cloud: OAuth 2.0
	AuthBasic     AuthType = "basic"     // Server: username + password
	AuthPAT       AuthType = "pat"       // Server/DC: Personal Access Token
	AuthJWT       AuthType = "jwt"       // Connect app: shared secret
)

// Config holds the configuration for the Jira client.
type Config struct {
	// URL is the base URL of the Jira instance.
	// For Cloud: https://your-domain.atlassian.net
	// For Server: https://jira.your-company.com
	URL string `yaml:"url"`

	// APIVersion selects the REST API version, "v2" (default) or "v3".
	APIVersion APIVersion `yaml:"api_version"`

	// Auth contains authentication configuration.
	Auth AuthConfig `yaml:"auth"`

	// HTTP contains HTTP client configuration.
	HTTP HTTPConfig `yaml:"http"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// Type is the authentication method to use.
	Type AuthType `yaml:"type"`

	// Email is required for api_token auth (Cloud).
	Email string `yaml:"email,omitempty"`

	// Token is the API token (Cloud) or PAT (Server/DC).
	Token string `yaml:"token,omitempty"`

	// Username and Password are required for basic auth.
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// OAuth2: either a fixed access token, or client credentials.
	AccessToken  string   `yaml:"access_token,omitempty"`
	ClientID     string   `yaml:"client_id,omitempty"`
	ClientSecret string   `yaml:"client_secret,omitempty"`
	TokenURL     string   `yaml:"token_url,omitempty"`
	Scopes       []string `yaml:"scopes,omitempty"`

	// JWT (Atlassian Connect).
	AppKey       string `yaml:"app_key,omitempty"`
	SharedSecret string `yaml:"shared_secret,omitempty"`
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the request timeout.
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout is how long to keep idle connections open.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIVersion: APIVersionV2,
		Auth:       AuthConfig{Type: AuthAnonymous},
		HTTP: HTTPConfig{
			Timeout:         30 * time.Second,
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrConfigURLRequired
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrConfigURLInvalid
	}

	if c.Auth.Type == "" {
		return ErrConfigAuthTypeRequired
	}

	switch c.Auth.Type {
	case AuthAnonymous:
	case AuthAPIToken:
		if c.Auth.Email == "" || c.Auth.Token == "" {
			return ErrConfigAPITokenAuth
		}
	case AuthBasic:
		if c.Auth.Username == "" || c.Auth.Password == "" {
			return ErrConfigBasicAuth
		}
	case AuthPAT:
		if c.Auth.Token == "" {
			return ErrConfigPATAuth
		}
	case AuthOAuth2:
		hasClient := c.Auth.ClientID != "" && c.Auth.ClientSecret != "" && c.Auth.TokenURL != ""
		if c.Auth.AccessToken == "" && !hasClient {
			return ErrConfigOAuth2Auth
		}
	case AuthJWT:
		if c.Auth.AppKey == "" || c.Auth.SharedSecret == "" {
			return ErrConfigJWTAuth
		}
	default:
		return ErrConfigAuthTypeInvalid
	}

	if c.APIVersion != "" && c.APIVersion != APIVersionV2 && c.APIVersion != APIVersionV3 {
		return ErrConfigAPIVersionInvalid
	}

	return nil
}

// GetAPIVersion returns the effective API version.
func (c *Config) GetAPIVersion() APIVersion {
	if c.APIVersion == "" {
		return APIVersionV2
	}
	return c.APIVersion
}

// APIBaseURL returns {url}/rest/api/{2|3}.
func (c *Config) APIBaseURL() (*url.URL, error) {
	server, err := c.serverURL()
	if err != nil {
		return nil, err
	}
	return server.JoinPath("rest", "api", strings.TrimPrefix(string(c.GetAPIVersion()), "v")), nil
}

// AuthBaseURL returns {url}/rest/auth/latest.
func (c *Config) AuthBaseURL() (*url.URL, error) {
	server, err := c.serverURL()
	if err != nil {
		return nil, err
	}
	return server.JoinPath("rest", "auth", "latest"), nil
}

func (c *Config) serverURL() (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(c.URL, "/"))
	if err != nil || u.Host == "" {
		return nil, ErrConfigURLInvalid
	}
	return u, nil
}

// Authenticator builds the request authenticator for the configured auth
// type. ctx bounds OAuth2 token fetches.
func (c *Config) Authenticator(ctx context.Context) (auth.Authenticator, error) {
	a := c.Auth
	switch a.Type {
	case AuthAnonymous:
		return auth.Anonymous{}, nil
	case AuthAPIToken:
		return auth.APIToken{Email: a.Email, Token: a.Token}, nil
	case AuthBasic:
		return auth.Basic{Username: a.Username, Password: a.Password}, nil
	case AuthPAT:
		return auth.Bearer{Token: a.Token}, nil
	case AuthOAuth2:
		if a.AccessToken != "" {
			return auth.NewOAuth2Static(a.AccessToken), nil
		}
		return auth.NewOAuth2ClientCredentials(ctx, auth.ClientCredentialsConfig{
			ClientID:     a.ClientID,
			ClientSecret: a.ClientSecret,
			TokenURL:     a.TokenURL,
			Scopes:       a.Scopes,
		}), nil
	case AuthJWT:
		server, err := c.serverURL()
		if err != nil {
			return nil, err
		}
		return &auth.ConnectJWT{
			Issuer:       a.AppKey,
			SharedSecret: []byte(a.SharedSecret),
			ContextPath:  server.Path,
		}, nil
	default:
		return nil, ErrConfigAuthTypeInvalid
	}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Auth.Scopes = append([]string(nil), c.Auth.Scopes...)
	return &clone
}
