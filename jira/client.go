package jira

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/randalmurphal/jirarest/auth"
	devhttp "github.com/randalmurphal/jirarest/http"
)

// Client provides access to the Jira REST API. It owns one transport shared
// by all resource clients; call Close when done.
type Client struct {
	cfg       *Config
	transport *devhttp.Client

	issues       *IssueClient
	sessions     *SessionClient
	users        *UserClient
	projects     *ProjectClient
	components   *ComponentClient
	metadata     *MetadataClient
	search       *SearchClient
	versions     *VersionClient
	projectRoles *ProjectRolesClient
	audit        *AuditClient
}

type clientOptions struct {
	httpClient    *http.Client
	logger        *slog.Logger
	authenticator auth.Authenticator
	userAgent     string
}

// ClientOption configures the client.
type ClientOption func(*clientOptions)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithAuthenticator overrides the authenticator derived from the config.
func WithAuthenticator(a auth.Authenticator) ClientOption {
	return func(o *clientOptions) {
		o.authenticator = a
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// NewClient creates a new Jira client.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, validateErr
	}

	o := clientOptions{userAgent: cfg.HTTP.UserAgent}
	for _, opt := range opts {
		opt(&o)
	}

	if o.httpClient == nil {
		timeout := cfg.HTTP.Timeout
		if timeout == 0 {
			timeout = devhttp.DefaultTimeout
		}
		o.httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    cfg.HTTP.MaxIdleConns,
				IdleConnTimeout: cfg.HTTP.IdleConnTimeout,
			},
		}
	}
	if o.authenticator == nil {
		a, err := cfg.Authenticator(context.Background())
		if err != nil {
			return nil, err
		}
		o.authenticator = a
	}

	apiBase, err := cfg.APIBaseURL()
	if err != nil {
		return nil, err
	}
	authBase, err := cfg.AuthBaseURL()
	if err != nil {
		return nil, err
	}

	transport := devhttp.NewClient(devhttp.ClientConfig{
		Client:        o.httpClient,
		ServiceName:   "jira",
		UserAgent:     o.userAgent,
		Logger:        o.logger,
		BeforeRequest: o.authenticator.Apply,
	})

	sessions := NewSessionClient(authBase, transport)
	issues := NewIssueClient(apiBase, transport, sessions)
	if cfg.GetAPIVersion() == APIVersionV3 {
		issues.format = adfText
	}
	return &Client{
		cfg:          cfg,
		transport:    transport,
		issues:       issues,
		sessions:     sessions,
		users:        NewUserClient(apiBase, transport),
		projects:     NewProjectClient(apiBase, transport),
		components:   NewComponentClient(apiBase, transport),
		metadata:     NewMetadataClient(apiBase, transport),
		search:       NewSearchClient(apiBase, transport),
		versions:     NewVersionClient(apiBase, transport),
		projectRoles: NewProjectRolesClient(apiBase, transport),
		audit:        NewAuditClient(apiBase, transport),
	}, nil
}

// Issues returns the issue client.
func (c *Client) Issues() *IssueClient { return c.issues }

// Sessions returns the session client.
func (c *Client) Sessions() *SessionClient { return c.sessions }

// Users returns the user client.
func (c *Client) Users() *UserClient { return c.users }

// Projects returns the project client.
func (c *Client) Projects() *ProjectClient { return c.projects }

// Components returns the component client.
func (c *Client) Components() *ComponentClient { return c.components }

// Metadata returns the metadata client.
func (c *Client) Metadata() *MetadataClient { return c.metadata }

// Search returns the search client.
func (c *Client) Search() *SearchClient { return c.search }

// Versions returns the version client.
func (c *Client) Versions() *VersionClient { return c.versions }

// ProjectRoles returns the project roles client.
func (c *Client) ProjectRoles() *ProjectRolesClient { return c.projectRoles }

// Audit returns the audit client.
func (c *Client) Audit() *AuditClient { return c.audit }

// APIVersionInUse returns the REST API version requests are sent to.
func (c *Client) APIVersionInUse() APIVersion {
	return c.cfg.GetAPIVersion()
}

// Close releases idle connections. Promises still pending complete
// normally.
func (c *Client) Close() error {
	c.transport.Close()
	return nil
}

// Context key type for storing Jira client in context.
type jiraClientKey struct{}

// ClientFromContext extracts a Jira Client from a context.
// Returns nil if no Client is present.
func ClientFromContext(ctx context.Context) *Client {
	if c, ok := ctx.Value(jiraClientKey{}).(*Client); ok {
		return c
	}
	return nil
}

// ContextWithClient adds a Jira Client to a context.
func ContextWithClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, jiraClientKey{}, c)
}
