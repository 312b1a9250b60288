package jira

import (
	"context"
	"net/url"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/promise"
)

// SessionClient reads the authenticated session. It talks to the auth API
// ({server}/rest/auth/latest), not the main REST API.
type SessionClient struct {
	authBase  *url.URL
	transport *devhttp.Client
}

// NewSessionClient returns a SessionClient for the auth API at authBase.
func NewSessionClient(authBase *url.URL, transport *devhttp.Client) *SessionClient {
	return &SessionClient{authBase: authBase, transport: transport}
}

// GetCurrentSession returns the session of the authenticated user.
func (c *SessionClient) GetCurrentSession(ctx context.Context) *promise.Promise[Session] {
	return getAndParse(ctx, c.transport, resource(c.authBase, "session"), parseSession)
}
