package jira

import (
	"context"
	"net/url"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/promise"
)

// ProjectClient reads projects.
type ProjectClient struct {
	base      *url.URL
	transport *devhttp.Client
}

// NewProjectClient returns a ProjectClient for the API at base.
func NewProjectClient(base *url.URL, transport *devhttp.Client) *ProjectClient {
	return &ProjectClient{base: base, transport: transport}
}

// GetProject fetches a project by key.
func (c *ProjectClient) GetProject(ctx context.Context, key string) *promise.Promise[Project] {
	if key == "" {
		return promise.Reject[Project](missing("key", "project key is required"))
	}
	return getAndParse(ctx, c.transport, resource(c.base, "project", key), parseProject)
}

// GetProjectByURI fetches the project at uri.
func (c *ProjectClient) GetProjectByURI(ctx context.Context, uri *url.URL) *promise.Promise[Project] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[Project](err)
	}
	return getAndParse(ctx, c.transport, uri, parseProject)
}

// GetAllProjects lists the projects visible to the user.
func (c *ProjectClient) GetAllProjects(ctx context.Context) *promise.Promise[[]BasicProject] {
	return getAndParse(ctx, c.transport, resource(c.base, "project"), ArrayParser(parseBasicProject))
}
