package jira

import (
	"context"
	"net/url"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/promise"
)

// ComponentClient manages project components.
type ComponentClient struct {
	base      *url.URL
	transport *devhttp.Client
}

// NewComponentClient returns a ComponentClient for the API at base.
func NewComponentClient(base *url.URL, transport *devhttp.Client) *ComponentClient {
	return &ComponentClient{base: base, transport: transport}
}

// GetComponent fetches the component at uri.
func (c *ComponentClient) GetComponent(ctx context.Context, uri *url.URL) *promise.Promise[Component] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[Component](err)
	}
	return getAndParse(ctx, c.transport, uri, parseComponent)
}

// CreateComponent creates a component in the project with the given key.
// The input must carry a name.
func (c *ComponentClient) CreateComponent(ctx context.Context, projectKey string, in ComponentInput) *promise.Promise[Component] {
	return postAndParse(ctx, c.transport, resource(c.base, "component"), in,
		generateComponentCreate(projectKey), parseComponent)
}

// UpdateComponent changes the fields set in the input.
func (c *ComponentClient) UpdateComponent(ctx context.Context, uri *url.URL, in ComponentInput) *promise.Promise[Component] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[Component](err)
	}
	return putAndParse(ctx, c.transport, uri, in, generateComponentInput, parseComponent)
}

// RemoveComponent deletes a component. When moveIssuesTo is set, issues of
// the removed component are reassigned to it.
func (c *ComponentClient) RemoveComponent(ctx context.Context, uri, moveIssuesTo *url.URL) *promise.Promise[struct{}] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[struct{}](err)
	}
	if moveIssuesTo != nil {
		uri = withQuery(uri, url.Values{"moveIssuesTo": {moveIssuesTo.String()}})
	}
	return del(ctx, c.transport, uri)
}

// GetComponentRelatedIssuesCount returns the number of issues in a component.
func (c *ComponentClient) GetComponentRelatedIssuesCount(ctx context.Context, uri *url.URL) *promise.Promise[int] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[int](err)
	}
	return getAndParse(ctx, c.transport, resource(uri, "relatedIssueCounts"), parseComponentRelatedIssuesCount)
}
