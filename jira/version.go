package jira

import (
	"context"
	"net/url"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/promise"
)

// VersionClient manages project versions.
type VersionClient struct {
	base      *url.URL
	transport *devhttp.Client
}

// NewVersionClient returns a VersionClient for the API at base.
func NewVersionClient(base *url.URL, transport *devhttp.Client) *VersionClient {
	return &VersionClient{base: base, transport: transport}
}

// GetVersion fetches the version at uri.
func (c *VersionClient) GetVersion(ctx context.Context, uri *url.URL) *promise.Promise[Version] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[Version](err)
	}
	return getAndParse(ctx, c.transport, uri, parseVersion)
}

// CreateVersion creates a version. ProjectKey and Name are required.
func (c *VersionClient) CreateVersion(ctx context.Context, in VersionInput) *promise.Promise[Version] {
	return postAndParse(ctx, c.transport, resource(c.base, "version"), in, generateVersionCreate, parseVersion)
}

// UpdateVersion changes the fields set in the input.
func (c *VersionClient) UpdateVersion(ctx context.Context, uri *url.URL, in VersionInput) *promise.Promise[Version] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[Version](err)
	}
	return putAndParse(ctx, c.transport, uri, in, generateVersionInput, parseVersion)
}

// RemoveVersion deletes a version, optionally moving the issues that
// reference it to other versions.
func (c *VersionClient) RemoveVersion(ctx context.Context, uri, moveFixIssuesTo, moveAffectedIssuesTo *url.URL) *promise.Promise[struct{}] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[struct{}](err)
	}
	q := url.Values{}
	if moveFixIssuesTo != nil {
		q.Set("moveFixIssuesTo", moveFixIssuesTo.String())
	}
	if moveAffectedIssuesTo != nil {
		q.Set("moveAffectedIssuesTo", moveAffectedIssuesTo.String())
	}
	if len(q) > 0 {
		uri = withQuery(uri, q)
	}
	return del(ctx, c.transport, uri)
}

// GetVersionRelatedIssuesCount counts the issues fixed in or affected by a
// version.
func (c *VersionClient) GetVersionRelatedIssuesCount(ctx context.Context, uri *url.URL) *promise.Promise[VersionRelatedIssuesCount] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[VersionRelatedIssuesCount](err)
	}
	return getAndParse(ctx, c.transport, resource(uri, "relatedIssueCounts"), parseVersionRelatedIssuesCount)
}

// GetNumUnresolvedIssues counts the unresolved issues of a version.
func (c *VersionClient) GetNumUnresolvedIssues(ctx context.Context, uri *url.URL) *promise.Promise[int] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[int](err)
	}
	return getAndParse(ctx, c.transport, resource(uri, "unresolvedIssueCount"), parseUnresolvedIssueCount)
}

// MoveVersionAfter places a version directly after another.
func (c *VersionClient) MoveVersionAfter(ctx context.Context, uri, after *url.URL) *promise.Promise[Version] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[Version](err)
	}
	return postAndParse(ctx, c.transport, resource(uri, "move"), after, generateVersionAfter, parseVersion)
}

// MoveVersion moves a version to a relative position.
func (c *VersionClient) MoveVersion(ctx context.Context, uri *url.URL, pos VersionPosition) *promise.Promise[Version] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[Version](err)
	}
	return postAndParse(ctx, c.transport, resource(uri, "move"), pos, generateVersionPosition, parseVersion)
}
