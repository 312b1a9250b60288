package jira

import (
	"context"
	"net/url"
	"strconv"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/promise"
)

const issueTypeSchemeResource = "issuetypescheme"

// MetadataClient reads instance-wide metadata: issue types, statuses,
// priorities, resolutions, fields and issue type schemes.
type MetadataClient struct {
	base      *url.URL
	transport *devhttp.Client
}

// NewMetadataClient returns a MetadataClient for the API at base.
func NewMetadataClient(base *url.URL, transport *devhttp.Client) *MetadataClient {
	return &MetadataClient{base: base, transport: transport}
}

// GetIssueType fetches the issue type at uri.
func (c *MetadataClient) GetIssueType(ctx context.Context, uri *url.URL) *promise.Promise[IssueType] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[IssueType](err)
	}
	return getAndParse(ctx, c.transport, uri, parseIssueType)
}

// GetIssueTypes lists all issue types.
func (c *MetadataClient) GetIssueTypes(ctx context.Context) *promise.Promise[[]IssueType] {
	return getAndParse(ctx, c.transport, resource(c.base, "issuetype"), ArrayParser(parseIssueType))
}

// GetIssueLinkTypes lists all issue link types.
func (c *MetadataClient) GetIssueLinkTypes(ctx context.Context) *promise.Promise[[]IssueLinkType] {
	return getAndParse(ctx, c.transport, resource(c.base, "issueLinkType"),
		FieldArrayParser("issueLinkTypes", parseIssueLinkType))
}

// GetStatus fetches the status at uri.
func (c *MetadataClient) GetStatus(ctx context.Context, uri *url.URL) *promise.Promise[Status] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[Status](err)
	}
	return getAndParse(ctx, c.transport, uri, parseStatus)
}

// GetStatuses lists all statuses.
func (c *MetadataClient) GetStatuses(ctx context.Context) *promise.Promise[[]Status] {
	return getAndParse(ctx, c.transport, resource(c.base, "status"), ArrayParser(parseStatus))
}

// GetPriority fetches the priority at uri.
func (c *MetadataClient) GetPriority(ctx context.Context, uri *url.URL) *promise.Promise[Priority] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[Priority](err)
	}
	return getAndParse(ctx, c.transport, uri, parsePriority)
}

// GetPriorities lists all priorities.
func (c *MetadataClient) GetPriorities(ctx context.Context) *promise.Promise[[]Priority] {
	return getAndParse(ctx, c.transport, resource(c.base, "priority"), ArrayParser(parsePriority))
}

// GetResolution fetches the resolution at uri.
func (c *MetadataClient) GetResolution(ctx context.Context, uri *url.URL) *promise.Promise[Resolution] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[Resolution](err)
	}
	return getAndParse(ctx, c.transport, uri, parseResolution)
}

// GetResolutions lists all resolutions.
func (c *MetadataClient) GetResolutions(ctx context.Context) *promise.Promise[[]Resolution] {
	return getAndParse(ctx, c.transport, resource(c.base, "resolution"), ArrayParser(parseResolution))
}

// GetServerInfo fetches server information.
func (c *MetadataClient) GetServerInfo(ctx context.Context) *promise.Promise[ServerInfo] {
	return getAndParse(ctx, c.transport, resource(c.base, "serverInfo"), parseServerInfo)
}

// GetFields lists all system and custom fields.
func (c *MetadataClient) GetFields(ctx context.Context) *promise.Promise[[]Field] {
	return getAndParse(ctx, c.transport, resource(c.base, "field"), ArrayParser(parseField))
}

// CreateIssueTypeScheme creates an issue type scheme.
func (c *MetadataClient) CreateIssueTypeScheme(ctx context.Context, in IssueTypeSchemeInput) *promise.Promise[IssueTypeScheme] {
	return postAndParse(ctx, c.transport, resource(c.base, issueTypeSchemeResource), in,
		generateIssueTypeSchemeInput, parseIssueTypeScheme)
}

// GetAllIssueTypeSchemes lists all issue type schemes.
func (c *MetadataClient) GetAllIssueTypeSchemes(ctx context.Context) *promise.Promise[[]IssueTypeScheme] {
	return getAndParse(ctx, c.transport, resource(c.base, issueTypeSchemeResource),
		FieldArrayParser("schemes", parseIssueTypeScheme))
}

// GetIssueTypeScheme fetches an issue type scheme by id.
func (c *MetadataClient) GetIssueTypeScheme(ctx context.Context, id int64) *promise.Promise[IssueTypeScheme] {
	uri := resource(c.base, issueTypeSchemeResource, strconv.FormatInt(id, 10))
	return getAndParse(ctx, c.transport, uri, parseIssueTypeScheme)
}

// GetProjectsAssociatedWithIssueTypeScheme lists the projects using a scheme.
func (c *MetadataClient) GetProjectsAssociatedWithIssueTypeScheme(ctx context.Context, schemeID int64) *promise.Promise[[]Project] {
	uri := resource(c.base, issueTypeSchemeResource, strconv.FormatInt(schemeID, 10), "associations")
	return getAndParse(ctx, c.transport, uri, ArrayParser(parseProject))
}

// UpdateIssueTypeScheme is not provided by the API and always fails with
// ErrUnsupportedOperation.
func (c *MetadataClient) UpdateIssueTypeScheme(ctx context.Context, id int64) *promise.Promise[IssueTypeScheme] {
	return unsupported[IssueTypeScheme]("update issue type scheme")
}

// DeleteIssueTypeScheme is not provided by the API and always fails with
// ErrUnsupportedOperation.
func (c *MetadataClient) DeleteIssueTypeScheme(ctx context.Context, id int64) *promise.Promise[struct{}] {
	return unsupported[struct{}]("delete issue type scheme")
}

// AssignSchemeToProject is not provided by the API and always fails with
// ErrUnsupportedOperation.
func (c *MetadataClient) AssignSchemeToProject(ctx context.Context, schemeID, projectID int64) *promise.Promise[IssueTypeScheme] {
	return unsupported[IssueTypeScheme]("assign issue type scheme")
}
