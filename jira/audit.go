package jira

import (
	"context"
	"net/url"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/promise"
)

// AuditClient reads and writes the audit log (Server/Data Center).
type AuditClient struct {
	base      *url.URL
	transport *devhttp.Client
}

// NewAuditClient returns an AuditClient for the API at base.
func NewAuditClient(base *url.URL, transport *devhttp.Client) *AuditClient {
	return &AuditClient{base: base, transport: transport}
}

// GetAuditRecords returns audit records matching the filter.
func (c *AuditClient) GetAuditRecords(ctx context.Context, in AuditRecordSearchInput) *promise.Promise[AuditRecordsData] {
	uri := resource(c.base, "auditing", "record")
	if q := in.query(); len(q) > 0 {
		uri = withQuery(uri, q)
	}
	return getAndParse(ctx, c.transport, uri, parseAuditRecordsData)
}

// AddAuditRecord appends a record to the audit log.
func (c *AuditClient) AddAuditRecord(ctx context.Context, in AuditRecordInput) *promise.Promise[struct{}] {
	return post(ctx, c.transport, resource(c.base, "auditing", "record"), in, generateAuditRecordInput)
}
