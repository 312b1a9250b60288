package jira

import (
	"context"
	"net/url"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/opt"
	"github.com/randalmurphal/jirarest/promise"
)

// DefaultPageSize is the page size used by SearchAll when none is given.
const DefaultPageSize = 50

// SearchClient runs JQL searches.
type SearchClient struct {
	base      *url.URL
	transport *devhttp.Client
}

// NewSearchClient returns a SearchClient for the API at base.
func NewSearchClient(base *url.URL, transport *devhttp.Client) *SearchClient {
	return &SearchClient{base: base, transport: transport}
}

// SearchJQL returns one page of issues matching jql. The query travels in
// a POST body so long queries are not limited by URL length.
func (c *SearchClient) SearchJQL(ctx context.Context, jql string, opts SearchOptions) *promise.Promise[SearchResult] {
	return postAndParse(ctx, c.transport, resource(c.base, "search"), opts, generateSearch(jql), parseSearchResult)
}

// SearchAll iterates over every issue matching jql, fetching pageSize
// issues per request.
func (c *SearchClient) SearchAll(jql string, pageSize int, fields ...string) *devhttp.PageIterator[Issue] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return devhttp.NewPageIterator(func(ctx context.Context, startAt int) ([]Issue, int, error) {
		res, err := c.SearchJQL(ctx, jql, SearchOptions{
			StartAt:    startAt,
			MaxResults: opt.Of(pageSize),
			Fields:     fields,
		}).Get(ctx)
		if err != nil {
			return nil, 0, err
		}
		return res.Issues, res.Total, nil
	})
}
