package jira

import (
	"context"
	"net/url"
	"strconv"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/promise"
)

// UserClient reads users.
type UserClient struct {
	base      *url.URL
	transport *devhttp.Client
}

// NewUserClient returns a UserClient for the API at base.
func NewUserClient(base *url.URL, transport *devhttp.Client) *UserClient {
	return &UserClient{base: base, transport: transport}
}

// GetUser fetches a user by username, including group membership.
func (c *UserClient) GetUser(ctx context.Context, username string) *promise.Promise[User] {
	if username == "" {
		return promise.Reject[User](missing("username", "username is required"))
	}
	uri := withQuery(resource(c.base, "user"), url.Values{
		"username": {username},
		"expand":   {"groups"},
	})
	return getAndParse(ctx, c.transport, uri, parseUser)
}

// GetUserByURI fetches the user at uri.
func (c *UserClient) GetUserByURI(ctx context.Context, uri *url.URL) *promise.Promise[User] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[User](err)
	}
	return getAndParse(ctx, c.transport, uri, parseUser)
}

// FindUsers searches users by name, display name or email. maxResults of
// zero leaves the limit to the server.
func (c *UserClient) FindUsers(ctx context.Context, query string, maxResults int) *promise.Promise[[]User] {
	if query == "" {
		return promise.Reject[[]User](missing("username", "search query is required"))
	}
	q := url.Values{"username": {query}}
	if maxResults > 0 {
		q.Set("maxResults", strconv.Itoa(maxResults))
	}
	return getAndParse(ctx, c.transport, withQuery(resource(c.base, "user", "search"), q), ArrayParser(parseUser))
}
