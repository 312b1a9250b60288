package jira

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/promise"
)

// IssueClient reads and modifies issues. Issue keys are validated locally;
// an invalid key fails with ErrIssueKeyInvalid without a request.
type IssueClient struct {
	base      *url.URL
	transport *devhttp.Client
	sessions  *SessionClient
	format    textFormat
}

// NewIssueClient returns an IssueClient for the API at base. The session
// client resolves the current user for Watch and Unwatch. Comment bodies are
// sent as plain strings; the facade switches to ADF for API v3.
func NewIssueClient(base *url.URL, transport *devhttp.Client, sessions *SessionClient) *IssueClient {
	return &IssueClient{base: base, transport: transport, sessions: sessions, format: plainText}
}

func (c *IssueClient) issueURI(key string, sub ...string) *url.URL {
	return resource(c.base, append([]string{"issue", key}, sub...)...)
}

// GetIssue fetches an issue. expand names extra data to include, such as
// "changelog" or "renderedFields".
func (c *IssueClient) GetIssue(ctx context.Context, key string, expand ...string) *promise.Promise[Issue] {
	if err := checkKey(key); err != nil {
		return promise.Reject[Issue](err)
	}
	uri := c.issueURI(key)
	if len(expand) > 0 {
		uri = withQuery(uri, url.Values{"expand": {strings.Join(expand, ",")}})
	}
	return getAndParse(ctx, c.transport, uri, parseIssue)
}

// CreateIssue creates an issue. The input must hold project, issuetype and
// summary fields.
func (c *IssueClient) CreateIssue(ctx context.Context, in IssueInput) *promise.Promise[BasicIssue] {
	return postAndParse(ctx, c.transport, resource(c.base, "issue"), in, generateIssueCreate, parseBasicIssue)
}

// UpdateIssue sets the given fields of an issue.
func (c *IssueClient) UpdateIssue(ctx context.Context, key string, in IssueInput) *promise.Promise[struct{}] {
	if err := checkKey(key); err != nil {
		return promise.Reject[struct{}](err)
	}
	return put(ctx, c.transport, c.issueURI(key), in, generateIssueInput)
}

// DeleteIssue deletes an issue. Issues with subtasks can only be deleted
// together with them.
func (c *IssueClient) DeleteIssue(ctx context.Context, key string, deleteSubtasks bool) *promise.Promise[struct{}] {
	if err := checkKey(key); err != nil {
		return promise.Reject[struct{}](err)
	}
	uri := c.issueURI(key)
	if deleteSubtasks {
		uri = withQuery(uri, url.Values{"deleteSubtasks": {"true"}})
	}
	return del(ctx, c.transport, uri)
}

// GetTransitions lists the transitions available for an issue.
func (c *IssueClient) GetTransitions(ctx context.Context, key string) *promise.Promise[[]Transition] {
	if err := checkKey(key); err != nil {
		return promise.Reject[[]Transition](err)
	}
	return getAndParse(ctx, c.transport, c.issueURI(key, "transitions"),
		FieldArrayParser("transitions", parseTransition))
}

// Transition performs a workflow transition.
func (c *IssueClient) Transition(ctx context.Context, key string, in TransitionInput) *promise.Promise[struct{}] {
	if err := checkKey(key); err != nil {
		return promise.Reject[struct{}](err)
	}
	return post(ctx, c.transport, c.issueURI(key, "transitions"), in, transitionGenerator(c.format))
}

// AddComment adds a comment to an issue.
func (c *IssueClient) AddComment(ctx context.Context, key string, in CommentInput) *promise.Promise[Comment] {
	if err := checkKey(key); err != nil {
		return promise.Reject[Comment](err)
	}
	return postAndParse(ctx, c.transport, c.issueURI(key, "comment"), in, commentGenerator(c.format), parseComment)
}

// GetVotes fetches the votes on an issue.
func (c *IssueClient) GetVotes(ctx context.Context, key string) *promise.Promise[Votes] {
	if err := checkKey(key); err != nil {
		return promise.Reject[Votes](err)
	}
	return getAndParse(ctx, c.transport, c.issueURI(key, "votes"), parseVotes)
}

// Vote casts the current user's vote for an issue.
func (c *IssueClient) Vote(ctx context.Context, key string) *promise.Promise[struct{}] {
	if err := checkKey(key); err != nil {
		return promise.Reject[struct{}](err)
	}
	return postEmpty(ctx, c.transport, c.issueURI(key, "votes"), nil)
}

// Unvote withdraws the current user's vote.
func (c *IssueClient) Unvote(ctx context.Context, key string) *promise.Promise[struct{}] {
	if err := checkKey(key); err != nil {
		return promise.Reject[struct{}](err)
	}
	return del(ctx, c.transport, c.issueURI(key, "votes"))
}

// GetWatchers fetches the watchers of an issue.
func (c *IssueClient) GetWatchers(ctx context.Context, key string) *promise.Promise[Watchers] {
	if err := checkKey(key); err != nil {
		return promise.Reject[Watchers](err)
	}
	return getAndParse(ctx, c.transport, c.issueURI(key, "watchers"), parseWatchers)
}

// AddWatcher makes username watch an issue.
func (c *IssueClient) AddWatcher(ctx context.Context, key, username string) *promise.Promise[struct{}] {
	if err := checkKey(key); err != nil {
		return promise.Reject[struct{}](err)
	}
	if username == "" {
		return promise.Reject[struct{}](missing("username", "username is required"))
	}
	body, err := json.Marshal(username)
	if err != nil {
		return promise.Reject[struct{}](err)
	}
	return postEmpty(ctx, c.transport, c.issueURI(key, "watchers"), body)
}

// RemoveWatcher stops username watching an issue.
func (c *IssueClient) RemoveWatcher(ctx context.Context, key, username string) *promise.Promise[struct{}] {
	if err := checkKey(key); err != nil {
		return promise.Reject[struct{}](err)
	}
	if username == "" {
		return promise.Reject[struct{}](missing("username", "username is required"))
	}
	uri := withQuery(c.issueURI(key, "watchers"), url.Values{"username": {username}})
	return del(ctx, c.transport, uri)
}

// Watch makes the current user watch an issue.
func (c *IssueClient) Watch(ctx context.Context, key string) *promise.Promise[struct{}] {
	if err := checkKey(key); err != nil {
		return promise.Reject[struct{}](err)
	}
	return promise.Then(c.sessions.GetCurrentSession(ctx), func(s Session) (struct{}, error) {
		return c.AddWatcher(ctx, key, s.Username).Wait()
	})
}

// Unwatch stops the current user watching an issue.
func (c *IssueClient) Unwatch(ctx context.Context, key string) *promise.Promise[struct{}] {
	if err := checkKey(key); err != nil {
		return promise.Reject[struct{}](err)
	}
	return promise.Then(c.sessions.GetCurrentSession(ctx), func(s Session) (struct{}, error) {
		return c.RemoveWatcher(ctx, key, s.Username).Wait()
	})
}

// LinkIssue links two issues.
func (c *IssueClient) LinkIssue(ctx context.Context, in LinkIssuesInput) *promise.Promise[struct{}] {
	return post(ctx, c.transport, resource(c.base, "issueLink"), in, linkGenerator(c.format))
}
