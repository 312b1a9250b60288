package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/opt"
	"github.com/randalmurphal/jirarest/promise"
	"github.com/randalmurphal/jirarest/testutil"
)

func newTestClient(t *testing.T, srv *testutil.FakeServer, mutate ...func(*Config)) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.URL = srv.URL
	for _, m := range mutate {
		m(cfg)
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{URL: "https://jira.example.com", Auth: AuthConfig{Type: AuthBasic}})
	assert.ErrorIs(t, err, ErrConfigBasicAuth)
}

func TestClientAPIVersion(t *testing.T) {
	srv := testutil.NewFakeServer(t)

	assert.Equal(t, APIVersionV2, newTestClient(t, srv).APIVersionInUse())
	v3 := newTestClient(t, srv, func(c *Config) { c.APIVersion = APIVersionV3 })
	assert.Equal(t, APIVersionV3, v3.APIVersionInUse())
}

func TestClientContext(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	c := newTestClient(t, srv)

	ctx := ContextWithClient(context.Background(), c)
	assert.Same(t, c, ClientFromContext(ctx))
	assert.Nil(t, ClientFromContext(context.Background()))
}

func TestClientSendsCredentials(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/rest/api/2/serverInfo", http.StatusOK,
		`{"baseUrl":"http://jira","version":"9.4.0","versionNumbers":[9,4,0],"deploymentType":"Server","buildNumber":940000}`)

	c := newTestClient(t, srv, func(c *Config) {
		c.Auth = AuthConfig{Type: AuthBasic, Username: "admin", Password: "admin"}
		c.HTTP.UserAgent = "jirarest-test"
	})

	ctx := testutil.TestContext(t)

	info, err := c.Metadata().GetServerInfo(ctx).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "9.4.0", info.Version)
	assert.Equal(t, []int{9, 4, 0}, info.VersionNumbers)
	assert.Equal(t, DeploymentServer, info.DeploymentType)

	req := srv.LastRequest(t)
	assert.Equal(t, "Basic YWRtaW46YWRtaW4=", req.Header.Get("Authorization"))
	assert.Equal(t, "jirarest-test", req.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestGetComponentNotFound(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/rest/api/2/component/{id}", http.StatusNotFound,
		`{"errorMessages":["The component with id 10000 does not exist."],"errors":{}}`)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	_, err := c.Components().GetComponent(ctx, srv.URI(t, "/rest/api/2/component/10000")).Get(ctx)

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Len(t, apiErr.ErrorMessages, 1)
	assert.Contains(t, apiErr.ErrorMessages[0], "10000")
	assert.Equal(t, "/rest/api/2/component/10000", apiErr.Endpoint)
}

func TestCreateComponent(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.HandleFunc(http.MethodPost, "/rest/api/2/component", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"self":"%s/rest/api/2/component/10001","id":"10001","name":"my component","description":"a description","isAssigneeTypeValid":false}`, srv.URL)
	})
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	comp, err := c.Components().CreateComponent(ctx, "TST", ComponentInput{
		Name:        opt.Of("my component"),
		Description: opt.Of("a description"),
	}).Get(ctx)

	require.NoError(t, err)
	assert.Equal(t, "my component", comp.Name)
	assert.Equal(t, "a description", comp.Description)
	require.NotNil(t, comp.ID)
	assert.Equal(t, int64(10001), *comp.ID)
	assert.Nil(t, comp.Lead)
	assert.Nil(t, comp.AssigneeInfo)

	req := srv.LastRequest(t)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"project":"TST","name":"my component","description":"a description"}`, string(req.Body))
}

func TestComponentRemoveAndCount(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodDelete, "/rest/api/2/component/{id}", http.StatusNoContent, "")
	srv.Handle(http.MethodGet, "/rest/api/2/component/{id}/relatedIssueCounts", http.StatusOK,
		`{"self":"http://jira/rest/api/2/component/10000","issueCount":23}`)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	uri := srv.URI(t, "/rest/api/2/component/10000")
	count, err := c.Components().GetComponentRelatedIssuesCount(ctx, uri).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 23, count)

	target := srv.URI(t, "/rest/api/2/component/10001")
	_, err = c.Components().RemoveComponent(ctx, uri, target).Get(ctx)
	require.NoError(t, err)

	req := srv.LastRequest(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, target.String(), req.Query().Get("moveIssuesTo"))
}

func TestMalformedResponse(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/rest/api/2/component/{id}", http.StatusOK, `{"id":"10000","name":"c"}`)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	_, err := c.Components().GetComponent(ctx, srv.URI(t, "/rest/api/2/component/10000")).Get(ctx)

	assert.True(t, IsDecodeError(err))
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "self", de.Field)
}

func TestUnsupportedOperationsMakeNoRequest(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	_, err := c.Metadata().UpdateIssueTypeScheme(ctx, 1).Get(ctx)
	assert.True(t, IsUnsupported(err))
	_, err = c.Metadata().DeleteIssueTypeScheme(ctx, 1).Get(ctx)
	assert.True(t, IsUnsupported(err))
	_, err = c.Metadata().AssignSchemeToProject(ctx, 1, 10000).Get(ctx)
	assert.True(t, IsUnsupported(err))

	assert.Equal(t, 0, srv.RequestCount())
}

func TestLocalValidationMakesNoRequest(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	_, err := c.Issues().GetIssue(ctx, "not a key").Get(ctx)
	assert.ErrorIs(t, err, ErrIssueKeyInvalid)
	_, err = c.Issues().Watch(ctx, "tst-1").Get(ctx)
	assert.ErrorIs(t, err, ErrIssueKeyInvalid)
	_, err = c.Components().GetComponent(ctx, nil).Get(ctx)
	assert.ErrorIs(t, err, ErrURIRequired)
	_, err = c.Components().CreateComponent(ctx, "TST", ComponentInput{}).Get(ctx)
	assert.True(t, devhttp.IsValidationError(err))
	_, err = c.Users().GetUser(ctx, "").Get(ctx)
	assert.True(t, devhttp.IsValidationError(err))

	assert.Equal(t, 0, srv.RequestCount())
}

func TestConcurrentCallsShareTransport(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	var inFlight, peak atomic.Int32
	slow := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			_, _ = io.WriteString(w, body)
		}
	}
	srv.HandleFunc(http.MethodGet, "/rest/api/2/priority", slow(`[{"id":"1","name":"High"}]`))
	srv.HandleFunc(http.MethodGet, "/rest/api/2/project", slow(`[{"key":"TST","id":"10000","name":"Test"}]`))
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	priorities := c.Metadata().GetPriorities(ctx)
	projects := c.Projects().GetAllProjects(ctx)

	gotPriorities, err := priorities.Get(ctx)
	require.NoError(t, err)
	gotProjects, err := projects.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, "High", gotPriorities[0].Name)
	assert.Equal(t, "TST", gotProjects[0].Key)
	assert.Equal(t, 2, srv.RequestCount())
	assert.Equal(t, int32(2), peak.Load(), "requests should overlap")
}

func TestVersionRoundTrip(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.HandleFunc(http.MethodPost, "/rest/api/2/version", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body["self"] = srv.URL + "/rest/api/2/version/10100"
		body["id"] = "10100"
		body["projectId"] = 10000
		delete(body, "project")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	release := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	in := VersionInput{
		ProjectKey:  "TST",
		Name:        opt.Of("2.0"),
		Description: opt.Of("summer release"),
		ReleaseDate: opt.Of(release),
		Archived:    opt.Of(false),
		Released:    opt.Of(true),
	}
	v, err := c.Versions().CreateVersion(ctx, in).Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2.0", v.Name)
	assert.Equal(t, "summer release", v.Description)
	require.NotNil(t, v.ReleaseDate)
	assert.True(t, release.Equal(*v.ReleaseDate), "release date %v", v.ReleaseDate)
	assert.False(t, v.Archived)
	assert.True(t, v.Released)
	require.NotNil(t, v.ProjectID)
	assert.Equal(t, int64(10000), *v.ProjectID)
}

func TestVersionOperations(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	version := func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"self":"%s/rest/api/2/version/10","id":"10","name":"1.0"}`, srv.URL)
	}
	srv.HandleFunc(http.MethodPost, "/rest/api/2/version/{id}/move", version)
	srv.Handle(http.MethodGet, "/rest/api/2/version/{id}/relatedIssueCounts", http.StatusOK,
		`{"issuesFixedCount":3,"issuesAffectedCount":1}`)
	srv.Handle(http.MethodGet, "/rest/api/2/version/{id}/unresolvedIssueCount", http.StatusOK,
		`{"issuesUnresolvedCount":2}`)
	srv.Handle(http.MethodDelete, "/rest/api/2/version/{id}", http.StatusNoContent, "")
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)
	uri := srv.URI(t, "/rest/api/2/version/10")

	_, err := c.Versions().MoveVersion(ctx, uri, VersionFirst).Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"position":"First"}`, string(srv.LastRequest(t).Body))

	counts, err := c.Versions().GetVersionRelatedIssuesCount(ctx, uri).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.IssuesFixedCount)
	assert.Equal(t, 1, counts.IssuesAffectedCount)

	unresolved, err := c.Versions().GetNumUnresolvedIssues(ctx, uri).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, unresolved)

	fix := srv.URI(t, "/rest/api/2/version/11")
	_, err = c.Versions().RemoveVersion(ctx, uri, fix, nil).Get(ctx)
	require.NoError(t, err)
	q := srv.LastRequest(t).Query()
	assert.Equal(t, fix.String(), q.Get("moveFixIssuesTo"))
	assert.False(t, q.Has("moveAffectedIssuesTo"))
}

func TestGetRoles(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.HandleFunc(http.MethodGet, "/rest/api/2/project/TST/role", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"Users":"%[1]s/rest/api/2/project/TST/role/10002","Administrators":"%[1]s/rest/api/2/project/TST/role/10001"}`, srv.URL)
	})
	names := map[string]string{"10001": "Administrators", "10002": "Users"}
	srv.HandleFunc(http.MethodGet, "/rest/api/2/project/TST/role/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := testutil.Param(r, "id")
		fmt.Fprintf(w, `{"self":"%s%s","name":%q,"id":%s,"actors":[{"id":1,"displayName":"jira-users","type":"atlassian-group-role-actor","name":"jira-users"}]}`,
			srv.URL, r.URL.Path, names[id], id)
	})
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	roles, err := c.ProjectRoles().GetRoles(ctx, srv.URI(t, "/rest/api/2/project/TST")).Get(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "Administrators", roles[0].Name)
	assert.Equal(t, int64(10001), roles[0].ID)
	assert.Equal(t, "Users", roles[1].Name)
	require.Len(t, roles[1].Actors, 1)
	assert.Equal(t, "jira-users", roles[1].Actors[0].Name)
	assert.Equal(t, 3, srv.RequestCount())

	role, err := c.ProjectRoles().GetRoleByID(ctx, srv.URI(t, "/rest/api/2/project/TST"), 10002).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Users", role.Name)
}

func TestGetRolesFailsWhenOneRoleFails(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.HandleFunc(http.MethodGet, "/rest/api/2/project/TST/role", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"Users":"%s/rest/api/2/project/TST/role/10002"}`, srv.URL)
	})
	srv.Handle(http.MethodGet, "/rest/api/2/project/TST/role/{id}", http.StatusForbidden,
		`{"errorMessages":["You cannot view this role"],"errors":{}}`)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	_, err := c.ProjectRoles().GetRoles(ctx, srv.URI(t, "/rest/api/2/project/TST")).Get(ctx)
	assert.True(t, IsPermissionDenied(err))
}

func searchHandler(t *testing.T, srv *testutil.FakeServer, total int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StartAt    int `json:"startAt"`
			MaxResults int `json:"maxResults"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode search body: %v", err)
		}
		issues := []map[string]any{}
		for i := req.StartAt; i < total && i < req.StartAt+req.MaxResults; i++ {
			issues = append(issues, map[string]any{
				"self":   srv.URL + "/rest/api/2/issue/" + strconv.Itoa(i+1),
				"id":     strconv.Itoa(i + 1),
				"key":    "TST-" + strconv.Itoa(i+1),
				"fields": map[string]any{"summary": "issue " + strconv.Itoa(i+1)},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"startAt":    req.StartAt,
			"maxResults": req.MaxResults,
			"total":      total,
			"issues":     issues,
		})
	}
}

func TestSearchJQL(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.HandleFunc(http.MethodPost, "/rest/api/2/search", searchHandler(t, srv, 3))
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	res, err := c.Search().SearchJQL(ctx, "project = TST", SearchOptions{MaxResults: opt.Of(2)}).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "TST-1", res.Issues[0].Key)
	assert.Equal(t, "issue 2", res.Issues[1].Summary)

	assert.JSONEq(t, `{"jql":"project = TST","startAt":0,"maxResults":2}`, string(srv.LastRequest(t).Body))
}

func TestSearchAllPages(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.HandleFunc(http.MethodPost, "/rest/api/2/search", searchHandler(t, srv, 5))
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	it := c.Search().SearchAll("project = TST", 2, "summary")
	issues, err := it.All(ctx)
	require.NoError(t, err)

	require.Len(t, issues, 5)
	assert.Equal(t, "TST-5", issues[4].Key)
	assert.Equal(t, 5, it.Total())
	assert.Equal(t, 3, srv.RequestCount())
}

func TestSearchAllStopsOnError(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodPost, "/rest/api/2/search", http.StatusBadRequest,
		`{"errorMessages":["Error in the JQL Query"],"errors":{}}`)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	it := c.Search().SearchAll("project = ", 0)
	_, err := it.All(ctx)
	require.Error(t, err)
	assert.True(t, IsAPIError(err))
	assert.Equal(t, err, it.Err())
}

func TestIssueLifecycle(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.HandleFunc(http.MethodPost, "/rest/api/2/issue", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"self":"%s/rest/api/2/issue/10001","id":"10001","key":"TST-1"}`, srv.URL)
	})
	srv.Handle(http.MethodPut, "/rest/api/2/issue/{key}", http.StatusNoContent, "")
	srv.Handle(http.MethodGet, "/rest/api/2/issue/{key}/transitions", http.StatusOK,
		`{"transitions":[{"id":"5","name":"Start Progress","to":{"id":"3","name":"In Progress"}}]}`)
	srv.Handle(http.MethodPost, "/rest/api/2/issue/{key}/transitions", http.StatusNoContent, "")
	srv.Handle(http.MethodDelete, "/rest/api/2/issue/{key}", http.StatusNoContent, "")
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	created, err := c.Issues().CreateIssue(ctx, NewIssueInput("TST", 1, "Broken build")).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TST-1", created.Key)
	assert.Equal(t, int64(10001), created.ID)

	_, err = c.Issues().UpdateIssue(ctx, "TST-1", IssueInput{Fields: map[string]any{"summary": "Fixed build"}}).Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":{"summary":"Fixed build"}}`, string(srv.LastRequest(t).Body))

	transitions, err := c.Issues().GetTransitions(ctx, "TST-1").Get(ctx)
	require.NoError(t, err)
	require.Len(t, transitions, 1)
	assert.Equal(t, int64(5), transitions[0].ID)
	assert.Equal(t, "In Progress", transitions[0].To.Name)

	_, err = c.Issues().Transition(ctx, "TST-1", TransitionInput{ID: transitions[0].ID}).Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"transition":{"id":"5"}}`, string(srv.LastRequest(t).Body))

	_, err = c.Issues().DeleteIssue(ctx, "TST-1", true).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "true", srv.LastRequest(t).Query().Get("deleteSubtasks"))
}

func TestGetIssueExpand(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.HandleFunc(http.MethodGet, "/rest/api/2/issue/{key}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"self":"%s/rest/api/2/issue/10001","id":"10001","key":%q,"fields":{"summary":"s"}}`,
			srv.URL, testutil.Param(r, "key"))
	})
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	issue, err := c.Issues().GetIssue(ctx, "TST-1", "changelog", "renderedFields").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TST-1", issue.Key)
	assert.Equal(t, "changelog,renderedFields", srv.LastRequest(t).Query().Get("expand"))
}

func TestIssueByNumericID(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.HandleFunc(http.MethodGet, "/rest/api/2/issue/{key}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"self":"%s/rest/api/2/issue/10000","id":%q,"key":"TST-7","fields":{"summary":"s"}}`,
			srv.URL, testutil.Param(r, "key"))
	})
	srv.Handle(http.MethodPost, "/rest/api/2/issue/{key}/comment", http.StatusCreated,
		`{"self":"http://jira/rest/api/2/issue/10000/comment/1","id":"1","body":"hi"}`)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	issue, err := c.Issues().GetIssue(ctx, "10000").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TST-7", issue.Key)
	assert.Equal(t, "/rest/api/2/issue/10000", srv.LastRequest(t).Path)

	_, err = c.Issues().AddComment(ctx, "10000", CommentInput{Body: "hi"}).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/rest/api/2/issue/10000/comment", srv.LastRequest(t).Path)
}

func TestWatchUsesCurrentSession(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.HandleFunc(http.MethodGet, "/rest/auth/latest/session", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"self":"%s/rest/api/2/user?username=fred","name":"fred","loginInfo":{"loginCount":4}}`, srv.URL)
	})
	srv.Handle(http.MethodPost, "/rest/api/2/issue/{key}/watchers", http.StatusNoContent, "")
	srv.Handle(http.MethodDelete, "/rest/api/2/issue/{key}/watchers", http.StatusNoContent, "")
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	_, err := c.Issues().Watch(ctx, "TST-1").Get(ctx)
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/rest/auth/latest/session", reqs[0].Path)
	assert.Equal(t, "/rest/api/2/issue/TST-1/watchers", reqs[1].Path)
	assert.Equal(t, `"fred"`, string(reqs[1].Body))

	_, err = c.Issues().Unwatch(ctx, "TST-1").Get(ctx)
	require.NoError(t, err)
	last := srv.LastRequest(t)
	assert.Equal(t, http.MethodDelete, last.Method)
	assert.Equal(t, "fred", last.Query().Get("username"))
}

func TestWatchFailsWithoutSession(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/rest/auth/latest/session", http.StatusUnauthorized, "")
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	_, err := c.Issues().Watch(ctx, "TST-1").Get(ctx)
	assert.True(t, IsPermissionDenied(err))
	assert.Equal(t, 1, srv.RequestCount())
}

func TestVotesAndWatchers(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/rest/api/2/issue/{key}/votes", http.StatusOK,
		`{"votes":1,"hasVoted":true,"voters":[{"name":"fred"}]}`)
	srv.Handle(http.MethodPost, "/rest/api/2/issue/{key}/votes", http.StatusNoContent, "")
	srv.Handle(http.MethodGet, "/rest/api/2/issue/{key}/watchers", http.StatusOK,
		`{"watchCount":2,"isWatching":false,"watchers":[{"name":"fred"},{"accountId":"abc"}]}`)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	votes, err := c.Issues().GetVotes(ctx, "TST-1").Get(ctx)
	require.NoError(t, err)
	assert.True(t, votes.HasVoted)
	require.Len(t, votes.Voters, 1)

	_, err = c.Issues().Vote(ctx, "TST-1").Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, srv.LastRequest(t).Body)

	watchers, err := c.Issues().GetWatchers(ctx, "TST-1").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, watchers.WatchCount)
	assert.Equal(t, "abc", watchers.Users[1].ID())
}

func TestAddCommentV3SendsADF(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodPost, "/rest/api/3/issue/{key}/comment", http.StatusCreated,
		`{"id":"9","body":{"version":1,"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}}`)
	c := newTestClient(t, srv, func(c *Config) { c.APIVersion = APIVersionV3 })
	ctx := testutil.TestContext(t)

	comment, err := c.Issues().AddComment(ctx, "TST-1", CommentInput{Body: "hello"}).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", comment.Body)
	assert.JSONEq(t,
		`{"body":{"version":1,"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}}`,
		string(srv.LastRequest(t).Body))
}

func TestLinkIssue(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodPost, "/rest/api/2/issueLink", http.StatusCreated, "")
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	_, err := c.Issues().LinkIssue(ctx, LinkIssuesInput{LinkType: "Duplicate", FromIssueKey: "TST-1", ToIssueKey: "TST-2"}).Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":{"name":"Duplicate"},"inwardIssue":{"key":"TST-1"},"outwardIssue":{"key":"TST-2"}}`,
		string(srv.LastRequest(t).Body))
}

func TestMetadataLists(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/rest/api/2/issueLinkType", http.StatusOK,
		`{"issueLinkTypes":[{"id":"1000","name":"Duplicate","inward":"is duplicated by","outward":"duplicates"}]}`)
	srv.Handle(http.MethodGet, "/rest/api/2/issuetypescheme", http.StatusOK,
		`{"schemes":[{"id":"10000","name":"Default","issueTypes":[{"id":"1","name":"Bug"}]}]}`)
	srv.Handle(http.MethodGet, "/rest/api/2/issuetypescheme/{id}/associations", http.StatusOK,
		`[{"self":"http://jira/rest/api/2/project/TST","key":"TST","id":"10000","name":"Test"}]`)
	srv.Handle(http.MethodGet, "/rest/api/2/field", http.StatusOK,
		`[{"id":"customfield_10010","name":"Story Points","custom":true,"schema":{"type":"number","custom":"com.atlassian.jira.plugin.system.customfieldtypes:float","customId":10010}}]`)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	links, err := c.Metadata().GetIssueLinkTypes(ctx).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "duplicates", links[0].Outward)

	schemes, err := c.Metadata().GetAllIssueTypeSchemes(ctx).Get(ctx)
	require.NoError(t, err)
	require.Len(t, schemes, 1)
	assert.Equal(t, int64(10000), schemes[0].ID)
	assert.Equal(t, "Bug", schemes[0].IssueTypes[0].Name)

	projects, err := c.Metadata().GetProjectsAssociatedWithIssueTypeScheme(ctx, 10000).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TST", projects[0].Key)

	fields, err := c.Metadata().GetFields(ctx).Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, fields[0].Schema)
	assert.Equal(t, int64(10010), *fields[0].Schema.CustomID)
}

func TestAuditRecords(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/rest/api/2/auditing/record", http.StatusOK,
		`{"offset":0,"limit":1,"total":12,"records":[{"id":42,"summary":"User created","created":"2025-01-15T10:30:00.000+0000","category":"user management","objectItem":{"name":"fred","typeName":"USER"},"changedValues":[{"fieldName":"Email","changedTo":"fred@example.com"}]}]}`)
	srv.Handle(http.MethodPost, "/rest/api/2/auditing/record", http.StatusCreated, "")
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	data, err := c.Audit().GetAuditRecords(ctx, AuditRecordSearchInput{Limit: opt.Of(1), Filter: "fred"}).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, data.Total)
	require.Len(t, data.Records, 1)
	assert.Equal(t, "fred", data.Records[0].ObjectItem.Name)
	assert.Equal(t, "1", srv.LastRequest(t).Query().Get("limit"))

	_, err = c.Audit().AddAuditRecord(ctx, AuditRecordInput{Category: "user management", Summary: "User deleted"}).Get(ctx)
	require.NoError(t, err)
}

func TestUserLookups(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/rest/api/2/user", http.StatusOK,
		`{"name":"fred","displayName":"Fred","active":true,"groups":{"size":1,"items":[{"name":"jira-users"}]}}`)
	srv.Handle(http.MethodGet, "/rest/api/2/user/search", http.StatusOK,
		`[{"name":"fred"},{"name":"freda"}]`)
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	u, err := c.Users().GetUser(ctx, "fred").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"jira-users"}, u.Groups)
	q := srv.LastRequest(t).Query()
	assert.Equal(t, "fred", q.Get("username"))
	assert.Equal(t, "groups", q.Get("expand"))

	users, err := c.Users().FindUsers(ctx, "fre", 10).Get(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "10", srv.LastRequest(t).Query().Get("maxResults"))
}

func TestTransportFailure(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	c := newTestClient(t, srv)
	srv.Close()
	ctx := testutil.TestContext(t)

	_, err := c.Projects().GetProject(ctx, "TST").Get(ctx)
	require.Error(t, err)
	assert.True(t, devhttp.IsTransportError(err))
	assert.False(t, IsAPIError(err))
}

func TestRefusedTokenIsNotTransportFailure(t *testing.T) {
	tokens := testutil.NewFakeServer(t)
	tokens.Handle(http.MethodPost, "/oauth/token", http.StatusUnauthorized, `{"error":"invalid_client"}`)
	srv := testutil.NewFakeServer(t)
	c := newTestClient(t, srv, func(cfg *Config) {
		cfg.Auth = AuthConfig{
			Type:         AuthOAuth2,
			ClientID:     "app",
			ClientSecret: "wrong",
			TokenURL:     tokens.URL + "/oauth/token",
		}
	})
	ctx := testutil.TestContext(t)

	_, err := c.Projects().GetProject(ctx, "TST").Get(ctx)
	require.Error(t, err)
	assert.True(t, devhttp.IsAuthenticateError(err))
	assert.False(t, devhttp.IsTransportError(err))
	assert.Equal(t, 0, srv.RequestCount())
}

func TestPendingPromisesSurviveClose(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	release := make(chan struct{})
	srv.HandleFunc(http.MethodGet, "/rest/api/2/resolution", func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = io.WriteString(w, `[{"id":"1","name":"Fixed"}]`)
	})
	c := newTestClient(t, srv)
	ctx := testutil.TestContext(t)

	pending := c.Metadata().GetResolutions(ctx)
	require.NoError(t, c.Close())
	close(release)

	got, err := promise.All(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, "Fixed", got[0][0].Name)
}
