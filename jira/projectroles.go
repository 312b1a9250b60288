package jira

import (
	"context"
	"net/url"
	"sort"
	"strconv"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/promise"
)

// ProjectRolesClient reads the roles of a project and their actors.
type ProjectRolesClient struct {
	base      *url.URL
	transport *devhttp.Client
}

// NewProjectRolesClient returns a ProjectRolesClient for the API at base.
func NewProjectRolesClient(base *url.URL, transport *devhttp.Client) *ProjectRolesClient {
	return &ProjectRolesClient{base: base, transport: transport}
}

// GetRole fetches the project role at uri.
func (c *ProjectRolesClient) GetRole(ctx context.Context, uri *url.URL) *promise.Promise[ProjectRole] {
	if err := checkURI(uri); err != nil {
		return promise.Reject[ProjectRole](err)
	}
	return getAndParse(ctx, c.transport, uri, parseProjectRole)
}

// GetRoleByID fetches a role of the project at projectURI.
func (c *ProjectRolesClient) GetRoleByID(ctx context.Context, projectURI *url.URL, roleID int64) *promise.Promise[ProjectRole] {
	if err := checkURI(projectURI); err != nil {
		return promise.Reject[ProjectRole](err)
	}
	return c.GetRole(ctx, resource(projectURI, "role", strconv.FormatInt(roleID, 10)))
}

// GetRoles fetches every role of the project at projectURI, sorted by name.
// The roles are requested concurrently; the first failure fails the result.
func (c *ProjectRolesClient) GetRoles(ctx context.Context, projectURI *url.URL) *promise.Promise[[]ProjectRole] {
	if err := checkURI(projectURI); err != nil {
		return promise.Reject[[]ProjectRole](err)
	}
	refs := getAndParse(ctx, c.transport, resource(projectURI, "role"), parseRoleURIs)
	return promise.Then(refs, func(refs []BasicProjectRole) ([]ProjectRole, error) {
		pending := make([]*promise.Promise[ProjectRole], 0, len(refs))
		for _, ref := range refs {
			pending = append(pending, c.GetRole(ctx, ref.Self))
		}
		roles, err := promise.All(ctx, pending...)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
		return roles, nil
	})
}
