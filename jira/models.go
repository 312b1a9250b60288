package jira

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeploymentType represents the type of Jira deployment.
type DeploymentType string

// Deployment types for Jira instances.
const (
	DeploymentCloud      DeploymentType = "Cloud"
	DeploymentServer     DeploymentType = "Server"
	DeploymentDataCenter DeploymentType = "DataCenter"
)

// TimeFormat is the standard Jira timestamp format.
const TimeFormat = "2006-01-02T15:04:05.000-0700"

// DateFormat is the format of date-only fields such as release dates.
const DateFormat = "2006-01-02"

// APIVersion represents the Jira REST API version.
type APIVersion string

// API versions supported by the Jira REST API.
const (
	APIVersionV2 APIVersion = "v2"
	APIVersionV3 APIVersion = "v3"
)

// ServerInfo represents the response from /serverInfo.
type ServerInfo struct {
	BaseURI        *url.URL
	Version        string
	VersionNumbers []int
	DeploymentType DeploymentType
	BuildNumber    int
	BuildDate      *time.Time
	ServerTime     *time.Time
	ScmInfo        string
	ServerTitle    string
}

// BasicUser is the user reference embedded in other resources.
type BasicUser struct {
	Self        *url.URL
	Name        string // Server username
	AccountID   string // Cloud
	DisplayName string
}

// ID returns the user identifier (accountId for Cloud, name for Server).
func (u BasicUser) ID() string {
	if u.AccountID != "" {
		return u.AccountID
	}
	return u.Name
}

// User is a full user resource.
type User struct {
	BasicUser
	Key          string
	EmailAddress string
	Active       bool
	TimeZone     string
	AvatarURLs   map[string]string
	Groups       []string
}

// BasicProject is the project reference embedded in other resources.
type BasicProject struct {
	Self *url.URL
	Key  string
	ID   *int64
	Name string
}

// Project is a full project resource.
type Project struct {
	BasicProject
	Description string
	Lead        *BasicUser
	URI         *url.URL
	IssueTypes  []IssueType
	Components  []BasicComponent
	Versions    []Version

	// Roles maps role names to role URIs.
	Roles map[string]*url.URL
}

// AssigneeType selects who is assigned new issues of a component.
type AssigneeType string

// Assignee types.
const (
	AssigneeProjectDefault AssigneeType = "PROJECT_DEFAULT"
	AssigneeComponentLead  AssigneeType = "COMPONENT_LEAD"
	AssigneeProjectLead    AssigneeType = "PROJECT_LEAD"
	AssigneeUnassigned     AssigneeType = "UNASSIGNED"
)

// DisplayName returns a human readable name, e.g. "Component Lead".
func (a AssigneeType) DisplayName() string {
	words := strings.ReplaceAll(strings.ToLower(string(a)), "_", " ")
	return cases.Title(language.English).String(words)
}

// BasicComponent is the component reference embedded in projects and issues.
type BasicComponent struct {
	Self        *url.URL
	ID          *int64
	Name        string
	Description string
}

// Component is a full component resource.
type Component struct {
	BasicComponent
	Lead         *BasicUser
	AssigneeInfo *AssigneeInfo
}

// AssigneeInfo describes the configured and effective default assignee of a
// component. The two differ when the configured assignee is not valid.
type AssigneeInfo struct {
	Assignee          *BasicUser
	AssigneeType      AssigneeType
	RealAssignee      *BasicUser
	RealAssigneeType  AssigneeType
	AssigneeTypeValid bool
}

// IssueType represents an issue type in Jira.
type IssueType struct {
	Self        *url.URL
	ID          *int64
	Name        string
	Description string
	Subtask     bool
	IconURI     *url.URL
}

// Priority represents an issue priority.
type Priority struct {
	Self        *url.URL
	ID          *int64
	Name        string
	Description string
	StatusColor string
	IconURI     *url.URL
}

// Status represents an issue status.
type Status struct {
	Self           *url.URL
	ID             *int64
	Name           string
	Description    string
	IconURL        *url.URL
	StatusCategory *StatusCategory
}

// StatusCategory represents a status category.
type StatusCategory struct {
	Self      *url.URL
	ID        int64
	Key       string // "new", "indeterminate", "done"
	Name      string
	ColorName string
}

// Resolution represents an issue resolution.
type Resolution struct {
	Self        *url.URL
	ID          *int64
	Name        string
	Description string
}

// Field describes a system or custom issue field.
type Field struct {
	ID         string
	Name       string
	Custom     bool
	Orderable  bool
	Navigable  bool
	Searchable bool
	Schema     *FieldSchema
}

// FieldSchema is the JSON type information of a field.
type FieldSchema struct {
	Type     string
	Items    string
	System   string
	Custom   string
	CustomID *int64
}

// IssueLinkType is a kind of link between two issues.
type IssueLinkType struct {
	Self    *url.URL
	ID      *int64
	Name    string
	Inward  string
	Outward string
}

// IssueTypeScheme groups the issue types available to a set of projects.
type IssueTypeScheme struct {
	Self             *url.URL
	ID               int64
	Name             string
	Description      string
	DefaultIssueType *IssueType
	IssueTypes       []IssueType
}

// Version represents a project version.
type Version struct {
	Self        *url.URL
	ID          *int64
	Name        string
	Description string
	Archived    bool
	Released    bool
	ReleaseDate *time.Time
	ProjectID   *int64
}

// VersionRelatedIssuesCount holds the number of issues referencing a version.
type VersionRelatedIssuesCount struct {
	Self                *url.URL
	IssuesFixedCount    int
	IssuesAffectedCount int
}

// BasicIssue identifies an issue; it is what issue creation returns.
type BasicIssue struct {
	Self *url.URL
	Key  string
	ID   int64
}

// Issue represents a Jira issue.
type Issue struct {
	BasicIssue

	Summary string

	// Description is plain text; ADF descriptions are flattened. The
	// original value stays in Fields.
	Description string

	Project          *BasicProject
	IssueType        *IssueType
	Status           *Status
	Priority         *Priority
	Resolution       *Resolution
	Reporter         *BasicUser
	Assignee         *BasicUser
	Created          *time.Time
	Updated          *time.Time
	DueDate          *time.Time
	Labels           []string
	Components       []BasicComponent
	FixVersions      []Version
	AffectedVersions []Version
	Comments         []Comment
	Votes            *BasicVotes
	Watchers         *BasicWatchers

	// Changelog is only present when requested with expand "changelog".
	Changelog []ChangelogGroup

	// Fields holds every field of the issue as returned by the server,
	// including custom fields.
	Fields map[string]json.RawMessage
}

// FieldChanges returns the changelog items touching field, oldest first.
func (i *Issue) FieldChanges(field string) []ChangelogItem {
	var items []ChangelogItem
	for _, group := range i.Changelog {
		for _, item := range group.Items {
			if strings.EqualFold(item.Field, field) {
				items = append(items, item)
			}
		}
	}
	return items
}

// ChangelogGroup is a set of field changes made together.
type ChangelogGroup struct {
	ID      int64
	Author  *BasicUser
	Created time.Time
	Items   []ChangelogItem
}

// ChangelogItem is a single field change.
type ChangelogItem struct {
	Field      string
	FieldType  string
	FieldID    string
	From       string
	FromString string
	To         string
	ToString   string
}

// Comment is a comment on an issue.
type Comment struct {
	Self         *url.URL
	ID           int64
	Body         string
	Author       *BasicUser
	UpdateAuthor *BasicUser
	Created      *time.Time
	Updated      *time.Time
	Visibility   *Visibility
}

// VisibilityType restricts who can see a comment.
type VisibilityType string

// Visibility types.
const (
	VisibilityGroup VisibilityType = "group"
	VisibilityRole  VisibilityType = "role"
)

// Visibility restricts a comment to a group or project role.
type Visibility struct {
	Type  VisibilityType `json:"type"`
	Value string         `json:"value"`
}

// Transition is a workflow transition available for an issue.
type Transition struct {
	ID   int64
	Name string
	To   *Status
}

// SearchResult is one page of a JQL search.
type SearchResult struct {
	StartAt    int
	MaxResults int
	Total      int
	Issues     []Issue
}

// Session describes the authenticated user's session.
type Session struct {
	UserURI   *url.URL
	Username  string
	LoginInfo *LoginInfo
}

// LoginInfo holds login statistics of a session.
type LoginInfo struct {
	FailedLoginCount    int
	LoginCount          int
	LastFailedLoginTime *time.Time
	PreviousLoginTime   *time.Time
}

// BasicProjectRole names a project role.
type BasicProjectRole struct {
	Self *url.URL
	Name string
}

// ProjectRole is a project role with its members.
type ProjectRole struct {
	BasicProjectRole
	ID          int64
	Description string
	Actors      []RoleActor
}

// RoleActor is a user or group belonging to a project role.
type RoleActor struct {
	ID          *int64
	DisplayName string
	Type        string
	Name        string
	AvatarURL   *url.URL
}

// BasicVotes is the vote summary embedded in issues.
type BasicVotes struct {
	Self     *url.URL
	Votes    int
	HasVoted bool
}

// Votes is the vote resource of an issue, with voters.
type Votes struct {
	BasicVotes
	Voters []BasicUser
}

// BasicWatchers is the watcher summary embedded in issues.
type BasicWatchers struct {
	Self       *url.URL
	WatchCount int
	IsWatching bool
}

// Watchers is the watcher resource of an issue, with users.
type Watchers struct {
	BasicWatchers
	Users []BasicUser
}

// AuditRecord is an entry of the audit log.
type AuditRecord struct {
	ID              int64
	Summary         string
	RemoteAddress   string
	AuthorKey       string
	Created         time.Time
	Category        string
	EventSource     string
	Description     string
	ObjectItem      *AuditAssociatedItem
	AssociatedItems []AuditAssociatedItem
	ChangedValues   []AuditChangedValue
}

// AuditAssociatedItem is an object an audit record refers to.
type AuditAssociatedItem struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	TypeName   string `json:"typeName"`
	ParentID   string `json:"parentId,omitempty"`
	ParentName string `json:"parentName,omitempty"`
}

// AuditChangedValue is a field change recorded in the audit log.
type AuditChangedValue struct {
	FieldName   string `json:"fieldName"`
	ChangedFrom string `json:"changedFrom,omitempty"`
	ChangedTo   string `json:"changedTo,omitempty"`
}

// AuditRecordsData is one page of audit records.
type AuditRecordsData struct {
	Offset  int
	Limit   int
	Total   int
	Records []AuditRecord
}

// issueKeyRegex validates Jira issue keys (e.g., PROJ-123).
var issueKeyRegex = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-\d+$`)

// ValidateIssueKey validates a Jira issue key format.
func ValidateIssueKey(key string) bool {
	return issueKeyRegex.MatchString(key)
}

var issueIDRegex = regexp.MustCompile(`^\d+$`)

// ValidateIssueIDOrKey accepts an issue key or a numeric issue id; Jira's
// issue resources take either.
func ValidateIssueIDOrKey(s string) bool {
	return issueIDRegex.MatchString(s) || issueKeyRegex.MatchString(s)
}

// ParseTime parses a Jira timestamp string.
// Jira uses ISO 8601 format with timezone offset; date-only fields use
// DateFormat.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	// Jira format: "2025-01-15T10:30:00.000+0000"
	formats := []string{
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05Z",
		time.RFC3339,
		DateFormat,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{Value: s, Message: ": not a jira timestamp"}
}

// FormatTime formats a time.Time as a Jira timestamp string.
func FormatTime(t time.Time) string {
	return t.Format(TimeFormat)
}
