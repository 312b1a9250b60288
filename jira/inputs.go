package jira

import (
	"net/url"
	"strconv"
	"time"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/opt"
)

// Generator turns an input value into a JSON-encodable request body.
// Generators fail with *http.ValidationError when a required field is
// missing.
type Generator[I any] func(in I) (any, error)

func missing(field, msg string) error {
	return &devhttp.ValidationError{Service: "jira", Field: field, Message: msg}
}

// ComponentInput describes a component to create or update. Unset fields
// are left out of the request; null fields clear the server value.
type ComponentInput struct {
	Name         opt.Field[string]
	Description  opt.Field[string]
	LeadUsername opt.Field[string]
	AssigneeType opt.Field[AssigneeType]
}

type componentBody struct {
	Project      string                  `json:"project,omitempty"`
	Name         opt.Field[string]       `json:"name,omitzero"`
	Description  opt.Field[string]       `json:"description,omitzero"`
	LeadUsername opt.Field[string]       `json:"leadUserName,omitzero"`
	AssigneeType opt.Field[AssigneeType] `json:"assigneeType,omitzero"`
}

func newComponentBody(projectKey string, in ComponentInput) componentBody {
	return componentBody{
		Project:      projectKey,
		Name:         in.Name,
		Description:  in.Description,
		LeadUsername: in.LeadUsername,
		AssigneeType: in.AssigneeType,
	}
}

func generateComponentInput(in ComponentInput) (any, error) {
	return newComponentBody("", in), nil
}

// generateComponentCreate adds the owning project to the body.
func generateComponentCreate(projectKey string) Generator[ComponentInput] {
	return func(in ComponentInput) (any, error) {
		if projectKey == "" {
			return nil, missing("project", "project key is required")
		}
		if name, ok := in.Name.Get(); !ok || name == "" {
			return nil, missing("name", "component name is required")
		}
		return newComponentBody(projectKey, in), nil
	}
}

// VersionInput describes a version to create or update.
type VersionInput struct {
	ProjectKey  string
	Name        opt.Field[string]
	Description opt.Field[string]
	ReleaseDate opt.Field[time.Time]
	Archived    opt.Field[bool]
	Released    opt.Field[bool]
}

type versionBody struct {
	Project     string            `json:"project,omitempty"`
	Name        opt.Field[string] `json:"name,omitzero"`
	Description opt.Field[string] `json:"description,omitzero"`
	ReleaseDate opt.Field[string] `json:"releaseDate,omitzero"`
	Archived    opt.Field[bool]   `json:"archived,omitzero"`
	Released    opt.Field[bool]   `json:"released,omitzero"`
}

func generateVersionInput(in VersionInput) (any, error) {
	b := versionBody{
		Project:     in.ProjectKey,
		Name:        in.Name,
		Description: in.Description,
		Archived:    in.Archived,
		Released:    in.Released,
	}
	switch {
	case in.ReleaseDate.IsNull():
		b.ReleaseDate = opt.Null[string]()
	case in.ReleaseDate.IsSet():
		d, _ := in.ReleaseDate.Get()
		b.ReleaseDate = opt.Of(d.Format(DateFormat))
	}
	return b, nil
}

func generateVersionCreate(in VersionInput) (any, error) {
	if in.ProjectKey == "" {
		return nil, missing("project", "project key is required")
	}
	if name, ok := in.Name.Get(); !ok || name == "" {
		return nil, missing("name", "version name is required")
	}
	return generateVersionInput(in)
}

// VersionPosition moves a version relative to the others of its project.
type VersionPosition string

// Version positions.
const (
	VersionFirst   VersionPosition = "First"
	VersionLast    VersionPosition = "Last"
	VersionEarlier VersionPosition = "Earlier"
	VersionLater   VersionPosition = "Later"
)

func generateVersionPosition(pos VersionPosition) (any, error) {
	switch pos {
	case VersionFirst, VersionLast, VersionEarlier, VersionLater:
		return map[string]string{"position": string(pos)}, nil
	default:
		return nil, missing("position", "must be First, Last, Earlier or Later")
	}
}

func generateVersionAfter(after *url.URL) (any, error) {
	if after == nil {
		return nil, missing("after", "version uri is required")
	}
	return map[string]string{"after": after.String()}, nil
}

// CommentInput is the body of a new comment.
type CommentInput struct {
	Body string

	// Visibility restricts the comment. Null makes it public.
	Visibility opt.Field[Visibility]
}

type commentBody struct {
	Body       any                   `json:"body"`
	Visibility opt.Field[Visibility] `json:"visibility,omitzero"`
}

// commentGenerator renders the comment body with format, which differs
// between API v2 (string) and v3 (ADF).
func commentGenerator(format textFormat) Generator[CommentInput] {
	return func(in CommentInput) (any, error) {
		if in.Body == "" {
			return nil, missing("body", "comment body is required")
		}
		return commentBody{Body: format(in.Body), Visibility: in.Visibility}, nil
	}
}

// IssueInput holds the fields of an issue to create or update, keyed by
// field id (e.g. "summary", "customfield_10010").
type IssueInput struct {
	Fields map[string]any

	// Update holds field operations, e.g. {"labels": [{"add": "x"}]}.
	Update map[string]any
}

// NewIssueInput returns an input for a new issue with the required fields.
func NewIssueInput(projectKey string, issueTypeID int64, summary string) IssueInput {
	return IssueInput{Fields: map[string]any{
		"project":   map[string]string{"key": projectKey},
		"issuetype": map[string]string{"id": strconv.FormatInt(issueTypeID, 10)},
		"summary":   summary,
	}}
}

type issueBody struct {
	Fields map[string]any `json:"fields,omitempty"`
	Update map[string]any `json:"update,omitempty"`
}

func generateIssueInput(in IssueInput) (any, error) {
	if len(in.Fields) == 0 && len(in.Update) == 0 {
		return nil, missing("fields", "at least one field is required")
	}
	return issueBody(in), nil
}

func generateIssueCreate(in IssueInput) (any, error) {
	for _, field := range []string{"project", "issuetype", "summary"} {
		if v, ok := in.Fields[field]; !ok || v == nil {
			return nil, missing(field, "required to create an issue")
		}
	}
	return issueBody(in), nil
}

// TransitionInput moves an issue through its workflow.
type TransitionInput struct {
	ID      int64
	Fields  map[string]any
	Comment *CommentInput
}

type transitionBody struct {
	Transition struct {
		ID string `json:"id"`
	} `json:"transition"`
	Fields map[string]any `json:"fields,omitempty"`
	Update map[string]any `json:"update,omitempty"`
}

func transitionGenerator(format textFormat) Generator[TransitionInput] {
	return func(in TransitionInput) (any, error) {
		if in.ID <= 0 {
			return nil, missing("transition.id", "transition id is required")
		}
		var b transitionBody
		b.Transition.ID = strconv.FormatInt(in.ID, 10)
		b.Fields = in.Fields
		if in.Comment != nil {
			comment, err := commentGenerator(format)(*in.Comment)
			if err != nil {
				return nil, err
			}
			b.Update = map[string]any{
				"comment": []any{map[string]any{"add": comment}},
			}
		}
		return b, nil
	}
}

// LinkIssuesInput links two issues.
type LinkIssuesInput struct {
	LinkType     string
	FromIssueKey string
	ToIssueKey   string
	Comment      *CommentInput
}

type issueRef struct {
	Key string `json:"key"`
}

type linkBody struct {
	Type struct {
		Name string `json:"name"`
	} `json:"type"`
	InwardIssue  issueRef `json:"inwardIssue"`
	OutwardIssue issueRef `json:"outwardIssue"`
	Comment      any      `json:"comment,omitempty"`
}

func linkGenerator(format textFormat) Generator[LinkIssuesInput] {
	return func(in LinkIssuesInput) (any, error) {
		return generateLink(in, format)
	}
}

func generateLink(in LinkIssuesInput, format textFormat) (any, error) {
	if in.LinkType == "" {
		return nil, missing("type", "link type is required")
	}
	if !ValidateIssueKey(in.FromIssueKey) {
		return nil, missing("inwardIssue", "invalid issue key "+strconv.Quote(in.FromIssueKey))
	}
	if !ValidateIssueKey(in.ToIssueKey) {
		return nil, missing("outwardIssue", "invalid issue key "+strconv.Quote(in.ToIssueKey))
	}
	var b linkBody
	b.Type.Name = in.LinkType
	b.InwardIssue.Key = in.FromIssueKey
	b.OutwardIssue.Key = in.ToIssueKey
	if in.Comment != nil {
		comment, err := commentGenerator(format)(*in.Comment)
		if err != nil {
			return nil, err
		}
		b.Comment = comment
	}
	return b, nil
}

// IssueTypeSchemeInput describes an issue type scheme to create.
type IssueTypeSchemeInput struct {
	Name               string
	Description        opt.Field[string]
	IssueTypeIDs       []int64
	DefaultIssueTypeID opt.Field[int64]
}

type issueTypeSchemeBody struct {
	Name               string            `json:"name"`
	Description        opt.Field[string] `json:"description,omitzero"`
	IssueTypeIDs       []string          `json:"issueTypeIds"`
	DefaultIssueTypeID opt.Field[string] `json:"defaultIssueTypeId,omitzero"`
}

func generateIssueTypeSchemeInput(in IssueTypeSchemeInput) (any, error) {
	if in.Name == "" {
		return nil, missing("name", "scheme name is required")
	}
	if len(in.IssueTypeIDs) == 0 {
		return nil, missing("issueTypeIds", "at least one issue type is required")
	}
	b := issueTypeSchemeBody{
		Name:         in.Name,
		Description:  in.Description,
		IssueTypeIDs: make([]string, 0, len(in.IssueTypeIDs)),
	}
	for _, id := range in.IssueTypeIDs {
		b.IssueTypeIDs = append(b.IssueTypeIDs, strconv.FormatInt(id, 10))
	}
	switch {
	case in.DefaultIssueTypeID.IsNull():
		b.DefaultIssueTypeID = opt.Null[string]()
	case in.DefaultIssueTypeID.IsSet():
		id, _ := in.DefaultIssueTypeID.Get()
		b.DefaultIssueTypeID = opt.Of(strconv.FormatInt(id, 10))
	}
	return b, nil
}

// SearchOptions controls a JQL search.
type SearchOptions struct {
	StartAt    int
	MaxResults opt.Field[int]
	Fields     []string
	Expand     []string
}

type searchBody struct {
	JQL        string         `json:"jql"`
	StartAt    int            `json:"startAt"`
	MaxResults opt.Field[int] `json:"maxResults,omitzero"`
	Fields     []string       `json:"fields,omitempty"`
	Expand     []string       `json:"expand,omitempty"`
}

func generateSearch(jql string) Generator[SearchOptions] {
	return func(in SearchOptions) (any, error) {
		if in.StartAt < 0 {
			return nil, missing("startAt", "must not be negative")
		}
		return searchBody{
			JQL:        jql,
			StartAt:    in.StartAt,
			MaxResults: in.MaxResults,
			Fields:     in.Fields,
			Expand:     in.Expand,
		}, nil
	}
}

// AuditRecordInput is a record to add to the audit log.
type AuditRecordInput struct {
	Category        string
	Summary         string
	ObjectItem      *AuditAssociatedItem
	AssociatedItems []AuditAssociatedItem
	ChangedValues   []AuditChangedValue
}

type auditRecordBody struct {
	Category        string                `json:"category"`
	Summary         string                `json:"summary"`
	ObjectItem      *AuditAssociatedItem  `json:"objectItem,omitempty"`
	AssociatedItems []AuditAssociatedItem `json:"associatedItems,omitempty"`
	ChangedValues   []AuditChangedValue   `json:"changedValues,omitempty"`
}

func generateAuditRecordInput(in AuditRecordInput) (any, error) {
	if in.Category == "" {
		return nil, missing("category", "audit category is required")
	}
	if in.Summary == "" {
		return nil, missing("summary", "audit summary is required")
	}
	return auditRecordBody(in), nil
}

// AuditRecordSearchInput filters audit records. Zero values are ignored.
type AuditRecordSearchInput struct {
	Offset opt.Field[int]
	Limit  opt.Field[int]
	Filter string
	From   *time.Time
	To     *time.Time
}

func (in AuditRecordSearchInput) query() url.Values {
	q := url.Values{}
	if v, ok := in.Offset.Get(); ok {
		q.Set("offset", strconv.Itoa(v))
	}
	if v, ok := in.Limit.Get(); ok {
		q.Set("limit", strconv.Itoa(v))
	}
	if in.Filter != "" {
		q.Set("filter", in.Filter)
	}
	if in.From != nil {
		q.Set("from", FormatTime(*in.From))
	}
	if in.To != nil {
		q.Set("to", FormatTime(*in.To))
	}
	return q
}
