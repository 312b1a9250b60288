package jira

import (
	"encoding/json"
	"net/url"
	"sort"
)

var parseBasicUser = objectParser("user", readBasicUser)

func readBasicUser(o *object) BasicUser {
	u := BasicUser{
		Self:        o.optURI("self"),
		Name:        o.optStr("name"),
		AccountID:   o.optStr("accountId"),
		DisplayName: o.optStr("displayName"),
	}
	if u.Name == "" && u.AccountID == "" {
		o.fail("name", errMissingField)
	}
	return u
}

var parseUser = objectParser("user", func(o *object) User {
	u := User{
		BasicUser:    readBasicUser(o),
		Key:          o.optStr("key"),
		EmailAddress: o.optStr("emailAddress"),
		Active:       o.optBool("active"),
		TimeZone:     o.optStr("timeZone"),
	}
	if raw, ok := o.optional("avatarUrls"); ok {
		u.AvatarURLs = decodeInto[map[string]string](o, "avatarUrls", raw)
	}
	if raw, ok := o.optional("groups"); ok {
		u.Groups = decodeGroups(o, raw)
	}
	return u
})

// decodeGroups reads {"size": n, "items": [{"name": ...}]}.
func decodeGroups(o *object, raw json.RawMessage) []string {
	var groups struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &groups); err != nil {
		o.fail("groups", err)
		return nil
	}
	names := make([]string, 0, len(groups.Items))
	for _, g := range groups.Items {
		names = append(names, g.Name)
	}
	return names
}

var parseBasicProject = objectParser("project", func(o *object) BasicProject {
	return BasicProject{
		Self: o.optURI("self"),
		Key:  o.str("key"),
		ID:   o.optID("id"),
		Name: o.optStr("name"),
	}
})

var parseProject = objectParser("project", func(o *object) Project {
	p := Project{
		BasicProject: BasicProject{
			Self: o.uri("self"),
			Key:  o.str("key"),
			ID:   o.optID("id"),
			Name: o.optStr("name"),
		},
		Description: o.text("description"),
		Lead:        optNested(o, "lead", parseBasicUser),
		URI:         o.optURI("url"),
		IssueTypes:  list(o, "issueTypes", parseIssueType),
		Components:  list(o, "components", parseBasicComponent),
		Versions:    list(o, "versions", parseVersion),
	}
	if raw, ok := o.optional("roles"); ok {
		p.Roles = decodeURIMap(o, "roles", raw)
	}
	return p
})

func decodeURIMap(o *object, key string, raw json.RawMessage) map[string]*url.URL {
	strs := decodeInto[map[string]string](o, key, raw)
	if o.err != nil {
		return nil
	}
	out := make(map[string]*url.URL, len(strs))
	for name, s := range strs {
		u, err := url.Parse(s)
		if err != nil {
			o.fail(key+"."+name, err)
			return nil
		}
		out[name] = u
	}
	return out
}

var parseBasicComponent = objectParser("component", readBasicComponent)

func readBasicComponent(o *object) BasicComponent {
	return BasicComponent{
		Self:        o.uri("self"),
		ID:          o.optID("id"),
		Name:        o.str("name"),
		Description: o.optStr("description"),
	}
}

var parseComponent = objectParser("component", func(o *object) Component {
	c := Component{
		BasicComponent: readBasicComponent(o),
		Lead:           optNested(o, "lead", parseBasicUser),
	}
	// assignee details are only sent by servers that support them
	if o.has("assigneeType") {
		c.AssigneeInfo = &AssigneeInfo{
			Assignee:          optNested(o, "assignee", parseBasicUser),
			AssigneeType:      AssigneeType(o.str("assigneeType")),
			RealAssignee:      optNested(o, "realAssignee", parseBasicUser),
			RealAssigneeType:  AssigneeType(o.optStr("realAssigneeType")),
			AssigneeTypeValid: o.optBool("isAssigneeTypeValid"),
		}
	}
	return c
})

var parseIssueType = objectParser("issue type", func(o *object) IssueType {
	return IssueType{
		Self:        o.optURI("self"),
		ID:          o.optID("id"),
		Name:        o.str("name"),
		Description: o.optStr("description"),
		Subtask:     o.optBool("subtask"),
		IconURI:     o.optURI("iconUrl"),
	}
})

var parseStatusCategory = objectParser("status category", func(o *object) StatusCategory {
	return StatusCategory{
		Self:      o.optURI("self"),
		ID:        o.id("id"),
		Key:       o.str("key"),
		Name:      o.optStr("name"),
		ColorName: o.optStr("colorName"),
	}
})

var parseStatus = objectParser("status", func(o *object) Status {
	return Status{
		Self:           o.optURI("self"),
		ID:             o.optID("id"),
		Name:           o.str("name"),
		Description:    o.optStr("description"),
		IconURL:        o.optURI("iconUrl"),
		StatusCategory: optNested(o, "statusCategory", parseStatusCategory),
	}
})

var parsePriority = objectParser("priority", func(o *object) Priority {
	return Priority{
		Self:        o.optURI("self"),
		ID:          o.optID("id"),
		Name:        o.str("name"),
		Description: o.optStr("description"),
		StatusColor: o.optStr("statusColor"),
		IconURI:     o.optURI("iconUrl"),
	}
})

var parseResolution = objectParser("resolution", func(o *object) Resolution {
	return Resolution{
		Self:        o.optURI("self"),
		ID:          o.optID("id"),
		Name:        o.str("name"),
		Description: o.optStr("description"),
	}
})

var parseServerInfo = objectParser("server info", func(o *object) ServerInfo {
	info := ServerInfo{
		BaseURI:        o.uri("baseUrl"),
		Version:        o.str("version"),
		DeploymentType: DeploymentType(o.optStr("deploymentType")),
		BuildNumber:    o.integer("buildNumber"),
		BuildDate:      o.optTime("buildDate"),
		ServerTime:     o.optTime("serverTime"),
		ScmInfo:        o.optStr("scmInfo"),
		ServerTitle:    o.optStr("serverTitle"),
	}
	if raw, ok := o.optional("versionNumbers"); ok {
		info.VersionNumbers = decodeInto[[]int](o, "versionNumbers", raw)
	}
	return info
})

var parseFieldSchema = objectParser("field schema", func(o *object) FieldSchema {
	return FieldSchema{
		Type:     o.str("type"),
		Items:    o.optStr("items"),
		System:   o.optStr("system"),
		Custom:   o.optStr("custom"),
		CustomID: o.optID("customId"),
	}
})

var parseField = objectParser("field", func(o *object) Field {
	return Field{
		ID:         o.str("id"),
		Name:       o.str("name"),
		Custom:     o.optBool("custom"),
		Orderable:  o.optBool("orderable"),
		Navigable:  o.optBool("navigable"),
		Searchable: o.optBool("searchable"),
		Schema:     optNested(o, "schema", parseFieldSchema),
	}
})

var parseIssueLinkType = objectParser("issue link type", func(o *object) IssueLinkType {
	return IssueLinkType{
		Self:    o.optURI("self"),
		ID:      o.optID("id"),
		Name:    o.str("name"),
		Inward:  o.str("inward"),
		Outward: o.str("outward"),
	}
})

var parseIssueTypeScheme = objectParser("issue type scheme", func(o *object) IssueTypeScheme {
	return IssueTypeScheme{
		Self:             o.optURI("self"),
		ID:               o.id("id"),
		Name:             o.str("name"),
		Description:      o.optStr("description"),
		DefaultIssueType: optNested(o, "defaultIssueType", parseIssueType),
		IssueTypes:       list(o, "issueTypes", parseIssueType),
	}
})

var parseVersion = objectParser("version", func(o *object) Version {
	return Version{
		Self:        o.optURI("self"),
		ID:          o.optID("id"),
		Name:        o.str("name"),
		Description: o.optStr("description"),
		Archived:    o.optBool("archived"),
		Released:    o.optBool("released"),
		ReleaseDate: o.optTime("releaseDate"),
		ProjectID:   o.optID("projectId"),
	}
})

var parseVersionRelatedIssuesCount = objectParser("version related issues", func(o *object) VersionRelatedIssuesCount {
	return VersionRelatedIssuesCount{
		Self:                o.optURI("self"),
		IssuesFixedCount:    o.integer("issuesFixedCount"),
		IssuesAffectedCount: o.integer("issuesAffectedCount"),
	}
})

var parseUnresolvedIssueCount = objectParser("version unresolved issues", func(o *object) int {
	return o.integer("issuesUnresolvedCount")
})

var parseComponentRelatedIssuesCount = objectParser("component related issues", func(o *object) int {
	return o.integer("issueCount")
})

var parseBasicIssue = objectParser("issue", readBasicIssue)

func readBasicIssue(o *object) BasicIssue {
	return BasicIssue{
		Self: o.uri("self"),
		Key:  o.str("key"),
		ID:   o.id("id"),
	}
}

var parseVisibility = objectParser("visibility", func(o *object) Visibility {
	return Visibility{
		Type:  VisibilityType(o.str("type")),
		Value: o.str("value"),
	}
})

var parseComment = objectParser("comment", func(o *object) Comment {
	return Comment{
		Self:         o.optURI("self"),
		ID:           o.id("id"),
		Body:         o.text("body"),
		Author:       optNested(o, "author", parseBasicUser),
		UpdateAuthor: optNested(o, "updateAuthor", parseBasicUser),
		Created:      o.optTime("created"),
		Updated:      o.optTime("updated"),
		Visibility:   optNested(o, "visibility", parseVisibility),
	}
})

var parseBasicVotes = objectParser("votes", readBasicVotes)

func readBasicVotes(o *object) BasicVotes {
	return BasicVotes{
		Self:     o.optURI("self"),
		Votes:    o.integer("votes"),
		HasVoted: o.boolean("hasVoted"),
	}
}

var parseVotes = objectParser("votes", func(o *object) Votes {
	return Votes{BasicVotes: readBasicVotes(o), Voters: list(o, "voters", parseBasicUser)}
})

var parseBasicWatchers = objectParser("watchers", readBasicWatchers)

func readBasicWatchers(o *object) BasicWatchers {
	return BasicWatchers{
		Self:       o.optURI("self"),
		WatchCount: o.integer("watchCount"),
		IsWatching: o.boolean("isWatching"),
	}
}

var parseWatchers = objectParser("watchers", func(o *object) Watchers {
	return Watchers{BasicWatchers: readBasicWatchers(o), Users: list(o, "watchers", parseBasicUser)}
})

// issueFields reads the "fields" object of an issue.
func issueFields(issue *Issue) func(o *object) struct{} {
	return func(o *object) struct{} {
		issue.Fields = o.fields
		issue.Summary = o.optStr("summary")
		issue.Description = o.text("description")
		issue.Project = optNested(o, "project", parseBasicProject)
		issue.IssueType = optNested(o, "issuetype", parseIssueType)
		issue.Status = optNested(o, "status", parseStatus)
		issue.Priority = optNested(o, "priority", parsePriority)
		issue.Resolution = optNested(o, "resolution", parseResolution)
		issue.Reporter = optNested(o, "reporter", parseBasicUser)
		issue.Assignee = optNested(o, "assignee", parseBasicUser)
		issue.Created = o.optTime("created")
		issue.Updated = o.optTime("updated")
		issue.DueDate = o.optTime("duedate")
		issue.Labels = o.strings("labels")
		issue.Components = list(o, "components", parseBasicComponent)
		issue.FixVersions = list(o, "fixVersions", parseVersion)
		issue.AffectedVersions = list(o, "versions", parseVersion)
		issue.Votes = optNested(o, "votes", parseBasicVotes)
		issue.Watchers = optNested(o, "watches", parseBasicWatchers)
		if comments := optNested(o, "comment", FieldArrayParser("comments", parseComment)); comments != nil {
			issue.Comments = *comments
		}
		return struct{}{}
	}
}

var parseIssue = objectParser("issue", func(o *object) Issue {
	issue := Issue{BasicIssue: readBasicIssue(o)}
	nested(o, "fields", objectParser("issue", issueFields(&issue)))
	if changelog := optNested(o, "changelog", FieldArrayParser("histories", parseChangelogGroup)); changelog != nil {
		issue.Changelog = *changelog
	}
	return issue
})

var parseChangelogItem = objectParser("changelog item", func(o *object) ChangelogItem {
	return ChangelogItem{
		Field:      o.str("field"),
		FieldType:  o.optStr("fieldtype"),
		FieldID:    o.optStr("fieldId"),
		From:       o.optStr("from"),
		FromString: o.optStr("fromString"),
		To:         o.optStr("to"),
		ToString:   o.optStr("toString"),
	}
})

var parseChangelogGroup = objectParser("changelog", func(o *object) ChangelogGroup {
	return ChangelogGroup{
		ID:      o.id("id"),
		Author:  optNested(o, "author", parseBasicUser),
		Created: o.time("created"),
		Items:   list(o, "items", parseChangelogItem),
	}
})

var parseTransition = objectParser("transition", func(o *object) Transition {
	return Transition{
		ID:   o.id("id"),
		Name: o.str("name"),
		To:   optNested(o, "to", parseStatus),
	}
})

var parseSearchResult = objectParser("search result", func(o *object) SearchResult {
	return SearchResult{
		StartAt:    o.optInt("startAt"),
		MaxResults: o.optInt("maxResults"),
		Total:      o.integer("total"),
		Issues:     nested(o, "issues", ArrayParser(parseIssue)),
	}
})

var parseLoginInfo = objectParser("login info", func(o *object) LoginInfo {
	return LoginInfo{
		FailedLoginCount:    o.optInt("failedLoginCount"),
		LoginCount:          o.integer("loginCount"),
		LastFailedLoginTime: o.optTime("lastFailedLoginTime"),
		PreviousLoginTime:   o.optTime("previousLoginTime"),
	}
})

var parseSession = objectParser("session", func(o *object) Session {
	return Session{
		UserURI:   o.uri("self"),
		Username:  o.str("name"),
		LoginInfo: optNested(o, "loginInfo", parseLoginInfo),
	}
})

var parseRoleActor = objectParser("role actor", func(o *object) RoleActor {
	return RoleActor{
		ID:          o.optID("id"),
		DisplayName: o.optStr("displayName"),
		Type:        o.str("type"),
		Name:        o.str("name"),
		AvatarURL:   o.optURI("avatarUrl"),
	}
})

var parseProjectRole = objectParser("project role", func(o *object) ProjectRole {
	return ProjectRole{
		BasicProjectRole: BasicProjectRole{
			Self: o.uri("self"),
			Name: o.str("name"),
		},
		ID:          o.id("id"),
		Description: o.optStr("description"),
		Actors:      list(o, "actors", parseRoleActor),
	}
})

// parseRoleURIs reads the {name: uri} map returned by a project's role
// resource, ordered by role name.
var parseRoleURIs = objectParser("project roles", func(o *object) []BasicProjectRole {
	names := make([]string, 0, len(o.fields))
	for name := range o.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	roles := make([]BasicProjectRole, 0, len(names))
	for _, name := range names {
		roles = append(roles, BasicProjectRole{Name: name, Self: o.uri(name)})
	}
	return roles
})

var parseAuditAssociatedItem = objectParser("audit item", func(o *object) AuditAssociatedItem {
	return AuditAssociatedItem{
		ID:         o.optStr("id"),
		Name:       o.str("name"),
		TypeName:   o.str("typeName"),
		ParentID:   o.optStr("parentId"),
		ParentName: o.optStr("parentName"),
	}
})

var parseAuditChangedValue = objectParser("audit change", func(o *object) AuditChangedValue {
	return AuditChangedValue{
		FieldName:   o.str("fieldName"),
		ChangedFrom: o.optStr("changedFrom"),
		ChangedTo:   o.optStr("changedTo"),
	}
})

var parseAuditRecord = objectParser("audit record", func(o *object) AuditRecord {
	return AuditRecord{
		ID:              o.id("id"),
		Summary:         o.str("summary"),
		RemoteAddress:   o.optStr("remoteAddress"),
		AuthorKey:       o.optStr("authorKey"),
		Created:         o.time("created"),
		Category:        o.str("category"),
		EventSource:     o.optStr("eventSource"),
		Description:     o.optStr("description"),
		ObjectItem:      optNested(o, "objectItem", parseAuditAssociatedItem),
		AssociatedItems: list(o, "associatedItems", parseAuditAssociatedItem),
		ChangedValues:   list(o, "changedValues", parseAuditChangedValue),
	}
})

var parseAuditRecordsData = objectParser("audit records", func(o *object) AuditRecordsData {
	return AuditRecordsData{
		Offset:  o.optInt("offset"),
		Limit:   o.optInt("limit"),
		Total:   o.integer("total"),
		Records: nested(o, "records", ArrayParser(parseAuditRecord)),
	}
})
