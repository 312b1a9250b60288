package jira

import (
	"testing"
	"time"
)

func TestValidateIssueKey(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"PROJ-123", true},
		{"A-1", true},
		{"ABC123-9999", true},
		{"PROJECT-1", true},
		{"proj-123", false},    // lowercase not allowed
		{"123-456", false},     // must start with letter
		{"PROJ123", false},     // missing dash
		{"PROJ-", false},       // missing number
		{"-123", false},        // missing project
		{"", false},            // empty
		{"PROJ-0", true},       // zero is valid
		{"A1B2-123", true},     // alphanumeric project key
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := ValidateIssueKey(tt.key)
			if got != tt.valid {
				t.Errorf("ValidateIssueKey(%q) = %v, want %v", tt.key, got, tt.valid)
			}
		})
	}
}

func TestValidateIssueIDOrKey(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"PROJ-123", true},
		{"10000", true},
		{"0", true},
		{"", false},
		{"-1", false},
		{"10000a", false},
		{"10 000", false},
		{"proj-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ValidateIssueIDOrKey(tt.in); got != tt.valid {
				t.Errorf("ValidateIssueIDOrKey(%q) = %v, want %v", tt.in, got, tt.valid)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"standard format", "2025-01-15T10:30:00.000+0000", false},
		{"with Z", "2025-01-15T10:30:00.000Z", false},
		{"no milliseconds", "2025-01-15T10:30:00+0000", false},
		{"RFC3339", "2025-01-15T10:30:00Z", false},
		{"empty", "", false},
		{"invalid", "not-a-date", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTime(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseTime(%q) unexpected error: %v", tt.input, err)
				return
			}
			if tt.input != "" && result.IsZero() {
				t.Errorf("ParseTime(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	tm := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	got := FormatTime(tm)
	want := "2025-01-15T10:30:00.000+0000"
	if got != want {
		t.Errorf("FormatTime() = %q, want %q", got, want)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, err := ParseTime("2024-03-01")
	if err != nil {
		t.Fatalf("ParseTime() error = %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseTime() = %v, want 2024-03-01", got)
	}
}

func TestBasicUserID(t *testing.T) {
	tests := []struct {
		name string
		user BasicUser
		want string
	}{
		{
			name: "cloud user with accountId",
			user: BasicUser{AccountID: "cloud-123", Name: "jsmith"},
			want: "cloud-123",
		},
		{
			name: "server user with name only",
			user: BasicUser{Name: "jsmith"},
			want: "jsmith",
		},
		{
			name: "empty user",
			user: BasicUser{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.user.ID()
			if got != tt.want {
				t.Errorf("BasicUser.ID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssigneeTypeDisplayName(t *testing.T) {
	tests := map[AssigneeType]string{
		AssigneeProjectDefault: "Project Default",
		AssigneeComponentLead:  "Component Lead",
		AssigneeProjectLead:    "Project Lead",
		AssigneeUnassigned:     "Unassigned",
	}
	for in, want := range tests {
		if got := in.DisplayName(); got != want {
			t.Errorf("%s.DisplayName() = %q, want %q", in, got, want)
		}
	}
}

func TestIssueFieldChanges(t *testing.T) {
	issue := Issue{Changelog: []ChangelogGroup{
		{ID: 1, Items: []ChangelogItem{{Field: "status", FromString: "Open", ToString: "In Progress"}}},
		{ID: 2, Items: []ChangelogItem{
			{Field: "assignee", ToString: "jsmith"},
			{Field: "Status", FromString: "In Progress", ToString: "Done"},
		}},
	}}

	changes := issue.FieldChanges("status")
	if len(changes) != 2 {
		t.Fatalf("FieldChanges() returned %d items, want 2", len(changes))
	}
	if changes[0].ToString != "In Progress" || changes[1].ToString != "Done" {
		t.Errorf("FieldChanges() = %+v, want oldest first", changes)
	}
	if got := issue.FieldChanges("priority"); got != nil {
		t.Errorf("FieldChanges(priority) = %v, want nil", got)
	}
}
