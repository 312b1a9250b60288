package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/randalmurphal/jirarest/jira"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	keyColor     = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.Faint)
)

func success(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, format+"\n", args...)
}

// field prints "label: value", skipping empty values.
func field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	labelColor.Fprintf(w, "%-12s", label+":")
	fmt.Fprintln(w, value)
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func userName(u *jira.BasicUser) string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID()
}

func statusName(s *jira.Status) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func idString(id *int64) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(*id)
}

func timeString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printIssue(w io.Writer, issue jira.Issue) {
	keyColor.Fprint(w, issue.Key)
	fmt.Fprintf(w, "  %s\n", issue.Summary)
	field(w, "Status", statusName(issue.Status))
	if issue.IssueType != nil {
		field(w, "Type", issue.IssueType.Name)
	}
	if issue.Priority != nil {
		field(w, "Priority", issue.Priority.Name)
	}
	field(w, "Assignee", userName(issue.Assignee))
	field(w, "Reporter", userName(issue.Reporter))
	field(w, "Created", timeString(issue.Created))
	field(w, "Updated", timeString(issue.Updated))
	field(w, "Labels", strings.Join(issue.Labels, ", "))
	if issue.Description != "" {
		fmt.Fprintf(w, "\n%s\n", issue.Description)
	}
	for _, c := range issue.Comments {
		fmt.Fprintln(w)
		labelColor.Fprintf(w, "%s, %s\n", userName(c.Author), timeString(c.Created))
		fmt.Fprintln(w, c.Body)
	}
	for _, group := range issue.Changelog {
		for _, item := range group.Items {
			labelColor.Fprintf(w, "%s %s: ", timeString(&group.Created), userName(group.Author))
			fmt.Fprintf(w, "%s %q -> %q\n", item.Field, item.FromString, item.ToString)
		}
	}
}
