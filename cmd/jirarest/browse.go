package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/jirarest/jira"
)

func (a *app) serverInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serverinfo",
		Short: "Show the Jira server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			info, err := client.Metadata().GetServerInfo(cmd.Context()).Get(cmd.Context())
			if err != nil {
				return err
			}
			field(a.out, "Title", info.ServerTitle)
			field(a.out, "Base URL", info.BaseURI.String())
			field(a.out, "Version", info.Version)
			field(a.out, "Build", strconv.Itoa(info.BuildNumber))
			field(a.out, "Deployment", string(info.DeploymentType))
			field(a.out, "API", string(client.APIVersionInUse()))
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the credentials belong to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			session, err := client.Sessions().GetCurrentSession(ctx).Get(ctx)
			if err != nil {
				return err
			}
			user, err := client.Users().GetUserByURI(ctx, session.UserURI).Get(ctx)
			if err != nil {
				return err
			}
			keyColor.Fprintln(a.out, user.ID())
			field(a.out, "Name", user.DisplayName)
			field(a.out, "Email", user.EmailAddress)
			field(a.out, "Time zone", user.TimeZone)
			field(a.out, "Groups", strings.Join(user.Groups, ", "))
			return nil
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	var (
		limit, pageSize int
		fields          []string
	)
	cmd := &cobra.Command{
		Use:   "search <jql>",
		Short: "List issues matching a JQL query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			it := client.Search().SearchAll(args[0], pageSize, fields...)
			issues, err := it.Take(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := newTable(a.out, "KEY", "STATUS", "ASSIGNEE", "SUMMARY")
			for _, issue := range issues {
				row(tw, issue.Key, statusName(issue.Status), userName(issue.Assignee), issue.Summary)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			labelColor.Fprintf(a.out, "%d of %d issues\n", len(issues), it.Total())
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "n", 50, "Maximum number of issues to list")
	f.IntVar(&pageSize, "page-size", jira.DefaultPageSize, "Issues fetched per request")
	f.StringSliceVar(&fields, "fields", []string{"summary", "status", "assignee"}, "Fields to request")
	return cmd
}

func (a *app) projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "List and show projects",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List visible projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			projects, err := client.Projects().GetAllProjects(cmd.Context()).Get(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(a.out, "KEY", "ID", "NAME")
			for _, p := range projects {
				row(tw, p.Key, idString(p.ID), p.Name)
			}
			return tw.Flush()
		},
	}, &cobra.Command{
		Use:   "get <key>",
		Short: "Show a project with its components, versions and roles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			project, err := client.Projects().GetProject(ctx, args[0]).Get(ctx)
			if err != nil {
				return err
			}
			roles, err := client.ProjectRoles().GetRoles(ctx, project.Self).Get(ctx)
			if err != nil {
				return err
			}

			keyColor.Fprint(a.out, project.Key)
			fmt.Fprintf(a.out, "  %s\n", project.Name)
			field(a.out, "Lead", userName(project.Lead))
			field(a.out, "Description", project.Description)
			field(a.out, "Components", joinNames(project.Components, func(c jira.BasicComponent) string { return c.Name }))
			field(a.out, "Versions", joinNames(project.Versions, func(v jira.Version) string { return v.Name }))
			field(a.out, "Issue types", joinNames(project.IssueTypes, func(t jira.IssueType) string { return t.Name }))
			for _, role := range roles {
				field(a.out, "Role", fmt.Sprintf("%s (%d actors)", role.Name, len(role.Actors)))
			}
			return nil
		},
	})
	return cmd
}

func (a *app) componentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "component",
		Short: "Show components",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a component and how many issues use it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := a.jira()
			if err != nil {
				return err
			}
			base, err := cfg.APIBaseURL()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			uri := base.JoinPath("component", url.PathEscape(args[0]))

			// Both requests are in flight before either is awaited.
			componentP := client.Components().GetComponent(ctx, uri)
			countP := client.Components().GetComponentRelatedIssuesCount(ctx, uri)
			component, err := componentP.Get(ctx)
			if err != nil {
				return err
			}
			count, err := countP.Get(ctx)
			if err != nil {
				return err
			}

			keyColor.Fprintln(a.out, component.Name)
			field(a.out, "ID", idString(component.ID))
			field(a.out, "Lead", userName(component.Lead))
			if info := component.AssigneeInfo; info != nil {
				field(a.out, "Assignee", info.AssigneeType.DisplayName())
			}
			field(a.out, "Issues", strconv.Itoa(count))
			return nil
		},
	})
	return cmd
}

func (a *app) metadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "metadata <statuses|priorities|resolutions|issuetypes|linktypes|fields>",
		Short:     "List server metadata",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"statuses", "priorities", "resolutions", "issuetypes", "linktypes", "fields"},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			md := client.Metadata()
			tw := newTable(a.out, "ID", "NAME", "DESCRIPTION")

			switch args[0] {
			case "statuses":
				items, err := md.GetStatuses(ctx).Get(ctx)
				if err != nil {
					return err
				}
				for _, s := range items {
					row(tw, idString(s.ID), s.Name, s.Description)
				}
			case "priorities":
				items, err := md.GetPriorities(ctx).Get(ctx)
				if err != nil {
					return err
				}
				for _, p := range items {
					row(tw, idString(p.ID), p.Name, p.Description)
				}
			case "resolutions":
				items, err := md.GetResolutions(ctx).Get(ctx)
				if err != nil {
					return err
				}
				for _, r := range items {
					row(tw, idString(r.ID), r.Name, r.Description)
				}
			case "issuetypes":
				items, err := md.GetIssueTypes(ctx).Get(ctx)
				if err != nil {
					return err
				}
				for _, t := range items {
					row(tw, idString(t.ID), t.Name, t.Description)
				}
			case "linktypes":
				items, err := md.GetIssueLinkTypes(ctx).Get(ctx)
				if err != nil {
					return err
				}
				for _, t := range items {
					row(tw, idString(t.ID), t.Name, t.Outward+" / "+t.Inward)
				}
			case "fields":
				items, err := md.GetFields(ctx).Get(ctx)
				if err != nil {
					return err
				}
				for _, f := range items {
					kind := "system"
					if f.Custom {
						kind = "custom"
					}
					row(tw, f.ID, f.Name, kind)
				}
			}
			return tw.Flush()
		},
	}
}

func joinNames[T any](items []T, name func(T) string) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = name(item)
	}
	return strings.Join(names, ", ")
}
