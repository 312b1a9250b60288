package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/jirarest/jira"
	"github.com/randalmurphal/jirarest/opt"
	"github.com/randalmurphal/jirarest/promise"
)

func (a *app) issueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Read and change issues",
	}
	cmd.AddCommand(
		a.issueGetCmd(),
		a.issueCreateCmd(),
		a.issueCommentCmd(),
		a.issueTransitionCmd(),
		a.issueDeleteCmd(),
		a.issueWatchCmd(),
		a.issueLinkCmd(),
	)
	return cmd
}

func (a *app) issueGetCmd() *cobra.Command {
	var expand []string
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Show an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			issue, err := client.Issues().GetIssue(cmd.Context(), args[0], expand...).Get(cmd.Context())
			if err != nil {
				return err
			}
			printIssue(a.out, issue)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&expand, "expand", nil, "Expand options, e.g. changelog")
	return cmd
}

func (a *app) issueCreateCmd() *cobra.Command {
	var (
		project, summary, description string
		typeID                        int64
		labels                        []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cfg, err := a.jira()
			if err != nil {
				return err
			}
			in := jira.NewIssueInput(project, typeID, summary)
			switch {
			case description == "":
			case cfg.GetAPIVersion() == jira.APIVersionV3:
				in.Fields["description"] = jira.TextToADF(description)
			default:
				in.Fields["description"] = description
			}
			if len(labels) > 0 {
				in.Fields["labels"] = labels
			}
			created, err := client.Issues().CreateIssue(cmd.Context(), in).Get(cmd.Context())
			if err != nil {
				return err
			}
			success(a.out, "Created %s", created.Key)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&project, "project", "p", "", "Project key")
	f.Int64Var(&typeID, "type-id", 0, "Issue type id")
	f.StringVarP(&summary, "summary", "s", "", "Summary")
	f.StringVarP(&description, "description", "d", "", "Description")
	f.StringSliceVar(&labels, "label", nil, "Label to add (repeatable)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("type-id")
	_ = cmd.MarkFlagRequired("summary")
	return cmd
}

func (a *app) issueCommentCmd() *cobra.Command {
	var role, group string
	cmd := &cobra.Command{
		Use:   "comment <key> <text>",
		Short: "Comment on an issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			in := jira.CommentInput{Body: args[1]}
			switch {
			case role != "":
				in.Visibility = opt.Of(jira.Visibility{Type: jira.VisibilityRole, Value: role})
			case group != "":
				in.Visibility = opt.Of(jira.Visibility{Type: jira.VisibilityGroup, Value: group})
			}
			comment, err := client.Issues().AddComment(cmd.Context(), args[0], in).Get(cmd.Context())
			if err != nil {
				return err
			}
			success(a.out, "Added comment %d to %s", comment.ID, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Restrict the comment to a project role")
	cmd.Flags().StringVar(&group, "group", "", "Restrict the comment to a group")
	cmd.MarkFlagsMutuallyExclusive("role", "group")
	return cmd
}

func (a *app) issueTransitionCmd() *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "transition <key> [transition-id]",
		Short: "List transitions, or move an issue through one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) == 1 {
				transitions, err := client.Issues().GetTransitions(ctx, args[0]).Get(ctx)
				if err != nil {
					return err
				}
				tw := newTable(a.out, "ID", "NAME", "TO")
				for _, t := range transitions {
					row(tw, strconv.FormatInt(t.ID, 10), t.Name, statusName(t.To))
				}
				return tw.Flush()
			}

			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("transition id %q: %w", args[1], err)
			}
			in := jira.TransitionInput{ID: id}
			if comment != "" {
				in.Comment = &jira.CommentInput{Body: comment}
			}
			if _, err := client.Issues().Transition(ctx, args[0], in).Get(ctx); err != nil {
				return err
			}
			success(a.out, "Transitioned %s", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Comment to add with the transition")
	return cmd
}

func (a *app) issueDeleteCmd() *cobra.Command {
	var subtasks bool
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			if _, err := client.Issues().DeleteIssue(cmd.Context(), args[0], subtasks).Get(cmd.Context()); err != nil {
				return err
			}
			success(a.out, "Deleted %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&subtasks, "subtasks", false, "Delete subtasks too")
	return cmd
}

func (a *app) issueWatchCmd() *cobra.Command {
	var stop bool
	cmd := &cobra.Command{
		Use:   "watch <key>...",
		Short: "Start or stop watching issues",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pending := make([]*promise.Promise[struct{}], 0, len(args))
			for _, key := range args {
				if stop {
					pending = append(pending, client.Issues().Unwatch(ctx, key))
				} else {
					pending = append(pending, client.Issues().Watch(ctx, key))
				}
			}
			if _, err := promise.All(ctx, pending...); err != nil {
				return err
			}
			verb := "Watching"
			if stop {
				verb = "Stopped watching"
			}
			success(a.out, "%s %d issue(s)", verb, len(args))
			return nil
		},
	}
	cmd.Flags().BoolVar(&stop, "stop", false, "Stop watching instead")
	return cmd
}

func (a *app) issueLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link <from-key> <link-type> <to-key>",
		Short: "Link two issues",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.jira()
			if err != nil {
				return err
			}
			in := jira.LinkIssuesInput{FromIssueKey: args[0], LinkType: args[1], ToIssueKey: args[2]}
			if _, err := client.Issues().LinkIssue(cmd.Context(), in).Get(cmd.Context()); err != nil {
				return err
			}
			success(a.out, "Linked %s %s %s", args[0], args[1], args[2])
			return nil
		},
	}
	return cmd
}
