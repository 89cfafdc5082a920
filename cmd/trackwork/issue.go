package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/trackwork/config"
	"github.com/randalmurphal/trackwork/tracker"
)

func newGetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openClient(cmd.Context(), root)
			if err != nil {
				return err
			}

			issue, err := client.GetIssue(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printIssue(cmd.OutOrStdout(), issue)
			return nil
		},
	}
}

func newListCmd(root *rootOptions) *cobra.Command {
	var filter tracker.Filter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				parsed, ok := tracker.ParseStatus(status)
				if !ok {
					return fmt.Errorf("%w: %q", tracker.ErrInvalidStatus, status)
				}
				filter.Status = parsed
			}

			client, cfg, err := openClient(cmd.Context(), root)
			if err != nil {
				return err
			}

			if filter.MaxResults == 0 {
				if n, err := strconv.Atoi(cfg.Get(config.KeyMaxResults)); err == nil {
					filter.MaxResults = n
				}
			}

			issues, err := tracker.CollectIssues(cmd.Context(), client.SearchIssues(cmd.Context(), filter))
			if err != nil {
				return err
			}

			printIssueTable(cmd.OutOrStdout(), issues)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Title, "title", "", "match on title")
	cmd.Flags().StringVar(&filter.Description, "description", "", "match on description")
	cmd.Flags().StringVar(&status, "status", "", "match on status")
	cmd.Flags().StringVar(&filter.Assignee, "assignee", "", "match on assignee")
	cmd.Flags().StringVar(&filter.DueDate, "due", "", "due on date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.DueBefore, "due-before", "", "due before date")
	cmd.Flags().StringVar(&filter.DueAfter, "due-after", "", "due after date")
	cmd.Flags().IntVarP(&filter.MaxResults, "limit", "n", 0, "maximum results")

	return cmd
}

func newCreateCmd(root *rootOptions) *cobra.Command {
	var opts tracker.CreateOptions
	var status string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Title = args[0]
			if status != "" {
				parsed, ok := tracker.ParseStatus(status)
				if !ok {
					return fmt.Errorf("%w: %q", tracker.ErrInvalidStatus, status)
				}
				opts.Status = parsed
			}

			client, _, err := openClient(cmd.Context(), root)
			if err != nil {
				return err
			}

			issue, err := client.CreateIssue(cmd.Context(), opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", issue.ID)
			printIssue(cmd.OutOrStdout(), issue)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "issue description")
	cmd.Flags().StringVar(&status, "status", "", "initial status")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "assignee")
	cmd.Flags().StringVar(&opts.DueDate, "due", "", "due date (YYYY-MM-DD)")

	return cmd
}

func newUpdateCmd(root *rootOptions) *cobra.Command {
	var (
		title       string
		description string
		status      string
		assignee    string
		due         string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of an issue",
		Long: "Update fields of an issue. Only flags that are set are applied; " +
			"passing an empty value clears the field where the provider supports it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update tracker.UpdateOptions
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("description") {
				update.Description = &description
			}
			if cmd.Flags().Changed("assignee") {
				update.Assignee = &assignee
			}
			if cmd.Flags().Changed("due") {
				update.DueDate = &due
			}
			if cmd.Flags().Changed("status") {
				parsed, ok := tracker.ParseStatus(status)
				if !ok {
					return fmt.Errorf("%w: %q", tracker.ErrInvalidStatus, status)
				}
				update.Status = &parsed
			}

			if update.IsZero() {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}

			client, _, err := openClient(cmd.Context(), root)
			if err != nil {
				return err
			}

			issue, err := client.UpdateIssue(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}

			printIssue(cmd.OutOrStdout(), issue)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&assignee, "assignee", "", "new assignee (empty to unassign)")
	cmd.Flags().StringVar(&due, "due", "", "new due date (empty to clear)")

	return cmd
}

func newDeleteCmd(root *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to delete %s without --force", args[0])
			}

			client, _, err := openClient(cmd.Context(), root)
			if err != nil {
				return err
			}

			if err := client.DeleteIssue(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "confirm deletion")

	return cmd
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range tracker.Providers() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func printIssue(w io.Writer, issue *tracker.Issue) {
	fmt.Fprintf(w, "%s: %s\n", issue.ID, issue.Title)
	fmt.Fprintf(w, "  Status:   %s\n", issue.Status.DisplayName())
	if issue.Assignee != "" {
		fmt.Fprintf(w, "  Assignee: %s\n", issue.Assignee)
	}
	if issue.DueDate != "" {
		fmt.Fprintf(w, "  Due:      %s\n", issue.DueDate)
	}
	if issue.URL != "" {
		fmt.Fprintf(w, "  URL:      %s\n", issue.URL)
	}
	if issue.Description != "" {
		fmt.Fprintf(w, "\n%s\n", issue.Description)
	}
}

func printIssueTable(w io.Writer, issues []tracker.Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "No issues found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tASSIGNEE\tDUE\tTITLE")
	for _, issue := range issues {
		assignee := issue.Assignee
		if assignee == "" {
			assignee = "-"
		}
		due := issue.DueDate
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			issue.ID, issue.Status.DisplayName(), assignee, due, issue.Title)
	}
	tw.Flush()
}
