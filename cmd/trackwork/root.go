package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/trackwork/config"
	"github.com/randalmurphal/trackwork/tracker"

	// Register the built-in providers.
	_ "github.com/randalmurphal/trackwork/github"
	_ "github.com/randalmurphal/trackwork/gitlab"
	_ "github.com/randalmurphal/trackwork/jira"
)

// rootOptions carries flags shared by every subcommand.
type rootOptions struct {
	provider       string
	nonInteractive bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "trackwork",
		Short:         "Work with issue trackers through one interface",
		Long:          "trackwork talks to Jira, GitHub, and GitLab issues through a single normalized interface.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.provider, "provider", "p", "",
		"tracker provider (jira, github, gitlab)")
	cmd.PersistentFlags().BoolVar(&opts.nonInteractive, "non-interactive", false,
		"never prompt for missing credentials")

	cmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newGetCmd(opts),
		newListCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newProvidersCmd(),
		newConfigCmd(),
	)

	return cmd
}

// openClient resolves configuration and opens the selected provider.
func openClient(ctx context.Context, opts *rootOptions) (tracker.Client, *config.Resolved, error) {
	resolver := config.NewResolver()
	cfg := resolver.ResolveWithFlags(map[string]string{
		config.KeyProvider: opts.provider,
	})

	// Provider packages read their project settings from the
	// environment; forward file-configured values there.
	forwardEnv(cfg, config.KeyJiraProject, "JIRA_PROJECT_KEY")
	forwardEnv(cfg, config.KeyJiraIssueType, "JIRA_ISSUE_TYPE")
	forwardEnv(cfg, config.KeyGitHubRepo, "GITHUB_REPOSITORY")
	forwardEnv(cfg, config.KeyGitLabProject, "GITLAB_PROJECT")

	interactive := !opts.nonInteractive && cfg.Get(config.KeyNonInteractive) != "true"

	client, err := tracker.Open(ctx, cfg.Get(config.KeyProvider), tracker.OpenOptions{
		Interactive: interactive,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func forwardEnv(cfg *config.Resolved, key, envVar string) {
	if v := cfg.Get(key); v != "" && os.Getenv(envVar) == "" {
		os.Setenv(envVar, v)
	}
}
