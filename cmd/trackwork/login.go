package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/trackwork/config"
	"github.com/randalmurphal/trackwork/github"
	"github.com/randalmurphal/trackwork/gitlab"
	"github.com/randalmurphal/trackwork/jira"
	"github.com/randalmurphal/trackwork/tracker"
)

func newLoginCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store credentials for a provider",
		Long: "Open the selected provider interactively, prompting for any " +
			"credential not found in the environment and saving it to the OS keyring.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := config.NewResolver()
			cfg := resolver.ResolveWithFlags(map[string]string{
				config.KeyProvider: root.provider,
			})
			name := cfg.Get(config.KeyProvider)

			if _, err := tracker.Open(cmd.Context(), name, tracker.OpenOptions{Interactive: true}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s\n", name)
			return nil
		},
	}
}

func newLogoutCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials for a provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := config.NewResolver()
			cfg := resolver.ResolveWithFlags(map[string]string{
				config.KeyProvider: root.provider,
			})
			name := cfg.Get(config.KeyProvider)

			var err error
			switch name {
			case "jira":
				err = jira.ClearCredentials()
			case "github":
				err = github.ClearCredentials()
			case "gitlab":
				err = gitlab.ClearCredentials()
			default:
				return fmt.Errorf("%w: %q", tracker.ErrUnknownProvider, name)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", name)
			return nil
		},
	}
}
