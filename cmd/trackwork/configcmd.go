package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/trackwork/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change trackwork settings",
	}

	cmd.AddCommand(newConfigListCmd(), newConfigGetCmd(), newConfigSetCmd(), newConfigUnsetCmd())
	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all settings with their sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved := config.NewResolver().Resolve()

			all := resolved.All()
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
			for _, key := range keys {
				value, source := resolved.GetWithSource(key)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", key, value, source)
			}
			return tw.Flush()
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved := config.NewResolver().Resolve()
			value, source := resolved.GetWithSource(args[0])
			if source == "" {
				return fmt.Errorf("unknown config key: %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\n", value, source)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				return config.SaveLocal(config.NewResolver().GitRoot(), args[0], args[1])
			}
			return config.SaveGlobal(args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "store in .trackwork.yaml at the git root")
	return cmd
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting from the global config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.DeleteGlobalKey(args[0])
		},
	}
}
