package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout <provider>",
		Short: "Remove stored OAuth credentials for a CLI-surface provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := oauthProviders[args[0]]
			if !ok {
				return fmt.Errorf("zdx logout: unknown provider %q", args[0])
			}
			if err := a.store.Remove(key); err != nil {
				return fmt.Errorf("zdx logout: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed credentials for %s\n", args[0])
			return nil
		},
	}
}
