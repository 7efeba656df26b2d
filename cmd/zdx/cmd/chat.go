package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tallesborges/zdx/core/thread"
	"github.com/tallesborges/zdx/core/turn"
	"github.com/tallesborges/zdx/internal/providerset"
	"github.com/tallesborges/zdx/internal/resolver"
)

// newChatCmd builds the interactive REPL: one thread log for the whole
// session, one turn per line read from stdin, printed reply after each
// turn completes. Streaming deltas are not rendered incrementally here
// (no terminal UI is in scope); the turn's fanout exists for callers
// that want that, such as a future TUI front end.
func newChatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := resolver.Resolve(a.model, "anthropic")
			provider, modelCost, err := providerset.Build(res, a.cfg, a.store)
			if err != nil {
				return err
			}

			log, err := thread.New()
			if err != nil {
				return fmt.Errorf("zdx chat: creating thread: %w", err)
			}
			if wd, err := os.Getwd(); err == nil {
				log.Append(thread.RootPathEvent(wd))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "thread %s\n", log.ID)

			runner := &turn.Runner{
				Provider:  provider,
				Catalog:   a.catalog,
				Log:       log,
				Model:     res.Model,
				ModelCost: modelCost,
			}

			scanner := bufio.NewScanner(a.stdin)
			for {
				fmt.Fprint(cmd.OutOrStdout(), "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if text == "exit" || text == "quit" {
					return nil
				}

				outcome := runner.Run(cmd.Context(), text)
				if err := printTurn(cmd, log, outcome); err != nil {
					return err
				}
				if outcome.State == turn.StateInterrupted {
					return fmt.Errorf("interrupted")
				}
			}
		},
	}
	return cmd
}

func printTurn(cmd *cobra.Command, log *thread.Log, outcome turn.Outcome) error {
	if outcome.State == turn.StateErrored {
		if outcome.Err != nil {
			return outcome.Err
		}
		return fmt.Errorf("zdx chat: turn errored")
	}

	events, err := log.ReadEvents()
	if err != nil {
		return err
	}
	messages := thread.ToMessages(events)
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "assistant" && messages[i].Content != "" {
			fmt.Fprintln(cmd.OutOrStdout(), messages[i].Content)
			break
		}
	}
	return nil
}
