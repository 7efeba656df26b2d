package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tallesborges/zdx/core/thread"
	"github.com/tallesborges/zdx/core/turn"
	"github.com/tallesborges/zdx/internal/providerset"
	"github.com/tallesborges/zdx/internal/resolver"
)

func newExecCmd(a *app) *cobra.Command {
	var prompt, toolsFlag string
	var noTools bool

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run a single prompt to completion and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt == "" {
				return fmt.Errorf("zdx exec: --prompt is required")
			}

			res := resolver.Resolve(a.model, "anthropic")
			provider, modelCost, err := providerset.Build(res, a.cfg, a.store)
			if err != nil {
				return err
			}

			log, err := thread.New()
			if err != nil {
				return fmt.Errorf("zdx exec: creating thread: %w", err)
			}

			runner := &turn.Runner{
				Provider:  provider,
				Catalog:   a.filterTools(toolsFlag, noTools),
				Log:       log,
				Model:     res.Model,
				ModelCost: modelCost,
			}

			outcome := runner.Run(cmd.Context(), prompt)
			switch outcome.State {
			case turn.StateCompleted:
				events, err := log.ReadEvents()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), thread.Transcript(events))
				return nil
			case turn.StateInterrupted:
				return fmt.Errorf("interrupted")
			default:
				if outcome.Err != nil {
					return outcome.Err
				}
				return fmt.Errorf("zdx exec: turn ended in state %s", outcome.State)
			}
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "the prompt to send")
	cmd.Flags().StringVar(&toolsFlag, "tools", "", "comma-separated tool names to enable (default: all)")
	cmd.Flags().BoolVar(&noTools, "no-tools", false, "disable all tools for this run")

	return cmd
}
