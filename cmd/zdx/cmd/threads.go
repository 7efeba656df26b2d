package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tallesborges/zdx/core/thread"
)

func newThreadsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List, show, and remove saved conversation threads",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved threads as a handoff forest, newest roots first",
			RunE: func(cmd *cobra.Command, args []string) error {
				infos, err := thread.List()
				if err != nil {
					return err
				}
				for _, node := range thread.Tree(infos) {
					label := node.Title
					if label == "" {
						label = node.ID
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s%s\t%s\t%s\n",
						strings.Repeat("  ", node.Depth), label, node.ID, node.Modified.Format("2006-01-02 15:04:05"))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print a thread's transcript",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				events, err := thread.Load(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), thread.Transcript(events))
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a saved thread",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return thread.Remove(args[0])
			},
		},
	)

	return cmd
}
