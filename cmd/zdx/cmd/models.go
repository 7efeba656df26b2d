package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tallesborges/zdx/internal/modelscatalog"
)

func newModelsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage the cached model/pricing catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Refresh the cached model catalog from models.dev",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := modelscatalog.Update(cmd.Context(), nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated model catalog (%d bytes)\n", n)
			return nil
		},
	})
	return cmd
}
