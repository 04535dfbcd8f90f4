package root

import (
	"github.com/spf13/cobra"

	"grimpo/internal/tui"
)

func newBoardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive garden board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, cleanup, err := a.openGarden(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := tui.RunBoard(ctx, g, cmd.OutOrStdout()); err != nil {
				return err
			}
			return g.Flush(ctx)
		},
	}

	return cmd
}
