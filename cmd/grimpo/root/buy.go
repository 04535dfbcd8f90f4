package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"grimpo/internal/garden"
	"grimpo/internal/ui"
)

func newBuyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy <item>",
		Short: "Spend shells on an unlocked decoration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := garden.ItemID(args[0])
			out := cmd.OutOrStdout()
			return a.withGarden(cmd.Context(), func(g *garden.Garden) error {
				if err := g.Purchase(id); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s bought %s (owned %d, %s %d left)\n", ui.IconBag, id, g.Quantity(id), ui.IconCoin, g.Currency())
				return nil
			})
		},
	}

	return cmd
}
