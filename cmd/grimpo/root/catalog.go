package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"grimpo/internal/ui"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List decorations with their unlock thresholds and costs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, cleanup, err := a.openGarden(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			lifetime := g.LifetimeCompletions()
			unlocked := g.Catalog().ListUnlocked(lifetime)

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Catalog"))
			for _, it := range g.Catalog().Items() {
				_, ok := unlocked[it.ID]
				fmt.Fprintf(out, "- %s %s %s %s\n",
					ui.LockText(ok),
					ui.Key.Render(string(it.ID)),
					ui.Gold.Render(fmt.Sprintf("%s %d", ui.IconCoin, it.Cost)),
					ui.Muted.Render(fmt.Sprintf("(unlock at %d, owned %d)", it.UnlockThreshold, g.Quantity(it.ID))),
				)
			}
			return nil
		},
	}

	return cmd
}
