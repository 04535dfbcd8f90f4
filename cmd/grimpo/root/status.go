package root

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"grimpo/internal/garden"
	"grimpo/internal/ui"
)

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show completions, shells, inventory and board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, cleanup, err := a.openGarden(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			st := g.Snapshot()

			fmt.Fprintln(out, ui.Heading(ui.IconGarden, "Abyssal Garden ("+g.Key()+")"))
			fmt.Fprintln(out, ui.LabelValue("Lifetime completions", st.LifetimeCompletions))
			fmt.Fprintln(out, ui.LabelValue("Shells", ui.Gold.Render(fmt.Sprintf("%s %d", ui.IconCoin, st.Currency))))
			if next, ok := g.Catalog().NextUnlock(st.LifetimeCompletions); ok {
				toGo := next.UnlockThreshold - st.LifetimeCompletions
				fmt.Fprintln(out, ui.LabelValue("Next unlock", fmt.Sprintf("%s at %d %s", next.Name, next.UnlockThreshold, ui.Muted.Render(fmt.Sprintf("(%d to go)", toGo)))))
			} else {
				fmt.Fprintln(out, ui.LabelValue("Next unlock", ui.Good.Render("everything unlocked")))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconBag+" Inventory"))
			if len(st.Inventory) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(empty)"))
			}
			ids := make([]garden.ItemID, 0, len(st.Inventory))
			for id := range st.Inventory {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			for _, id := range ids {
				fmt.Fprintf(out, "- %s x%d\n", id, st.Inventory[id])
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconWave+" Board"))
			if len(st.PlacedItems) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing placed)"))
			}
			for _, p := range st.PlacedItems {
				fmt.Fprintln(out, placedLine(p))
			}
			return nil
		},
	}

	return cmd
}

func placedLine(p garden.PlacedItem) string {
	return fmt.Sprintf("- %s %s %s (%.1f, %.1f) x%.2f %s",
		ui.Swatch(p.Color), p.ItemID, ui.Muted.Render(p.ID), p.X, p.Y, p.Scale, ui.ColorName(p.Color))
}
