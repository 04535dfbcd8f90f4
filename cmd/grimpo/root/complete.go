package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"grimpo/internal/garden"
	"grimpo/internal/ui"
)

func newCompleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete [task-id]",
		Short: "Credit a completed task",
		Long:  "Credits one completion and one shell. A task id is rewarded at most once; without one every call counts.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := ""
			if len(args) == 1 {
				taskID = args[0]
			}
			out := cmd.OutOrStdout()
			return a.withGarden(cmd.Context(), func(g *garden.Garden) error {
				res := g.AwardCompletion(taskID)
				if res.Duplicate {
					fmt.Fprintln(out, ui.Warn.Render(fmt.Sprintf("%s task %q was already rewarded", ui.IconWarn, taskID)))
					return nil
				}
				fmt.Fprintln(out, ui.Good.Render(ui.IconDone+" completion credited"))
				fmt.Fprintln(out, ui.LabelValue("Lifetime completions", res.LifetimeCompletions))
				fmt.Fprintln(out, ui.LabelValue("Shells", res.Currency))
				for _, id := range res.NewlyUnlocked {
					fmt.Fprintf(out, "%s %s %s\n", ui.BadgeUnlocked, ui.IconUnlock, id)
				}
				return nil
			})
		},
	}

	return cmd
}
