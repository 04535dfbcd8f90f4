package root

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"grimpo/internal/garden"
	"grimpo/internal/ui"
)

func parseNumber(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number", name)
	}
	return v, nil
}

func parseXY(xs, ys string) (float64, float64, error) {
	x, err := parseNumber("x", xs)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseNumber("y", ys)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func newPlaceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place <item> <x> <y>",
		Short: "Put an owned decoration on the board",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parseXY(args[1], args[2])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return a.withGarden(cmd.Context(), func(g *garden.Garden) error {
				p, err := g.Place(garden.ItemID(args[0]), x, y)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.IconPin+" placed "+p.ID)
				fmt.Fprintln(out, placedLine(p))
				return nil
			})
		},
	}

	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <placed-id> <x> <y>",
		Short: "Move a placed decoration and bring it to the front",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parseXY(args[1], args[2])
			if err != nil {
				return err
			}
			return a.editPlaced(cmd, func(g *garden.Garden) (garden.PlacedItem, error) {
				return g.Move(args[0], x, y)
			})
		},
	}

	return cmd
}

func newResizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resize <placed-id> <scale>",
		Short: fmt.Sprintf("Scale a placed decoration (clamped to %.1f..%.1f)", garden.MinScale, garden.MaxScale),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scale, err := parseNumber("scale", args[1])
			if err != nil {
				return err
			}
			return a.editPlaced(cmd, func(g *garden.Garden) (garden.PlacedItem, error) {
				return g.Resize(args[0], scale)
			})
		},
	}

	return cmd
}

func newRecolorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recolor <placed-id> [color]",
		Short: "Tint a placed decoration; omit the color to reset it",
		Long:  "Accepts #rgb, #rrggbb or a named color. Anything else resets the decoration to its default rendering.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			color := ""
			if len(args) == 2 {
				color = args[1]
			}
			return a.editPlaced(cmd, func(g *garden.Garden) (garden.PlacedItem, error) {
				return g.Recolor(args[0], color)
			})
		},
	}

	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <placed-id>",
		Short: "Take a decoration off the board and return it to the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return a.withGarden(cmd.Context(), func(g *garden.Garden) error {
				p, ok := g.PlacedItem(args[0])
				if !ok {
					return fmt.Errorf("%s: %w", args[0], garden.ErrNotFound)
				}
				if err := g.Remove(p.ID); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s removed %s, %s now owned x%d\n", ui.IconTrash, p.ID, p.ItemID, g.Quantity(p.ItemID))
				return nil
			})
		},
	}

	return cmd
}

func (a *app) editPlaced(cmd *cobra.Command, fn func(g *garden.Garden) (garden.PlacedItem, error)) error {
	out := cmd.OutOrStdout()
	return a.withGarden(cmd.Context(), func(g *garden.Garden) error {
		p, err := fn(g)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, placedLine(p))
		return nil
	})
}
