package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"grimpo/internal/garden"
)

// RunBoard runs the interactive garden board until the user quits or ctx ends.
func RunBoard(ctx context.Context, g *garden.Garden, out io.Writer) error {
	events := g.Notifier().Subscribe()
	defer g.Notifier().Unsubscribe(events)

	m := newBoardModel(ctx, g, events)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
