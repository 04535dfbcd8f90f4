package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grimpo/internal/garden"
	"grimpo/internal/ui"
)

type pane int

const (
	paneCatalog pane = iota
	paneBoard
)

const (
	moveStep   = 10.0
	resizeStep = 0.25
)

type boardModel struct {
	ctx    context.Context
	g      *garden.Garden
	events chan garden.Event

	width  int
	height int

	state    garden.State
	catalog  []garden.CatalogItem
	focus    pane
	selected map[pane]int
	// newly holds ids unlocked during this session, shown with a badge.
	newly map[garden.ItemID]bool

	lastLog string
	loading bool
}

type loadedMsg struct {
	state garden.State
}

type eventMsg struct {
	ev garden.Event
}

type actionMsg struct {
	log string
	err error
}

func newBoardModel(ctx context.Context, g *garden.Garden, events chan garden.Event) boardModel {
	return boardModel{
		ctx:      ctx,
		g:        g,
		events:   events,
		catalog:  g.Catalog().Items(),
		selected: map[pane]int{},
		newly:    map[garden.ItemID]bool{},
		loading:  true,
		lastLog:  "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitEvent())
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{state: m.g.Snapshot()}
	}
}

func (m boardModel) waitEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case ev, ok := <-m.events:
			if !ok {
				return nil
			}
			return eventMsg{ev: ev}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m boardModel) awardCmd() tea.Cmd {
	return func() tea.Msg {
		res := m.g.AwardCompletion("")
		log := fmt.Sprintf("Completion credited: %d total, %d shells", res.LifetimeCompletions, res.Currency)
		if len(res.NewlyUnlocked) > 0 {
			log += fmt.Sprintf(" (unlocked %d new)", len(res.NewlyUnlocked))
		}
		return actionMsg{log: log}
	}
}

func (m boardModel) buyCmd(id garden.ItemID) tea.Cmd {
	return func() tea.Msg {
		if err := m.g.Purchase(id); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("Bought %s.", id)}
	}
}

func (m boardModel) placeCmd(id garden.ItemID) tea.Cmd {
	// Stagger new placements so they do not stack exactly.
	offset := float64(len(m.state.PlacedItems)) * moveStep
	return func() tea.Msg {
		p, err := m.g.Place(id, offset, offset)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("Placed %s at (%.0f, %.0f).", id, p.X, p.Y)}
	}
}

func (m boardModel) placedCmd(verb string, fn func() (garden.PlacedItem, error)) tea.Cmd {
	return func() tea.Msg {
		p, err := fn()
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("%s %s: (%.0f, %.0f) x%.2f %s", verb, p.ItemID, p.X, p.Y, p.Scale, ui.ColorName(p.Color))}
	}
}

func (m boardModel) removeCmd(p garden.PlacedItem) tea.Cmd {
	return func() tea.Msg {
		if err := m.g.Remove(p.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("Returned %s to the bag.", p.ItemID)}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.state = msg.state
		m.clampSelection()
		return m, nil
	case eventMsg:
		for _, id := range msg.ev.NewlyUnlocked {
			m.newly[id] = true
		}
		return m, tea.Batch(m.loadCmd(), m.waitEvent())
	case actionMsg:
		if msg.err != nil {
			m.lastLog = "Failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = msg.log
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, m.loadCmd()
	case "tab":
		if m.focus == paneCatalog {
			m.focus = paneBoard
		} else {
			m.focus = paneCatalog
		}
		return m, nil
	case "k":
		if m.selected[m.focus] > 0 {
			m.selected[m.focus]--
		}
		return m, nil
	case "j":
		if m.selected[m.focus] < m.rowCount(m.focus)-1 {
			m.selected[m.focus]++
		}
		return m, nil
	case "a":
		return m, m.awardCmd()
	}

	if m.focus == paneCatalog {
		item, ok := m.selectedCatalogItem()
		if !ok {
			return m, nil
		}
		switch msg.String() {
		case "b", "enter":
			return m, m.buyCmd(item.ID)
		case "p":
			return m, m.placeCmd(item.ID)
		}
		return m, nil
	}

	p, ok := m.selectedPlaced()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "left":
		return m, m.placedCmd("Moved", func() (garden.PlacedItem, error) { return m.g.Move(p.ID, p.X-moveStep, p.Y) })
	case "right":
		return m, m.placedCmd("Moved", func() (garden.PlacedItem, error) { return m.g.Move(p.ID, p.X+moveStep, p.Y) })
	case "up":
		return m, m.placedCmd("Moved", func() (garden.PlacedItem, error) { return m.g.Move(p.ID, p.X, p.Y-moveStep) })
	case "down":
		return m, m.placedCmd("Moved", func() (garden.PlacedItem, error) { return m.g.Move(p.ID, p.X, p.Y+moveStep) })
	case "+", "=":
		return m, m.placedCmd("Resized", func() (garden.PlacedItem, error) { return m.g.Resize(p.ID, p.Scale+resizeStep) })
	case "-":
		return m, m.placedCmd("Resized", func() (garden.PlacedItem, error) { return m.g.Resize(p.ID, p.Scale-resizeStep) })
	case "c":
		next := nextNamedColor(p.Color)
		return m, m.placedCmd("Recolored", func() (garden.PlacedItem, error) { return m.g.Recolor(p.ID, next) })
	case "x", "delete":
		return m, m.removeCmd(p)
	}
	return m, nil
}

func (m boardModel) rowCount(p pane) int {
	if p == paneCatalog {
		return len(m.catalog)
	}
	return len(m.state.PlacedItems)
}

func (m *boardModel) clampSelection() {
	for _, p := range []pane{paneCatalog, paneBoard} {
		n := m.rowCount(p)
		if m.selected[p] >= n {
			m.selected[p] = n - 1
		}
		if m.selected[p] < 0 {
			m.selected[p] = 0
		}
	}
}

func (m boardModel) selectedCatalogItem() (garden.CatalogItem, bool) {
	i := m.selected[paneCatalog]
	if i < 0 || i >= len(m.catalog) {
		return garden.CatalogItem{}, false
	}
	return m.catalog[i], true
}

// selectedPlaced lists the board front to back, so row 0 is the topmost item.
func (m boardModel) selectedPlaced() (garden.PlacedItem, bool) {
	rows := m.boardRows()
	i := m.selected[paneBoard]
	if i < 0 || i >= len(rows) {
		return garden.PlacedItem{}, false
	}
	return rows[i], true
}

func (m boardModel) boardRows() []garden.PlacedItem {
	n := len(m.state.PlacedItems)
	rows := make([]garden.PlacedItem, n)
	for i, p := range m.state.PlacedItems {
		rows[n-1-i] = p
	}
	return rows
}

func (m boardModel) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	// Two panels side by side; the catalog keeps a fixed width.
	leftW := 44
	if m.width > 0 {
		leftW = max(24, min(leftW, m.width/2))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		ui.Panel.Width(leftW).Render(m.renderCatalog()),
		" ",
		ui.Panel.Render(m.renderBoard()),
	)

	return ui.Title.Render(header) + "\n" + body + "\n" + footer
}

func (m boardModel) renderHeader() string {
	if m.loading {
		return "Abyssal Garden | loading..."
	}
	line := fmt.Sprintf("Abyssal Garden | %s | Completions %d | Shells %d", m.g.Key(), m.state.LifetimeCompletions, m.state.Currency)
	next, ok := m.g.Catalog().NextUnlock(m.state.LifetimeCompletions)
	if !ok {
		return line + " | everything unlocked"
	}
	prev := 0
	for _, it := range m.catalog {
		if it.UnlockThreshold <= m.state.LifetimeCompletions && it.UnlockThreshold > prev {
			prev = it.UnlockThreshold
		}
	}
	bar := progressBar(m.state.LifetimeCompletions-prev, next.UnlockThreshold-prev, 20)
	return fmt.Sprintf("%s | next unlock at %d %s", line, next.UnlockThreshold, bar)
}

func (m boardModel) renderCatalog() string {
	out := []string{focusTitle("Catalog", m.focus == paneCatalog)}
	for i, it := range m.catalog {
		status := fmt.Sprintf("%d", it.Cost)
		if it.UnlockThreshold > m.state.LifetimeCompletions {
			status = fmt.Sprintf("locked@%d", it.UnlockThreshold)
		}
		badge := ""
		if m.newly[it.ID] {
			badge = " NEW"
		}
		owned := m.state.Inventory[it.ID]
		row := fmt.Sprintf("%s [%s] x%d%s", it.Name, status, owned, badge)
		out = append(out, selectRow(row, m.focus == paneCatalog && i == m.selected[paneCatalog]))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderBoard() string {
	out := []string{focusTitle("Board (front first)", m.focus == paneBoard)}
	rows := m.boardRows()
	if len(rows) == 0 {
		out = append(out, ui.Muted.Render("(nothing placed)"))
	}
	for i, p := range rows {
		row := fmt.Sprintf("%s (%.0f, %.0f) x%.2f %s", p.ItemID, p.X, p.Y, p.Scale, ui.ColorName(p.Color))
		out = append(out, ui.Swatch(p.Color)+" "+selectRow(row, m.focus == paneBoard && i == m.selected[paneBoard]))
	}
	out = append(out, "")
	out = append(out, ui.Muted.Render("Keys"))
	out = append(out, "- tab: switch pane, j/k: select")
	out = append(out, "- a: credit a completion")
	out = append(out, "- b: buy, p: place")
	out = append(out, "- arrows: move, +/-: resize")
	out = append(out, "- c: next color, x: remove")
	out = append(out, "- r: refresh, q: quit")
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func focusTitle(title string, focused bool) string {
	if focused {
		return ui.H2.Render("> " + title)
	}
	return ui.Muted.Render("  " + title)
}

func selectRow(row string, selected bool) string {
	if selected {
		return ui.SelectedRow.Render(row)
	}
	return row
}

// nextNamedColor cycles through the named colors, starting over after the last.
func nextNamedColor(c garden.Color) string {
	names := garden.NamedColors
	if c.Kind() != garden.ColorNamed {
		return names[0]
	}
	for i, n := range names {
		if n == c.String() {
			if i+1 < len(names) {
				return names[i+1]
			}
			return ""
		}
	}
	return names[0]
}

func progressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	ratio := float64(value) / float64(total)
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
