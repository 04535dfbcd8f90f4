package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"grimpo/internal/garden"
	"grimpo/internal/storage"
)

func newTestModel(t *testing.T, seed storage.GardenState) (boardModel, *garden.Garden) {
	t.Helper()
	repo := storage.NewMemoryRepo()
	seed.Key = "tui"
	repo.Seed(seed)
	g := garden.New(nil, repo, "tui")
	if err := g.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { _ = g.Close(context.Background()) })

	m := newBoardModel(context.Background(), g, nil)
	m = step(t, m, m.loadCmd()())
	return m, g
}

func step(t *testing.T, m boardModel, msg tea.Msg) boardModel {
	t.Helper()
	next, _ := m.Update(msg)
	bm, ok := next.(boardModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return bm
}

// press sends a key, runs the resulting command and reloads the snapshot.
func press(t *testing.T, m boardModel, key tea.KeyMsg) boardModel {
	t.Helper()
	next, cmd := m.Update(key)
	m = next.(boardModel)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			m = step(t, m, msg)
		}
	}
	return step(t, m, loadedMsg{state: m.g.Snapshot()})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBoardBuyAndPlaceFromCatalog(t *testing.T) {
	m, g := newTestModel(t, storage.GardenState{LifetimeCompletions: 1, Currency: 3})

	item, ok := m.selectedCatalogItem()
	if !ok || item.ID != "kelp" {
		t.Fatalf("first catalog row = %v (%v), want kelp", item.ID, ok)
	}

	m = press(t, m, runes("b"))
	if got := g.Quantity("kelp"); got != 1 {
		t.Fatalf("kelp owned = %d, want 1", got)
	}
	if !strings.Contains(m.lastLog, "Bought kelp") {
		t.Fatalf("lastLog = %q", m.lastLog)
	}

	m = press(t, m, runes("p"))
	if got := len(g.Placed()); got != 1 {
		t.Fatalf("placed = %d, want 1", got)
	}
	if got := g.Quantity("kelp"); got != 0 {
		t.Fatalf("kelp owned after place = %d, want 0", got)
	}
	if len(m.state.PlacedItems) != 1 {
		t.Fatalf("model did not pick up placement: %+v", m.state.PlacedItems)
	}
}

func TestBoardReportsDomainErrors(t *testing.T) {
	m, g := newTestModel(t, storage.GardenState{})

	m = press(t, m, runes("b"))
	if !strings.HasPrefix(m.lastLog, "Failed:") {
		t.Fatalf("lastLog = %q, want failure", m.lastLog)
	}
	if g.Currency() != 0 || len(g.Inventory()) != 0 {
		t.Fatalf("locked purchase changed state")
	}
}

func TestBoardEditsSelectedPlacement(t *testing.T) {
	m, g := newTestModel(t, storage.GardenState{
		LifetimeCompletions: 1,
		Inventory:           map[string]int{"kelp": 1},
	})
	m = press(t, m, runes("p"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != paneBoard {
		t.Fatalf("focus = %v, want board", m.focus)
	}

	before, ok := m.selectedPlaced()
	if !ok {
		t.Fatalf("no placement selected")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(t, m, runes("+"))
	m = press(t, m, runes("c"))

	after, ok := g.PlacedItem(before.ID)
	if !ok {
		t.Fatalf("placement %s vanished", before.ID)
	}
	if after.X != before.X+moveStep || after.Y != before.Y {
		t.Fatalf("position = (%v, %v), want (%v, %v)", after.X, after.Y, before.X+moveStep, before.Y)
	}
	if after.Scale != garden.DefaultScale+resizeStep {
		t.Fatalf("scale = %v, want %v", after.Scale, garden.DefaultScale+resizeStep)
	}
	if after.Color.String() != garden.NamedColors[0] {
		t.Fatalf("color = %q, want %q", after.Color.String(), garden.NamedColors[0])
	}

	m = press(t, m, runes("x"))
	if len(g.Placed()) != 0 || g.Quantity("kelp") != 1 {
		t.Fatalf("remove did not return item: placed=%d kelp=%d", len(g.Placed()), g.Quantity("kelp"))
	}
	if _, ok := m.selectedPlaced(); ok {
		t.Fatalf("selection still points at a removed item")
	}
}

func TestBoardAwardMarksNewUnlocks(t *testing.T) {
	m, g := newTestModel(t, storage.GardenState{})
	events := g.Notifier().Subscribe()
	defer g.Notifier().Unsubscribe(events)
	m.events = events

	m = press(t, m, runes("a"))
	if g.LifetimeCompletions() != 1 {
		t.Fatalf("lifetime = %d, want 1", g.LifetimeCompletions())
	}

	msg := m.waitEvent()()
	ev, ok := msg.(eventMsg)
	if !ok {
		t.Fatalf("waitEvent returned %T", msg)
	}
	m = step(t, m, ev)
	if !m.newly["kelp"] || !m.newly["pebble"] {
		t.Fatalf("newly = %v, want kelp and pebble", m.newly)
	}
	if !strings.Contains(m.View(), "NEW") {
		t.Fatalf("view does not badge new unlocks")
	}
}

func TestNextNamedColorCycles(t *testing.T) {
	names := garden.NamedColors
	if got := nextNamedColor(garden.Color{}); got != names[0] {
		t.Fatalf("from default = %q, want %q", got, names[0])
	}
	if got := nextNamedColor(garden.ParseColor(names[0])); got != names[1] {
		t.Fatalf("from %q = %q, want %q", names[0], got, names[1])
	}
	if got := nextNamedColor(garden.ParseColor(names[len(names)-1])); got != "" {
		t.Fatalf("from last = %q, want default", got)
	}
	if got := nextNamedColor(garden.ParseColor("#fff")); got != names[0] {
		t.Fatalf("from hex = %q, want %q", got, names[0])
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t, storage.GardenState{})
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}

func TestViewDrawsBothPanels(t *testing.T) {
	m, _ := newTestModel(t, storage.GardenState{LifetimeCompletions: 1})
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	if got := strings.Count(view, "╭"); got != 2 {
		t.Fatalf("view has %d panels, want 2:\n%s", got, view)
	}
	for _, want := range []string{"> Catalog", "Board (front first)", "Kelp Frond [1] x0"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if got := selectRow("kelp", false); got != "kelp" {
		t.Fatalf("unselected row = %q", got)
	}
	if got := selectRow("kelp", true); !strings.Contains(got, "kelp") {
		t.Fatalf("selected row = %q", got)
	}
}
