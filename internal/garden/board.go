package garden

import (
	"fmt"
	"math"
	"sort"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkPosition(x, y float64) error {
	if !finite(x) || !finite(y) {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidPosition, x, y)
	}
	return nil
}

// Place takes one unit of id out of the inventory and puts it on the board at (x, y).
// Non-finite coordinates are rejected before the inventory is touched.
func (g *Garden) Place(id ItemID, x, y float64) (PlacedItem, error) {
	if err := checkPosition(x, y); err != nil {
		return PlacedItem{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.debitLocked(id, 1); err != nil {
		return PlacedItem{}, err
	}
	item := &PlacedItem{
		ID:         g.newID(),
		ItemID:     id,
		X:          x,
		Y:          y,
		Scale:      DefaultScale,
		StackOrder: g.nextStackOrderLocked(),
	}
	g.placed[item.ID] = item

	g.saveInventoryLocked()
	g.savePlacedLocked()
	g.publishLocked(Event{Kind: EventPlaced, ItemID: id, PlacedID: item.ID})
	return *item, nil
}

// Move repositions a placed item and brings it to the front.
func (g *Garden) Move(placedID string, x, y float64) (PlacedItem, error) {
	if err := checkPosition(x, y); err != nil {
		return PlacedItem{}, err
	}
	return g.mutate(placedID, EventMoved, func(p *PlacedItem) {
		p.X = x
		p.Y = y
	})
}

// Resize stores scale clamped to [MinScale, MaxScale] and brings the item to the front.
func (g *Garden) Resize(placedID string, scale float64) (PlacedItem, error) {
	return g.mutate(placedID, EventResized, func(p *PlacedItem) {
		p.Scale = clampScale(scale)
	})
}

// Recolor sets the item's color; an invalid or empty color resets it to the default.
func (g *Garden) Recolor(placedID string, color string) (PlacedItem, error) {
	c := ParseColor(color)
	return g.mutate(placedID, EventRecolored, func(p *PlacedItem) {
		p.Color = c
	})
}

// Remove takes an item off the board and returns it to the inventory.
func (g *Garden) Remove(placedID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	item, ok := g.placed[placedID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, placedID)
	}
	delete(g.placed, placedID)
	g.creditLocked(item.ItemID, 1)

	g.saveInventoryLocked()
	g.savePlacedLocked()
	g.publishLocked(Event{Kind: EventRemoved, ItemID: item.ItemID, PlacedID: placedID})
	return nil
}

// Placed returns the board back to front.
func (g *Garden) Placed() []PlacedItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.placedLocked()
}

// PlacedItem returns one placed item by instance id.
func (g *Garden) PlacedItem(placedID string) (PlacedItem, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.placed[placedID]
	if !ok {
		return PlacedItem{}, false
	}
	return *p, true
}

func (g *Garden) mutate(placedID string, kind EventKind, fn func(p *PlacedItem)) (PlacedItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	item, ok := g.placed[placedID]
	if !ok {
		return PlacedItem{}, fmt.Errorf("%w: %s", ErrNotFound, placedID)
	}
	fn(item)
	item.StackOrder = g.nextStackOrderLocked()

	g.savePlacedLocked()
	g.publishLocked(Event{Kind: kind, ItemID: item.ItemID, PlacedID: placedID})
	return *item, nil
}

// nextStackOrderLocked returns the clock in milliseconds, nudged above the
// current top so the touched item always ends up in front.
func (g *Garden) nextStackOrderLocked() int64 {
	order := g.now().UnixMilli()
	if order <= g.topOrder {
		order = g.topOrder + 1
	}
	g.topOrder = order
	return order
}

func (g *Garden) placedLocked() []PlacedItem {
	out := make([]PlacedItem, 0, len(g.placed))
	for _, p := range g.placed {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StackOrder != out[j].StackOrder {
			return out[i].StackOrder < out[j].StackOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}
