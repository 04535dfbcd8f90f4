package garden

import (
	"fmt"

	"grimpo/internal/storage"
)

// Quantity returns the owned-but-unplaced count of id.
func (g *Garden) Quantity(id ItemID) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inventory[id]
}

// Inventory returns a copy of every non-zero inventory entry.
func (g *Garden) Inventory() map[ItemID]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[ItemID]int, len(g.inventory))
	for id, q := range g.inventory {
		out[id] = q
	}
	return out
}

// Purchase spends currency on one unit of id. The lock check comes first, so a
// locked item reports ErrItemLocked whatever the balance.
func (g *Garden) Purchase(id ItemID) error {
	item, ok := g.catalog.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lifetime < item.UnlockThreshold {
		return LockedError{Item: id, RequiredCompletions: item.UnlockThreshold, CurrentCompletions: g.lifetime}
	}
	if g.currency < item.Cost {
		return FundsError{Item: id, Cost: item.Cost, Balance: g.currency}
	}

	g.currency -= item.Cost
	g.inventory[id]++

	g.persist.Enqueue(storage.FieldCurrency, g.currency)
	g.saveInventoryLocked()
	g.publishLocked(Event{Kind: EventPurchased, ItemID: id})
	return nil
}

// Credit adds n units of id to the inventory. n <= 0 is a no-op.
func (g *Garden) Credit(id ItemID, n int) error {
	if _, ok := g.catalog.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if n <= 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.creditLocked(id, n)
	g.saveInventoryLocked()
	g.publishLocked(Event{Kind: EventCredited, ItemID: id})
	return nil
}

// Debit removes n units of id, failing with ErrNoneOwned if fewer are owned.
func (g *Garden) Debit(id ItemID, n int) error {
	if n <= 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.debitLocked(id, n); err != nil {
		return err
	}
	g.saveInventoryLocked()
	g.publishLocked(Event{Kind: EventDebited, ItemID: id})
	return nil
}

func (g *Garden) creditLocked(id ItemID, n int) {
	g.inventory[id] += n
}

func (g *Garden) debitLocked(id ItemID, n int) error {
	have := g.inventory[id]
	if have-n < 0 {
		return fmt.Errorf("%w: %s (have %d, need %d)", ErrNoneOwned, id, have, n)
	}
	if have == n {
		delete(g.inventory, id)
		return nil
	}
	g.inventory[id] = have - n
	return nil
}
