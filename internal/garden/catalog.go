package garden

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ItemID identifies a catalog decoration.
type ItemID string

// CatalogItem is one purchasable decoration definition.
type CatalogItem struct {
	ID              ItemID `yaml:"id" json:"id"`
	Name            string `yaml:"name" json:"name"`
	UnlockThreshold int    `yaml:"unlock" json:"unlockThreshold"`
	Cost            int    `yaml:"cost" json:"cost"`
}

// Catalog is an immutable table of decorations.
type Catalog struct {
	items []CatalogItem
	byID  map[ItemID]CatalogItem
}

// NewCatalog validates items and builds a catalog from them.
func NewCatalog(items []CatalogItem) (*Catalog, error) {
	if len(items) == 0 {
		return nil, errors.New("catalog is empty")
	}
	c := &Catalog{byID: make(map[ItemID]CatalogItem, len(items))}
	for _, it := range items {
		it.ID = ItemID(strings.TrimSpace(string(it.ID)))
		if it.ID == "" {
			return nil, errors.New("catalog item id is required")
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog item %q", it.ID)
		}
		if it.UnlockThreshold < 0 {
			return nil, fmt.Errorf("catalog item %q: unlock threshold must be >= 0", it.ID)
		}
		if it.Cost < 0 {
			return nil, fmt.Errorf("catalog item %q: cost must be >= 0", it.ID)
		}
		if it.Name == "" {
			it.Name = string(it.ID)
		}
		c.byID[it.ID] = it
		c.items = append(c.items, it)
	}
	sort.SliceStable(c.items, func(i, j int) bool {
		a, b := c.items[i], c.items[j]
		if a.UnlockThreshold != b.UnlockThreshold {
			return a.UnlockThreshold < b.UnlockThreshold
		}
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		return a.ID < b.ID
	})
	return c, nil
}

// Get looks up a catalog item.
func (c *Catalog) Get(id ItemID) (CatalogItem, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Items returns every item ordered by threshold, then cost, then id.
func (c *Catalog) Items() []CatalogItem {
	return append([]CatalogItem(nil), c.items...)
}

func (c *Catalog) Len() int { return len(c.items) }

// ListUnlocked returns the ids whose threshold is at most lifetimeCompletions.
func (c *Catalog) ListUnlocked(lifetimeCompletions int) map[ItemID]struct{} {
	out := make(map[ItemID]struct{})
	for _, it := range c.items {
		if it.UnlockThreshold <= lifetimeCompletions {
			out[it.ID] = struct{}{}
		}
	}
	return out
}

// NextUnlock returns the cheapest-threshold item still locked at lifetimeCompletions.
func (c *Catalog) NextUnlock(lifetimeCompletions int) (CatalogItem, bool) {
	for _, it := range c.items {
		if it.UnlockThreshold > lifetimeCompletions {
			return it, true
		}
	}
	return CatalogItem{}, false
}

type catalogFile struct {
	Items []CatalogItem `yaml:"items"`
}

// LoadCatalog reads a YAML document of the form `items: [{id, name, unlock, cost}]`.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(f.Items)
}

// LoadCatalogFile is LoadCatalog over a file on disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

func builtinItems() []CatalogItem {
	return []CatalogItem{
		// Shallows
		{ID: "kelp", Name: "Kelp Frond", UnlockThreshold: 1, Cost: 1},
		{ID: "pebble", Name: "Smooth Pebble", UnlockThreshold: 1, Cost: 1},
		{ID: "sea_shell", Name: "Sea Shell", UnlockThreshold: 1, Cost: 2},
		{ID: "sand_dollar", Name: "Sand Dollar", UnlockThreshold: 1, Cost: 2},

		// Reef
		{ID: "coral_branch", Name: "Branch Coral", UnlockThreshold: 5, Cost: 3},
		{ID: "starfish", Name: "Starfish", UnlockThreshold: 5, Cost: 3},
		{ID: "sea_anemone", Name: "Sea Anemone", UnlockThreshold: 5, Cost: 4},

		// Twilight zone
		{ID: "brain_coral", Name: "Brain Coral", UnlockThreshold: 10, Cost: 5},
		{ID: "jellyfish", Name: "Moon Jellyfish", UnlockThreshold: 10, Cost: 5},
		{ID: "treasure_chest", Name: "Treasure Chest", UnlockThreshold: 10, Cost: 6},

		{ID: "sunken_anchor", Name: "Sunken Anchor", UnlockThreshold: 15, Cost: 7},
		{ID: "giant_clam", Name: "Giant Clam", UnlockThreshold: 15, Cost: 8},
		{ID: "seahorse", Name: "Seahorse", UnlockThreshold: 15, Cost: 8},

		// Midnight zone
		{ID: "anglerfish_lantern", Name: "Anglerfish Lantern", UnlockThreshold: 20, Cost: 10},
		{ID: "glow_mushroom", Name: "Bioluminescent Mushroom", UnlockThreshold: 20, Cost: 10},
		{ID: "shipwreck_mast", Name: "Shipwreck Mast", UnlockThreshold: 20, Cost: 12},

		// Abyss
		{ID: "abyssal_temple", Name: "Abyssal Temple", UnlockThreshold: 50, Cost: 25},
		{ID: "kraken_statue", Name: "Kraken Statue", UnlockThreshold: 50, Cost: 30},
		{ID: "leviathan_bones", Name: "Leviathan Skeleton", UnlockThreshold: 50, Cost: 40},
	}
}

// DefaultCatalog returns the compiled-in Abyssal Garden catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(builtinItems())
	if err != nil {
		panic(fmt.Sprintf("builtin catalog: %v", err))
	}
	return c
}
