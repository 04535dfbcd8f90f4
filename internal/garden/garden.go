package garden

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grimpo/internal/storage"
)

// Repository is the storage collaborator a Garden loads from and saves to.
// LoadState returns nil, nil when nothing is stored under key.
type Repository interface {
	LoadState(ctx context.Context, key string) (*storage.GardenState, error)
	SaveField(ctx context.Context, key string, field storage.Field, value any) error
}

const (
	MinScale     = 0.5
	MaxScale     = 2.0
	DefaultScale = 1.0
)

// PlacedItem is one decoration instance on the board.
type PlacedItem struct {
	ID         string  `json:"id"`
	ItemID     ItemID  `json:"itemId"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Scale      float64 `json:"scale"`
	Color      Color   `json:"color"`
	StackOrder int64   `json:"stackOrder"`
}

// State is a point-in-time copy of a garden.
type State struct {
	LifetimeCompletions int            `json:"lifetimeCompletions"`
	Currency            int            `json:"currency"`
	Inventory           map[ItemID]int `json:"inventory"`
	PlacedItems         []PlacedItem   `json:"placedItems"`
	RewardedTaskIDs     []string       `json:"rewardedTaskIds"`
}

// Garden owns one player's counters, inventory and board. Reads are served from
// memory; writes are handed to a Persister and announced on the Notifier.
type Garden struct {
	catalog *Catalog
	repo    Repository
	key     string
	log     *zap.Logger
	persist *Persister
	events  *Notifier
	now     func() time.Time
	newID   func() string

	mu        sync.Mutex
	lifetime  int
	currency  int
	rewarded  map[string]struct{}
	inventory map[ItemID]int
	placed    map[string]*PlacedItem
	topOrder  int64
}

type options struct {
	log         *zap.Logger
	now         func() time.Time
	newID       func() string
	notifier    *Notifier
	persistOpts []PersisterOption
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock replaces time.Now, which seeds stack orders and event times.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the uuid generator used for placed item ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithNotifier shares an existing notifier instead of creating one.
func WithNotifier(n *Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func WithPersisterOptions(opts ...PersisterOption) Option {
	return func(o *options) { o.persistOpts = append(o.persistOpts, opts...) }
}

// New creates an empty garden for key. Call Load to pull stored state.
func New(catalog *Catalog, repo Repository, key string, opts ...Option) *Garden {
	o := options{
		log:   zap.NewNop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if o.notifier == nil {
		o.notifier = NewNotifier()
	}
	log := o.log.With(zap.String("key", key))
	persistOpts := append([]PersisterOption{WithPersistLogger(log)}, o.persistOpts...)

	g := &Garden{
		catalog: catalog,
		repo:    repo,
		key:     key,
		log:     log,
		persist: NewPersister(repo, key, persistOpts...),
		events:  o.notifier,
		now:     o.now,
		newID:   o.newID,
	}
	g.resetLocked()
	return g
}

func (g *Garden) resetLocked() {
	g.lifetime = 0
	g.currency = 0
	g.rewarded = map[string]struct{}{}
	g.inventory = map[ItemID]int{}
	g.placed = map[string]*PlacedItem{}
	g.topOrder = 0
}

// Load replaces in-memory state with what the repository holds. On failure the
// current state (zero values before the first successful load) is kept.
func (g *Garden) Load(ctx context.Context) error {
	st, err := g.repo.LoadState(ctx, g.key)
	if err != nil {
		g.log.Warn("garden load failed, keeping current state", zap.Error(err))
		return fmt.Errorf("load garden %q: %w", g.key, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
	if st != nil {
		g.applyStoredLocked(st)
	}
	g.log.Debug("garden loaded",
		zap.Int("lifetime", g.lifetime),
		zap.Int("currency", g.currency),
		zap.Int("placed", len(g.placed)))
	g.publishLocked(Event{Kind: EventLoaded})
	return nil
}

func (g *Garden) applyStoredLocked(st *storage.GardenState) {
	g.lifetime = max(0, st.LifetimeCompletions)
	g.currency = max(0, st.Currency)
	for _, id := range st.RewardedTaskIDs {
		if id != "" {
			g.rewarded[id] = struct{}{}
		}
	}
	for raw, qty := range st.Inventory {
		id := ItemID(raw)
		if _, ok := g.catalog.Get(id); !ok {
			g.log.Warn("dropping inventory for unknown item", zap.String("item", raw))
			continue
		}
		if qty > 0 {
			g.inventory[id] = qty
		}
	}
	for _, p := range st.PlacedItems {
		id := ItemID(p.ItemID)
		if _, ok := g.catalog.Get(id); !ok {
			g.log.Warn("dropping placement for unknown item", zap.String("item", p.ItemID), zap.String("placed", p.ID))
			continue
		}
		item := &PlacedItem{
			ID:         p.ID,
			ItemID:     id,
			X:          finiteOrZero(p.X),
			Y:          finiteOrZero(p.Y),
			Scale:      clampScale(p.Scale),
			Color:      ParseColor(p.Color),
			StackOrder: p.StackOrder,
		}
		if item.ID == "" {
			item.ID = g.newID()
		}
		g.placed[item.ID] = item
		if item.StackOrder > g.topOrder {
			g.topOrder = item.StackOrder
		}
	}
}

func (g *Garden) Key() string { return g.key }

func (g *Garden) Catalog() *Catalog { return g.catalog }

func (g *Garden) Notifier() *Notifier { return g.events }

// Flush waits for pending writes and returns any persist failures since the last Flush.
func (g *Garden) Flush(ctx context.Context) error {
	return g.persist.Flush(ctx)
}

// Close flushes and stops the background writer.
func (g *Garden) Close(ctx context.Context) error {
	return g.persist.Close(ctx)
}

// Snapshot returns a deep copy of the current state.
func (g *Garden) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	inv := make(map[ItemID]int, len(g.inventory))
	for id, q := range g.inventory {
		inv[id] = q
	}
	return State{
		LifetimeCompletions: g.lifetime,
		Currency:            g.currency,
		Inventory:           inv,
		PlacedItems:         g.placedLocked(),
		RewardedTaskIDs:     g.rewardedLocked(),
	}
}

// Unlocked lists the catalog items available at the current lifetime count.
func (g *Garden) Unlocked() []CatalogItem {
	g.mu.Lock()
	lifetime := g.lifetime
	g.mu.Unlock()

	var out []CatalogItem
	for _, it := range g.catalog.Items() {
		if it.UnlockThreshold <= lifetime {
			out = append(out, it)
		}
	}
	return out
}

func (g *Garden) publishLocked(ev Event) {
	ev.LifetimeCompletions = g.lifetime
	ev.Currency = g.currency
	if ev.At.IsZero() {
		ev.At = g.now().UTC()
	}
	g.events.Publish(ev)
}

func (g *Garden) saveCountersLocked() {
	g.persist.Enqueue(storage.FieldLifetimeCompletions, g.lifetime)
	g.persist.Enqueue(storage.FieldCurrency, g.currency)
}

func (g *Garden) saveInventoryLocked() {
	inv := make(map[string]int, len(g.inventory))
	for id, q := range g.inventory {
		inv[string(id)] = q
	}
	g.persist.Enqueue(storage.FieldInventory, inv)
}

func (g *Garden) savePlacedLocked() {
	placed := g.placedLocked()
	rows := make([]storage.Placement, 0, len(placed))
	for _, p := range placed {
		rows = append(rows, storage.Placement{
			ID:         p.ID,
			ItemID:     string(p.ItemID),
			X:          p.X,
			Y:          p.Y,
			Scale:      p.Scale,
			Color:      p.Color.String(),
			StackOrder: p.StackOrder,
		})
	}
	g.persist.Enqueue(storage.FieldPlacedItems, rows)
}

func (g *Garden) saveRewardedLocked() {
	g.persist.Enqueue(storage.FieldRewardedTaskIDs, g.rewardedLocked())
}

func (g *Garden) rewardedLocked() []string {
	ids := make([]string, 0, len(g.rewarded))
	for id := range g.rewarded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func finiteOrZero(v float64) float64 {
	if finite(v) {
		return v
	}
	return 0
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) {
		return DefaultScale
	}
	return math.Min(MaxScale, math.Max(MinScale, s))
}
