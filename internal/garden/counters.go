package garden

import (
	"sort"

	"go.uber.org/zap"
)

// AwardResult reports the counters after an award and what it unlocked.
type AwardResult struct {
	LifetimeCompletions int      `json:"lifetimeCompletions"`
	Currency            int      `json:"currency"`
	NewlyUnlocked       []ItemID `json:"newlyUnlockedIds"`
	// Duplicate is set when taskID had already been rewarded.
	Duplicate bool `json:"duplicate"`
}

func (g *Garden) LifetimeCompletions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lifetime
}

func (g *Garden) Currency() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currency
}

// AwardCompletion credits one completion and one unit of currency. A non-empty
// taskID is credited at most once; an empty taskID is never deduplicated.
func (g *Garden) AwardCompletion(taskID string) AwardResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if taskID != "" {
		if _, seen := g.rewarded[taskID]; seen {
			return AwardResult{
				LifetimeCompletions: g.lifetime,
				Currency:            g.currency,
				NewlyUnlocked:       []ItemID{},
				Duplicate:           true,
			}
		}
		g.rewarded[taskID] = struct{}{}
	}

	before := g.catalog.ListUnlocked(g.lifetime)
	g.lifetime++
	g.currency++
	after := g.catalog.ListUnlocked(g.lifetime)

	newly := []ItemID{}
	for id := range after {
		if _, had := before[id]; !had {
			newly = append(newly, id)
		}
	}
	sort.Slice(newly, func(i, j int) bool { return newly[i] < newly[j] })

	g.saveCountersLocked()
	if taskID != "" {
		g.saveRewardedLocked()
	}
	if len(newly) > 0 {
		g.log.Info("items unlocked", zap.Int("lifetime", g.lifetime), zap.Any("items", newly))
	}
	g.publishLocked(Event{Kind: EventAwarded, NewlyUnlocked: newly})

	return AwardResult{
		LifetimeCompletions: g.lifetime,
		Currency:            g.currency,
		NewlyUnlocked:       newly,
	}
}
