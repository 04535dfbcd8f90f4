package storage

import (
	"context"
	"sync"
)

// MemoryRepo keeps gardens in process memory. Failures can be injected for tests.
type MemoryRepo struct {
	mu      sync.Mutex
	states  map[string]*GardenState
	loadErr error
	saveErr error
	saves   map[Field]int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		states: map[string]*GardenState{},
		saves:  map[Field]int{},
	}
}

// Seed stores st under its key, replacing whatever was there.
func (r *MemoryRepo) Seed(st GardenState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[st.Key] = st.Clone()
}

// FailLoads makes LoadState return err until called again with nil.
func (r *MemoryRepo) FailLoads(err error) {
	r.mu.Lock()
	r.loadErr = err
	r.mu.Unlock()
}

// FailSaves makes SaveField return err until called again with nil.
func (r *MemoryRepo) FailSaves(err error) {
	r.mu.Lock()
	r.saveErr = err
	r.mu.Unlock()
}

// SaveCount reports how many successful saves hit field.
func (r *MemoryRepo) SaveCount(field Field) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves[field]
}

func (r *MemoryRepo) LoadState(ctx context.Context, key string) (*GardenState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	st, ok := r.states[key]
	if !ok {
		return nil, nil
	}
	return st.Clone(), nil
}

func (r *MemoryRepo) SaveField(ctx context.Context, key string, field Field, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	st, ok := r.states[key]
	if !ok {
		st = &GardenState{Key: key, Inventory: map[string]int{}}
	}
	next := st.Clone()
	if err := applyField(next, field, value); err != nil {
		return err
	}
	r.states[key] = next
	r.saves[field]++
	return nil
}
