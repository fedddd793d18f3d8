package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store using an in-memory slice.
// Intended for previews and testing — no database file required.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []Run
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, run *Run) error {
	fill(run)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *run
	stored.Decisions = append([]string(nil), run.Decisions...)
	s.runs = append(s.runs, stored)
	return nil
}

func (s *MemoryStore) ByOperation(_ context.Context, operationID string, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Run
	for _, r := range s.runs {
		if r.OperationID == operationID {
			matched = append(matched, r)
		}
	}
	return order(matched, limit), nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return order(append([]Run(nil), s.runs...), limit), nil
}

func order(runs []Run, limit int) []Run {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if n := clampLimit(limit); len(runs) > n {
		runs = runs[:n]
	}
	return runs
}
