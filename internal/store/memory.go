package store

import (
	"context"
	"sync"

	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

// MemoryStore implements Store with an in-process copy of the snapshot. Used
// for testing and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu        sync.RWMutex
	snapshot  []model.Position
	saveCount int
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, positions []model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store copies to avoid external mutation.
	snap := make([]model.Position, len(positions))
	for i, p := range positions {
		snap[i] = p.Clone()
	}
	s.snapshot = snap
	s.saveCount++
	return nil
}

func (s *MemoryStore) LoadSnapshot(_ context.Context) ([]model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make([]model.Position, len(s.snapshot))
	for i, p := range s.snapshot {
		snap[i] = p.Clone()
	}
	return snap, nil
}

// SaveCount reports how many snapshots were written. Test hook.
func (s *MemoryStore) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveCount
}
