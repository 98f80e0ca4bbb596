package kubeconfig

import "sync"

// Store holds the last snapshot seen by the watcher.
type Store struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewStore creates a store seeded with initial, which may be nil.
func NewStore(initial *Snapshot) *Store {
	return &Store{snapshot: initial}
}

// Load returns the current snapshot.
func (s *Store) Load() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Swap replaces the stored snapshot and returns the previous one.
func (s *Store) Swap(next *Snapshot) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snapshot
	s.snapshot = next
	return prev
}
