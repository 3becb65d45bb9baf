package session

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory. Useful for tests and
// for deployments that deliberately forget sessions on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	snap Snapshot
	set  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	m.snap = snap
	m.set = true
	return nil
}

func (m *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.set {
		return Snapshot{}, ErrSnapshotNotFound
	}

	snap := m.snap
	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	return snap, nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap = Snapshot{}
	m.set = false
	return nil
}
