package session

import (
	"context"
	"sync"
)

// MemoryStore is a thread-safe in-memory session store. Sessions are lost on
// restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]State
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]State),
	}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.sessions[chatID]
	if !ok {
		return Idle{}, nil
	}
	return st, nil
}

func (m *MemoryStore) Put(ctx context.Context, chatID int64, st State) error {
	if IsIdle(st) {
		return m.Clear(ctx, chatID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = st
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
