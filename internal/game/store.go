package game

import (
	"context"
	"sync"
)

// SessionStore keeps session snapshots between turns.
// Load reports found=false for a player it has never seen.
type SessionStore interface {
	Load(ctx context.Context, playerID string) (SessionSnapshot, bool, error)
	Save(ctx context.Context, playerID string, snap SessionSnapshot) error
}

// MemorySessionStore keeps snapshots in process memory. State is lost on
// restart; used by the terminal client, tests and SESSION_BACKEND=memory.
type MemorySessionStore struct {
	mu sync.RWMutex
	m  map[string]SessionSnapshot
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		m: make(map[string]SessionSnapshot),
	}
}

func (s *MemorySessionStore) Load(_ context.Context, playerID string) (SessionSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.m[playerID]
	return snap, ok, nil
}

func (s *MemorySessionStore) Save(_ context.Context, playerID string, snap SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[playerID] = snap
	return nil
}
