package db

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/interview-coach/internal/session"
)

// MemoryStore implements session.Store in process memory with the same
// version compare-and-swap semantics as the PostgreSQL store. Used by tests
// and the offline practice CLI.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session.Session
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]*session.Session)}
}

// Create stores a new session at version 1.
func (m *MemoryStore) Create(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.Version = 1
	m.sessions[s.ID] = s.Clone()
	return nil
}

// Load returns a deep copy so callers cannot mutate stored state in place.
func (m *MemoryStore) Load(_ context.Context, id uuid.UUID) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return s.Clone(), nil
}

// Save replaces the stored session if the caller's version is current.
func (m *MemoryStore) Save(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.sessions[s.ID]
	if !ok {
		return session.ErrNotFound
	}
	if current.Version != s.Version {
		return session.ErrConflict
	}

	s.Version++
	m.sessions[s.ID] = s.Clone()
	return nil
}

// ListByUser returns deep copies of the user's sessions, newest first.
func (m *MemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*session.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s.Clone())
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartedAt.After(out[i].StartedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}
