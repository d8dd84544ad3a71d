package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when no session exists for an ID.
var ErrNotFound = errors.New("session not found")

// ErrConflict is returned by Save when the stored session has moved past the
// version the caller loaded. The caller must reload and retry or give up.
var ErrConflict = errors.New("session was modified concurrently")

// Store persists whole sessions. Save must be atomic over the full record:
// either every field of the new state is visible to subsequent loads, or none
// is. Implementations enforce optimistic concurrency via Session.Version.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Load(ctx context.Context, id uuid.UUID) (*Session, error)
	Save(ctx context.Context, s *Session) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Session, error)
}

// InvalidStateError indicates an operation was attempted against a session
// whose lifecycle state does not allow it.
type InvalidStateError struct {
	SessionID uuid.UUID
	Status    Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session %s is %s and accepts no further turns", e.SessionID, e.Status)
}
