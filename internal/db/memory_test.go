package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/session"
)

func newStoredSession(t *testing.T, store *MemoryStore) *session.Session {
	t.Helper()
	s := session.New(uuid.New(), "Acme", "senior", "Q1", 5, time.Now().UTC())
	require.NoError(t, store.Create(context.Background(), s))
	return s
}

func TestMemoryStoreLoadNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStoreSaveNotFound(t *testing.T) {
	store := NewMemoryStore()
	s := session.New(uuid.New(), "Acme", "senior", "Q1", 5, time.Now().UTC())
	assert.ErrorIs(t, store.Save(context.Background(), s), session.ErrNotFound)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	s := newStoredSession(t, store)

	loaded, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, int64(1), loaded.Version)
	assert.Len(t, loaded.Messages, 1)
}

func TestMemoryStoreSaveBumpsVersion(t *testing.T) {
	store := NewMemoryStore()
	s := newStoredSession(t, store)

	loaded, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	loaded.TotalTurns = 1
	require.NoError(t, store.Save(context.Background(), loaded))
	assert.Equal(t, int64(2), loaded.Version)

	reloaded, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.TotalTurns)
	assert.Equal(t, int64(2), reloaded.Version)
}

func TestMemoryStoreStaleSaveConflicts(t *testing.T) {
	store := NewMemoryStore()
	s := newStoredSession(t, store)

	first, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	second, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), first))
	assert.ErrorIs(t, store.Save(context.Background(), second), session.ErrConflict)

	// The losing save applied nothing.
	reloaded, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), reloaded.Version)
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	s := newStoredSession(t, store)

	loaded, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	loaded.Messages[0].Content = "mutated"

	reloaded, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q1", reloaded.Messages[0].Content)
}

func TestMemoryStoreListByUserNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	userID := uuid.New()
	older := session.New(userID, "Acme", "senior", "Q1", 5, time.Now().UTC().Add(-time.Hour))
	newer := session.New(userID, "Beta", "mid", "Q1", 5, time.Now().UTC())
	other := session.New(uuid.New(), "Gamma", "junior", "Q1", 5, time.Now().UTC())
	for _, s := range []*session.Session{older, newer, other} {
		require.NoError(t, store.Create(context.Background(), s))
	}

	got, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}
