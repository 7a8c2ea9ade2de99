package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipe-api/internal/domain"
)

func setupSessionStore(t *testing.T) *SessionStore {
	t.Helper()
	s, err := OpenSessionStore(SessionStoreOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newSession(id, userID, hash string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: hash,
		CreatedAt:        now,
		LastSeenAt:       now,
		ExpiresAt:        now.Add(24 * time.Hour),
		UserAgent:        "curl/8.0",
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	s := setupSessionStore(t)
	ctx := context.Background()

	session := newSession("s1", "user-1", "hash-1")
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "hash-1", got.RefreshTokenHash)
	assert.Equal(t, "curl/8.0", got.UserAgent)

	byToken, err := s.GetSessionByRefreshToken(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "s1", byToken.ID)
}

func TestSessionStore_CreateDuplicate(t *testing.T) {
	s := setupSessionStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newSession("s1", "user-1", "hash-1")))
	err := s.CreateSession(ctx, newSession("s1", "user-1", "hash-2"))
	assert.ErrorContains(t, err, "already exists")
}

func TestSessionStore_CreateExpired(t *testing.T) {
	s := setupSessionStore(t)

	session := newSession("s1", "user-1", "hash-1")
	session.ExpiresAt = time.Now().Add(-time.Minute)

	assert.ErrorIs(t, s.CreateSession(context.Background(), session), ErrSessionExpired)
}

func TestSessionStore_NotFound(t *testing.T) {
	s := setupSessionStore(t)
	ctx := context.Background()

	_, err := s.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.GetSessionByRefreshToken(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_ExpiredByClock(t *testing.T) {
	s := setupSessionStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newSession("s1", "user-1", "hash-1")))

	s.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err := s.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionStore_RotateToken(t *testing.T) {
	s := setupSessionStore(t)
	ctx := context.Background()

	session := newSession("s1", "user-1", "hash-1")
	require.NoError(t, s.CreateSession(ctx, session))

	session.RefreshTokenHash = "hash-2"
	session.ExpiresAt = time.Now().Add(48 * time.Hour)
	require.NoError(t, s.UpdateSession(ctx, session))

	_, err := s.GetSessionByRefreshToken(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	got, err := s.GetSessionByRefreshToken(ctx, "hash-2")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
}

func TestSessionStore_UpdateMissing(t *testing.T) {
	s := setupSessionStore(t)
	err := s.UpdateSession(context.Background(), newSession("nope", "user-1", "hash"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	s := setupSessionStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newSession("s1", "user-1", "hash-1")))
	require.NoError(t, s.DeleteSession(ctx, "s1"))

	_, err := s.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.GetSessionByRefreshToken(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, s.DeleteSession(ctx, "s1"))
}

func TestSessionStore_UserSessions(t *testing.T) {
	s := setupSessionStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newSession("a", "user-1", "h-a")))
	require.NoError(t, s.CreateSession(ctx, newSession("b", "user-1", "h-b")))
	require.NoError(t, s.CreateSession(ctx, newSession("c", "user-2", "h-c")))

	sessions, err := s.ListUserSessions(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	n, err := s.DeleteUserSessions(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sessions, err = s.ListUserSessions(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = s.GetSession(ctx, "c")
	assert.NoError(t, err)
}

func TestSessionStore_PingAndGC(t *testing.T) {
	s, err := OpenSessionStore(SessionStoreOptions{InMemory: true})
	require.NoError(t, err)

	assert.NoError(t, s.Ping(context.Background()))

	n, err := s.RunGC(0.5)
	assert.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
}
