package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goboard/internal/apperr"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	m, err := NewManager(mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m, mr
}

func TestManager_CreateAndResolve(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	token, err := m.Create(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, mr.Exists("session:"+token))

	userID, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestManager_ResolveUnknownToken(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)
}

func TestManager_ExpiredTokenIsGone(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	token, err := m.Create(ctx, "alice")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)
}

func TestManager_ResolveRefreshesTTL(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	token, err := m.Create(ctx, "alice")
	require.NoError(t, err)

	// Touch the session just before it would expire; the refresh keeps
	// it alive past the original deadline.
	mr.FastForward(50 * time.Second)
	_, err = m.Resolve(ctx, token)
	require.NoError(t, err)

	mr.FastForward(50 * time.Second)
	userID, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestManager_Delete(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	token, err := m.Create(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, token))
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)

	// Deleting twice is harmless.
	assert.NoError(t, m.Delete(ctx, token))
}

func TestManager_TokensAreUnique(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		token, err := m.Create(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
