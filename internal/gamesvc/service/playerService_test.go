package service

import (
	"context"
	"testing"

	"github.com/avvvet/onecard-services/internal/gamesvc/store"
	"github.com/avvvet/onecard-services/internal/onecard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlayer(t *testing.T) {
	s := NewPlayerService(store.NewMemoryPlayerStore())
	ctx := context.Background()

	p, err := s.CreatePlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.ID)

	_, err = s.CreatePlayer(ctx, "alice")
	assert.ErrorIs(t, err, onecard.ErrPlayerIDDuplicated)
}

func TestJoinApp(t *testing.T) {
	players := store.NewMemoryPlayerStore()
	s := NewPlayerService(players)
	ctx := context.Background()

	_, err := s.JoinApp(ctx, "alice", "sock-1")
	assert.ErrorIs(t, err, onecard.ErrPlayerNotFound)

	_, err = s.CreatePlayer(ctx, "alice")
	require.NoError(t, err)

	p, err := s.JoinApp(ctx, "alice", "sock-1")
	require.NoError(t, err)
	assert.Equal(t, "sock-1", p.SessionID)

	p, err = s.JoinApp(ctx, "alice", "sock-2")
	require.NoError(t, err)
	assert.Equal(t, "sock-2", p.SessionID)

	stored, err := players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "sock-2", stored.SessionID)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.lock("a")
	unlockB := k.lock("b")
	assert.Equal(t, 2, k.size())

	unlockA()
	unlockB()
	assert.Zero(t, k.size())
}
