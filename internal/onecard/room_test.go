package onecard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	r := NewRoom("lobby", "admin")
	assert.Equal(t, "lobby", r.Name)
	assert.Equal(t, DefaultMaxPlayers, r.MaxPlayers)
	assert.Equal(t, []string{"admin"}, r.PlayerIDs)
	assert.False(t, r.Playing)
	assert.Nil(t, r.Game)
	assert.Equal(t, StateCreated, r.State())
}

func TestJoinUntilFull(t *testing.T) {
	r := NewRoom("lobby", "a")
	require.NoError(t, r.Join("b"))
	require.NoError(t, r.Join("c"))
	require.NoError(t, r.Join("d"))

	err := r.Join("e")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, []string{"a", "b", "c", "d"}, r.PlayerIDs)
}

func TestJoinTwiceIsNoop(t *testing.T) {
	r := NewRoom("lobby", "a")
	require.NoError(t, r.Join("b"))
	require.NoError(t, r.Join("b"))
	require.NoError(t, r.Join("a"))
	assert.Equal(t, []string{"a", "b"}, r.PlayerIDs)
}

func TestJoinPlayingRoom(t *testing.T) {
	r := NewRoom("lobby", "a")
	require.NoError(t, r.Join("b"))
	require.NoError(t, r.Start(seeded()))

	assert.ErrorIs(t, r.Join("c"), ErrRoomAlreadyPlaying)
	assert.NoError(t, r.Join("b"), "members may rejoin")
	assert.Equal(t, []string{"a", "b"}, r.PlayerIDs)
}

func TestJoinFullPlayingRoom(t *testing.T) {
	r := NewRoom("lobby", "a")
	for _, id := range []string{"b", "c", "d"} {
		require.NoError(t, r.Join(id))
	}
	require.NoError(t, r.Start(seeded()))

	assert.ErrorIs(t, r.Join("e"), ErrRoomFull)
	assert.Equal(t, []string{"a", "b", "c", "d"}, r.PlayerIDs)
	assert.True(t, r.Playing)
}

func TestStartNeedsTwoPlayers(t *testing.T) {
	r := NewRoom("lobby", "a")
	err := r.Start(seeded())
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.False(t, r.Playing)
	assert.Nil(t, r.Game)
}

func TestStartAndReset(t *testing.T) {
	r := NewRoom("lobby", "a")
	require.NoError(t, r.Join("b"))
	require.NoError(t, r.Start(seeded()))

	assert.True(t, r.Playing)
	require.NotNil(t, r.Game)
	assert.Equal(t, StatePlaying, r.State())
	assert.ElementsMatch(t, r.PlayerIDs, r.Game.Turns.Players())

	assert.ErrorIs(t, r.Start(seeded()), ErrRoomAlreadyPlaying)

	r.Reset()
	assert.False(t, r.Playing)
	assert.Nil(t, r.Game)
	assert.Nil(t, r.Views())
	assert.NoError(t, r.Join("c"))
}

func TestAsError(t *testing.T) {
	e, ok := AsError(ErrRoomFull)
	require.True(t, ok)
	assert.Equal(t, "R002", e.Code)

	_, ok = AsError(ErrEmptyPile)
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrRoomNotFound, Classify(fmt.Errorf("lookup: %w", ErrRoomNotFound)))
	assert.Equal(t, ErrInternal, Classify(ErrInsufficientCards))
}
