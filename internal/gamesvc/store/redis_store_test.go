package store

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/avvvet/onecard-services/internal/gamesvc/models"
	"github.com/avvvet/onecard-services/internal/onecard"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBeforeExec rewrites a key on the server between WATCH and EXEC of the
// next MULTI block, once armed.
type writeBeforeExec struct {
	armed atomic.Bool
	write func()
}

func (h *writeBeforeExec) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *writeBeforeExec) ProcessHook(next redis.ProcessHook) redis.ProcessHook { return next }

func (h *writeBeforeExec) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if len(cmds) > 0 && cmds[0].Name() == "multi" && h.armed.CompareAndSwap(true, false) {
			h.write()
		}
		return next(ctx, cmds)
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisRoomStoreRoundTrip(t *testing.T) {
	_, client := newRedis(t)
	s := NewRedisRoomStore(client)
	ctx := context.Background()

	room := playingRoom(t)
	saved, err := s.Save(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)

	got, err := s.Get(ctx, room.ID)
	require.NoError(t, err)
	assertSameRoom(t, room, got)
}

func TestRedisRoomStoreVersions(t *testing.T) {
	_, client := newRedis(t)
	s := NewRedisRoomStore(client)
	ctx := context.Background()

	room, err := s.Save(ctx, onecard.NewRoom("table", "alice"))
	require.NoError(t, err)
	require.NotEmpty(t, room.ID)

	stale, err := s.Get(ctx, room.ID)
	require.NoError(t, err)
	require.NoError(t, room.Join("bob"))
	updated, err := s.Update(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	require.NoError(t, stale.Join("carol"))
	_, err = s.Update(ctx, stale)
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, err := s.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, got.PlayerIDs)
	assert.Equal(t, int64(2), got.Version)
}

func TestRedisRoomStoreConcurrentWriteAbortsUpdate(t *testing.T) {
	mr, client := newRedis(t)
	hook := &writeBeforeExec{}
	client.AddHook(hook)
	s := NewRedisRoomStore(client)
	ctx := context.Background()

	room, err := s.Save(ctx, onecard.NewRoom("table", "alice"))
	require.NoError(t, err)

	hook.write = func() {
		require.NoError(t, mr.Set(redisRoomPrefix+room.ID, "rewritten"))
	}
	hook.armed.Store(true)

	require.NoError(t, room.Join("bob"))
	_, err = s.Update(ctx, room)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.False(t, hook.armed.Load())

	raw, err := mr.Get(redisRoomPrefix + room.ID)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", raw)
}

func TestRedisRoomStoreMissing(t *testing.T) {
	_, client := newRedis(t)
	s := NewRedisRoomStore(client)
	ctx := context.Background()

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	ghost := onecard.NewRoom("ghost", "alice")
	ghost.ID = "nope"
	_, err = s.Update(ctx, ghost)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, ghost), ErrNotFound)
}

func TestRedisRoomStoreDuplicateAndDelete(t *testing.T) {
	_, client := newRedis(t)
	s := NewRedisRoomStore(client)
	ctx := context.Background()

	room := onecard.NewRoom("table", "alice")
	room.ID = "room-1"
	_, err := s.Save(ctx, room)
	require.NoError(t, err)

	_, err = s.Save(ctx, room)
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, s.Delete(ctx, room))
	_, err = s.Get(ctx, room.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRoomStoreCount(t *testing.T) {
	mr, client := newRedis(t)
	s := NewRedisRoomStore(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Save(ctx, onecard.NewRoom("table", "alice"))
		require.NoError(t, err)
	}
	require.NoError(t, mr.Set(redisPlayerPrefix+"alice", "{}"))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRedisPlayerStore(t *testing.T) {
	_, client := newRedis(t)
	s := NewRedisPlayerStore(client)
	ctx := context.Background()

	_, err := s.Update(ctx, &models.Player{ID: "alice", SessionID: "s1"})
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := s.Save(ctx, &models.Player{ID: "alice"})
	require.NoError(t, err)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = s.Save(ctx, &models.Player{ID: "alice"})
	assert.ErrorIs(t, err, ErrDuplicate)

	p.SessionID = "s1"
	_, err = s.Update(ctx, p)
	require.NoError(t, err)

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)

	_, err = s.Get(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}
