package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/onecard-services/internal/gamesvc/models"
	"github.com/avvvet/onecard-services/internal/onecard"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisRoomPrefix   = "onecard:room:"
	redisPlayerPrefix = "onecard:player:"
)

// RedisRoomStore keeps each room as a JSON document under its own key.
// Updates run inside WATCH so a concurrent writer aborts the transaction.
type RedisRoomStore struct {
	client *redis.Client
}

func NewRedisRoomStore(client *redis.Client) *RedisRoomStore {
	return &RedisRoomStore{client: client}
}

func (s *RedisRoomStore) Get(ctx context.Context, id string) (*onecard.Room, error) {
	doc, err := s.load(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	return fromDocument(doc), nil
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisRoomStore) load(ctx context.Context, c redisGetter, id string) (roomDocument, error) {
	var doc roomDocument
	raw, err := c.Get(ctx, redisRoomPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return doc, ErrNotFound
		}
		return doc, fmt.Errorf("failed to get room %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("corrupt room %s: %w", id, err)
	}
	return doc, nil
}

func (s *RedisRoomStore) Save(ctx context.Context, room *onecard.Room) (*onecard.Room, error) {
	doc := toDocument(room)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.Version = 1

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	ok, err := s.client.SetNX(ctx, redisRoomPrefix+doc.ID, payload, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}
	if !ok {
		return nil, ErrDuplicate
	}
	return fromDocument(doc), nil
}

func (s *RedisRoomStore) Update(ctx context.Context, room *onecard.Room) (*onecard.Room, error) {
	key := redisRoomPrefix + room.ID
	doc := toDocument(room)
	doc.Version = room.Version + 1
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := s.load(ctx, tx, room.ID)
		if err != nil {
			return err
		}
		if cur.Version != room.Version {
			return ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return fromDocument(doc), nil
	case errors.Is(err, redis.TxFailedErr):
		return nil, ErrVersionConflict
	default:
		return nil, err
	}
}

func (s *RedisRoomStore) Delete(ctx context.Context, room *onecard.Room) error {
	n, err := s.client.Del(ctx, redisRoomPrefix+room.ID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete room %s: %w", room.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count walks the room keys with SCAN and returns how many there are.
func (s *RedisRoomStore) Count(ctx context.Context) (int64, error) {
	var n int64
	iter := s.client.Scan(ctx, 0, redisRoomPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return n, nil
}

type RedisPlayerStore struct {
	client *redis.Client
}

func NewRedisPlayerStore(client *redis.Client) *RedisPlayerStore {
	return &RedisPlayerStore{client: client}
}

func (s *RedisPlayerStore) Get(ctx context.Context, id string) (*models.Player, error) {
	raw, err := s.client.Get(ctx, redisPlayerPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	p := &models.Player{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("corrupt player %s: %w", id, err)
	}
	return p, nil
}

func (s *RedisPlayerStore) Save(ctx context.Context, player *models.Player) (*models.Player, error) {
	p := *player
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	ok, err := s.client.SetNX(ctx, redisPlayerPrefix+p.ID, payload, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("could not create player: %w", err)
	}
	if !ok {
		return nil, ErrDuplicate
	}
	return &p, nil
}

func (s *RedisPlayerStore) Update(ctx context.Context, player *models.Player) (*models.Player, error) {
	p := *player
	p.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	// XX: only overwrite an existing player
	ok, err := s.client.SetXX(ctx, redisPlayerPrefix+p.ID, payload, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to update player %s: %w", p.ID, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}
