package store

import (
	"context"
	"sync"
	"time"

	"github.com/avvvet/onecard-services/internal/gamesvc/models"
	"github.com/avvvet/onecard-services/internal/onecard"
	"github.com/google/uuid"
)

// MemoryRoomStore keeps rooms in process. It is used by tests and by
// STORE_DRIVER=memory.
type MemoryRoomStore struct {
	mu    sync.RWMutex
	rooms map[string]roomDocument
}

func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{rooms: make(map[string]roomDocument)}
}

func (s *MemoryRoomStore) Get(ctx context.Context, id string) (*onecard.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return fromDocument(doc), nil
}

func (s *MemoryRoomStore) Save(ctx context.Context, room *onecard.Room) (*onecard.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := toDocument(room)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, ok := s.rooms[doc.ID]; ok {
		return nil, ErrDuplicate
	}
	doc.Version = 1
	s.rooms[doc.ID] = doc
	return fromDocument(doc), nil
}

func (s *MemoryRoomStore) Update(ctx context.Context, room *onecard.Room) (*onecard.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rooms[room.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if cur.Version != room.Version {
		return nil, ErrVersionConflict
	}
	doc := toDocument(room)
	doc.Version = room.Version + 1
	s.rooms[doc.ID] = doc
	return fromDocument(doc), nil
}

func (s *MemoryRoomStore) Delete(ctx context.Context, room *onecard.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; !ok {
		return ErrNotFound
	}
	delete(s.rooms, room.ID)
	return nil
}

// Count returns the number of stored rooms.
func (s *MemoryRoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

type MemoryPlayerStore struct {
	mu      sync.RWMutex
	players map[string]models.Player
}

func NewMemoryPlayerStore() *MemoryPlayerStore {
	return &MemoryPlayerStore{players: make(map[string]models.Player)}
}

func (s *MemoryPlayerStore) Get(ctx context.Context, id string) (*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryPlayerStore) Save(ctx context.Context, player *models.Player) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[player.ID]; ok {
		return nil, ErrDuplicate
	}
	p := *player
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.players[p.ID] = p
	return &p, nil
}

func (s *MemoryPlayerStore) Update(ctx context.Context, player *models.Player) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[player.ID]; !ok {
		return nil, ErrNotFound
	}
	p := *player
	p.UpdatedAt = time.Now().UTC()
	s.players[p.ID] = p
	return &p, nil
}
