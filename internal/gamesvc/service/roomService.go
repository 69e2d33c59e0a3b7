package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/onecard-services/internal/gamesvc/models"
	"github.com/avvvet/onecard-services/internal/gamesvc/store"
	"github.com/avvvet/onecard-services/internal/monitor"
	"github.com/avvvet/onecard-services/internal/onecard"
	log "github.com/sirupsen/logrus"
)

const DefaultMaxRetries = 3

// RoomStore is the persistence contract for rooms. Update must fail with
// store.ErrVersionConflict when the stored version differs from room.Version.
type RoomStore interface {
	Get(ctx context.Context, id string) (*onecard.Room, error)
	Save(ctx context.Context, room *onecard.Room) (*onecard.Room, error)
	Update(ctx context.Context, room *onecard.Room) (*onecard.Room, error)
	Delete(ctx context.Context, room *onecard.Room) error
}

type GameRecorder interface {
	Record(ctx context.Context, rec *models.GameRecord) error
}

type RoomOption func(*RoomService)

func WithShuffler(s onecard.Shuffler) RoomOption {
	return func(rs *RoomService) { rs.shuffler = s }
}

func WithRecorder(r GameRecorder) RoomOption {
	return func(rs *RoomService) { rs.recorder = r }
}

func WithMetrics(m *monitor.Metrics) RoomOption {
	return func(rs *RoomService) { rs.metrics = m }
}

// WithMaxRetries bounds how often a conflicting update is re-read and retried.
func WithMaxRetries(n int) RoomOption {
	return func(rs *RoomService) {
		if n >= 0 {
			rs.maxRetries = n
		}
	}
}

type RoomService struct {
	rooms      RoomStore
	recorder   GameRecorder
	shuffler   onecard.Shuffler
	metrics    *monitor.Metrics
	maxRetries int
	locks      *keyedMutex
}

func NewRoomService(rooms RoomStore, opts ...RoomOption) *RoomService {
	s := &RoomService{
		rooms:      rooms,
		shuffler:   onecard.DefaultShuffler,
		maxRetries: DefaultMaxRetries,
		locks:      newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RoomService) CreateRoom(ctx context.Context, name, adminID string) (*onecard.Room, error) {
	room, err := s.rooms.Save(ctx, onecard.NewRoom(name, adminID))
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	s.metrics.AddRooms(1)
	log.Infof("room %s created by %s", room.ID, adminID)
	return room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*onecard.Room, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, roomErr(roomID, err)
	}
	return room, nil
}

func (s *RoomService) JoinRoom(ctx context.Context, roomID, playerID string) (*onecard.Room, error) {
	return s.mutate(ctx, roomID, func(r *onecard.Room) (bool, error) {
		if r.HasPlayer(playerID) {
			return false, nil
		}
		return true, r.Join(playerID)
	})
}

func (s *RoomService) DeleteRoom(ctx context.Context, roomID string) (*onecard.Room, error) {
	unlock := s.locks.lock(roomID)
	defer unlock()

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, roomErr(roomID, err)
	}
	if err := s.rooms.Delete(ctx, room); err != nil {
		return nil, roomErr(roomID, err)
	}
	s.metrics.AddRooms(-1)
	log.Infof("room %s deleted", roomID)
	return room, nil
}

// StartGame deals a game in the room and returns every player's view of it.
func (s *RoomService) StartGame(ctx context.Context, roomID string) (*onecard.Room, map[string]onecard.View, error) {
	room, err := s.mutate(ctx, roomID, func(r *onecard.Room) (bool, error) {
		return true, r.Start(s.shuffler)
	})
	if err != nil {
		return nil, nil, err
	}
	s.metrics.IncGamesStarted()
	s.record(ctx, room)
	return room, room.Views(), nil
}

func (s *RoomService) ResetGame(ctx context.Context, roomID string) (*onecard.Room, error) {
	return s.mutate(ctx, roomID, func(r *onecard.Room) (bool, error) {
		if !r.Playing {
			return false, nil
		}
		r.Reset()
		return true, nil
	})
}

func (s *RoomService) record(ctx context.Context, room *onecard.Room) {
	if s.recorder == nil {
		return
	}
	rec := &models.GameRecord{
		RoomID:    room.ID,
		RoomName:  room.Name,
		PlayerIDs: room.PlayerIDs,
		StartedAt: time.Now().UTC(),
	}
	if c, ok := room.Game.OpenedCard(); ok {
		rec.OpenedCard = c.String()
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		log.Errorf("Error [GameRecorder.Record] room %s: %s", room.ID, err)
	}
}

// mutate runs fn against a fresh read of the room and writes the result back.
// fn reports whether it changed the room; an error from fn aborts before any
// write. A concurrent write from another process is retried on a new read.
func (s *RoomService) mutate(ctx context.Context, roomID string, fn func(*onecard.Room) (bool, error)) (*onecard.Room, error) {
	unlock := s.locks.lock(roomID)
	defer unlock()

	for attempt := 0; ; attempt++ {
		room, err := s.rooms.Get(ctx, roomID)
		if err != nil {
			return nil, roomErr(roomID, err)
		}
		changed, err := fn(room)
		if err != nil {
			return nil, err
		}
		if !changed {
			return room, nil
		}

		updated, err := s.rooms.Update(ctx, room)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) || attempt >= s.maxRetries {
			return nil, roomErr(roomID, err)
		}
		s.metrics.IncUpdateConflicts()
		log.Debugf("room %s changed concurrently, retry %d", roomID, attempt+1)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func roomErr(roomID string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return onecard.ErrRoomNotFound
	}
	return fmt.Errorf("room %s: %w", roomID, err)
}
