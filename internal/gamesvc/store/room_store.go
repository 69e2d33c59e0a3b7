package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/onecard-services/internal/onecard"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const RoomCollection = "rooms"

// RoomStore persists rooms as MongoDB documents. Updates only apply when the
// stored version still matches the room's version.
type RoomStore struct {
	coll *mongo.Collection
}

func NewRoomStore(db *mongo.Database) *RoomStore {
	return &RoomStore{coll: db.Collection(RoomCollection)}
}

func (s *RoomStore) Get(ctx context.Context, id string) (*onecard.Room, error) {
	var doc roomDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room %s: %w", id, err)
	}
	return fromDocument(doc), nil
}

func (s *RoomStore) Save(ctx context.Context, room *onecard.Room) (*onecard.Room, error) {
	doc := toDocument(room)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.Version = 1

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to save room: %w", err)
	}
	return fromDocument(doc), nil
}

func (s *RoomStore) Update(ctx context.Context, room *onecard.Room) (*onecard.Room, error) {
	doc := toDocument(room)
	doc.Version = room.Version + 1

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": room.ID, "version": room.Version}, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to update room %s: %w", room.ID, err)
	}
	if res.MatchedCount == 0 {
		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": room.ID})
		if err != nil {
			return nil, fmt.Errorf("failed to check room %s: %w", room.ID, err)
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrVersionConflict
	}
	return fromDocument(doc), nil
}

func (s *RoomStore) Delete(ctx context.Context, room *onecard.Room) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": room.ID})
	if err != nil {
		return fmt.Errorf("failed to delete room %s: %w", room.ID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored rooms.
func (s *RoomStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}
