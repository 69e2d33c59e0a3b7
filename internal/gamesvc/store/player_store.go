package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/onecard-services/internal/gamesvc/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const PlayerCollection = "players"

type PlayerStore struct {
	coll *mongo.Collection
}

func NewPlayerStore(db *mongo.Database) *PlayerStore {
	return &PlayerStore{coll: db.Collection(PlayerCollection)}
}

func (s *PlayerStore) Get(ctx context.Context, id string) (*models.Player, error) {
	p := &models.Player{}
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return p, nil
}

// Save inserts a new player. The id is chosen by the caller.
func (s *PlayerStore) Save(ctx context.Context, player *models.Player) (*models.Player, error) {
	p := *player
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("could not create player: %w", err)
	}
	return &p, nil
}

func (s *PlayerStore) Update(ctx context.Context, player *models.Player) (*models.Player, error) {
	p := *player
	p.UpdatedAt = time.Now().UTC()

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"session_id": p.SessionID,
		"updated_at": p.UpdatedAt,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to update player %s: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return &p, nil
}
