package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/onecard-services/internal/gamesvc/models"
	"github.com/avvvet/onecard-services/internal/gamesvc/store"
	"github.com/avvvet/onecard-services/internal/onecard"
	log "github.com/sirupsen/logrus"
)

type PlayerStore interface {
	Get(ctx context.Context, id string) (*models.Player, error)
	Save(ctx context.Context, player *models.Player) (*models.Player, error)
	Update(ctx context.Context, player *models.Player) (*models.Player, error)
}

type PlayerService struct {
	players PlayerStore
}

func NewPlayerService(players PlayerStore) *PlayerService {
	return &PlayerService{players: players}
}

func (s *PlayerService) CreatePlayer(ctx context.Context, id string) (*models.Player, error) {
	p, err := s.players.Save(ctx, &models.Player{ID: id})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, onecard.ErrPlayerIDDuplicated
		}
		return nil, fmt.Errorf("create player %s: %w", id, err)
	}
	log.Infof("player %s created", id)
	return p, nil
}

// JoinApp binds an existing player to the session it connected with.
func (s *PlayerService) JoinApp(ctx context.Context, playerID, sessionID string) (*models.Player, error) {
	p, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, playerErr(playerID, err)
	}
	p.SessionID = sessionID
	p, err = s.players.Update(ctx, p)
	if err != nil {
		return nil, playerErr(playerID, err)
	}
	return p, nil
}

func playerErr(playerID string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return onecard.ErrPlayerNotFound
	}
	return fmt.Errorf("player %s: %w", playerID, err)
}
