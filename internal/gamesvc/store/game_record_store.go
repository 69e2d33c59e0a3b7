package store

import (
	"context"
	"fmt"

	"github.com/avvvet/onecard-services/internal/gamesvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const gameRecordsSchema = `
	CREATE TABLE IF NOT EXISTS game_records (
		id          BIGSERIAL PRIMARY KEY,
		room_id     TEXT NOT NULL,
		room_name   TEXT NOT NULL,
		player_ids  TEXT[] NOT NULL,
		opened_card TEXT NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS game_records_room_id_idx ON game_records (room_id);
`

// GameRecordStore appends a row per started game to PostgreSQL.
type GameRecordStore struct {
	db *pgxpool.Pool
}

func NewGameRecordStore(db *pgxpool.Pool) *GameRecordStore {
	return &GameRecordStore{db: db}
}

func (s *GameRecordStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, gameRecordsSchema); err != nil {
		return fmt.Errorf("failed to create game_records: %w", err)
	}
	return nil
}

func (s *GameRecordStore) Record(ctx context.Context, rec *models.GameRecord) error {
	query := `
		INSERT INTO game_records (room_id, room_name, player_ids, opened_card, started_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRow(ctx, query,
		rec.RoomID,
		rec.RoomName,
		rec.PlayerIDs,
		rec.OpenedCard,
		rec.StartedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to record game for room %s: %w", rec.RoomID, err)
	}
	return nil
}

// ListByRoom returns the most recent games of a room, newest first.
func (s *GameRecordStore) ListByRoom(ctx context.Context, roomID string, limit int) ([]models.GameRecord, error) {
	query := `
		SELECT id, room_id, room_name, player_ids, opened_card, started_at
		FROM game_records
		WHERE room_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.GameRecord, error) {
		var rec models.GameRecord
		err := row.Scan(&rec.ID, &rec.RoomID, &rec.RoomName, &rec.PlayerIDs, &rec.OpenedCard, &rec.StartedAt)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan games: %w", err)
	}
	return records, nil
}
