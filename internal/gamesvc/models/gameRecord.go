package models

import "time"

// GameRecord is one row of game_records, written when a room starts a game.
type GameRecord struct {
	ID         int64     `json:"id"`          // Primary key
	RoomID     string    `json:"room_id"`     // Room that started the game
	RoomName   string    `json:"room_name"`   // Name at start time
	PlayerIDs  []string  `json:"player_ids"`  // Seats in join order
	OpenedCard string    `json:"opened_card"` // First card on the played pile
	StartedAt  time.Time `json:"started_at"`  // Timestamp
}
