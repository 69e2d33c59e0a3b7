package models

import "time"

// Player is an identity record in the player directory.
type Player struct {
	ID        string    `json:"id" bson:"_id"`
	SessionID string    `json:"sessionId,omitempty" bson:"session_id,omitempty"` // socket bound by join-app
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
