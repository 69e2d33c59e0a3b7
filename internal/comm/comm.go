package comm

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/avvvet/onecard-services/internal/onecard"
)

// NATS subjects shared by the game and socket services.
const (
	GameServiceSubject = "onecard.game.service"
	GameServiceQueue   = "onecard-game"

	RoomTopicPrefix   = "onecard.topic.rooms."
	PlayerQueuePrefix = "onecard.queue.players."
)

// Message types. A reply carries the request type with ResponseSuffix.
const (
	TypeCreateRoom   = "create-room"
	TypeJoinRoom     = "join-room"
	TypeDeleteRoom   = "delete-room"
	TypeStartGame    = "start-game"
	TypeResetGame    = "reset-game"
	TypeGetRoom      = "get-room"
	TypeCreatePlayer = "create-player"
	TypeJoinApp      = "join-app"

	TypeGameInfo = "game-info"
	TypeError    = "error"

	ResponseSuffix = "-response"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "join-room", "start-game"
	Data     json.RawMessage `json:"data,omitempty"`
	SocketId string          `json:"socketid,omitempty"`
	Error    *ErrorResponse  `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateRoomRequest struct {
	Name    string `json:"name"`
	AdminID string `json:"adminId"`
}

type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// RoomRequest addresses an existing room (delete, start, reset, get).
type RoomRequest struct {
	RoomID string `json:"roomId"`
}

type RoomResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	AdminID    string   `json:"adminId"`
	MaxPlayers int      `json:"maxPlayers"`
	Playing    bool     `json:"playing"`
	PlayerIDs  []string `json:"playerIds"`
}

type StartGameResponse struct {
	RoomID  string   `json:"roomId"`
	Players []string `json:"players"`
}

// GameInfo is the private per-player view pushed when a game starts.
type GameInfo = onecard.View

type CreatePlayerRequest struct {
	ID string `json:"id"`
}

type PlayerResponse struct {
	ID string `json:"id"`
}

type JoinAppRequest struct {
	PlayerID  string `json:"playerId"`
	SessionID string `json:"sessionId"`
}

type JoinAppResponse struct {
	PlayerID  string `json:"playerId"`
	SessionID string `json:"sessionId"`
}

func NewRoomResponse(r *onecard.Room) RoomResponse {
	return RoomResponse{ID: r.ID, Name: r.Name}
}

func NewRoomInfo(r *onecard.Room) RoomInfo {
	return RoomInfo{
		ID:         r.ID,
		Name:       r.Name,
		AdminID:    r.AdminID,
		MaxPlayers: r.MaxPlayers,
		Playing:    r.Playing,
		PlayerIDs:  append([]string(nil), r.PlayerIDs...),
	}
}

// NewMessage wraps v as the data of a typed envelope.
func NewMessage(msgType string, v any, socketId string) (*WSMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &WSMessage{Type: msgType, Data: data, SocketId: socketId}, nil
}

// NewErrorMessage reports e under msgType.
func NewErrorMessage(msgType string, e *onecard.Error, socketId string) *WSMessage {
	return &WSMessage{
		Type:     msgType,
		SocketId: socketId,
		Error:    &ErrorResponse{Code: e.Code, Message: e.Message},
	}
}

func RoomTopic(roomID string) string {
	return RoomTopicPrefix + roomID
}

// PlayerQueue is the private subject of a player. Player ids are chosen by
// users, so they are base64url encoded to stay a single subject token.
func PlayerQueue(playerID string) string {
	return PlayerQueuePrefix + base64.RawURLEncoding.EncodeToString([]byte(playerID))
}

// ParsePlayerQueue reverses PlayerQueue.
func ParsePlayerQueue(subject string) (string, bool) {
	token, ok := strings.CutPrefix(subject, PlayerQueuePrefix)
	if !ok {
		return "", false
	}
	id, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", false
	}
	return string(id), true
}

func ParseRoomTopic(subject string) (string, bool) {
	id, ok := strings.CutPrefix(subject, RoomTopicPrefix)
	return id, ok && id != ""
}
