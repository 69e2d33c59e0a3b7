package onecard

import "errors"

// Error is a user-facing failure with a stable machine-readable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrRoomNotFound       = &Error{Code: "R001", Message: "game room does not exist"}
	ErrRoomFull           = &Error{Code: "R002", Message: "game room is full"}
	ErrNotEnoughPlayers   = &Error{Code: "R003", Message: "not enough players to start the game"}
	ErrRoomAlreadyPlaying = &Error{Code: "R004", Message: "game room is already playing"}

	ErrPlayerNotFound     = &Error{Code: "P001", Message: "player id does not exist"}
	ErrPlayerIDDuplicated = &Error{Code: "P002", Message: "player id already exists"}

	ErrInternal   = &Error{Code: "C000", Message: "internal server error"}
	ErrBadRequest = &Error{Code: "C001", Message: "malformed request"}
)

// Contract violations. These are never reported to players as coded errors.
var (
	ErrEmptyPile         = errors.New("onecard: pile is empty")
	ErrInsufficientCards = errors.New("onecard: not enough cards to deal every hand")
)

// AsError extracts the coded error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Classify returns the coded error carried by err, or ErrInternal for
// anything uncoded.
func Classify(err error) *Error {
	if e, ok := AsError(err); ok {
		return e
	}
	return ErrInternal
}
