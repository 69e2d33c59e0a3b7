package onecard

const (
	DefaultMaxPlayers = 4
	MinPlayers        = 2
)

type RoomState int

const (
	StateCreated RoomState = iota
	StatePlaying
)

func (s RoomState) String() string {
	if s == StatePlaying {
		return "playing"
	}
	return "created"
}

// Room is a game session: its members and, while playing, its game.
//
// Methods validate before they write, so a returned error leaves the room
// untouched.
type Room struct {
	ID         string
	Name       string
	AdminID    string
	MaxPlayers int
	Playing    bool
	PlayerIDs  []string
	Game       *GameState

	// Version is bumped by the store on every successful update.
	Version int64
}

// NewRoom returns an unsaved room with the admin already seated.
func NewRoom(name, adminID string) *Room {
	return &Room{
		Name:       name,
		AdminID:    adminID,
		MaxPlayers: DefaultMaxPlayers,
		PlayerIDs:  []string{adminID},
	}
}

func (r *Room) State() RoomState {
	if r.Playing {
		return StatePlaying
	}
	return StateCreated
}

func (r *Room) HasPlayer(id string) bool {
	for _, p := range r.PlayerIDs {
		if p == id {
			return true
		}
	}
	return false
}

// Join seats playerID. Joining twice is a no-op. A full room reports
// ErrRoomFull whether or not it is playing.
func (r *Room) Join(playerID string) error {
	if r.HasPlayer(playerID) {
		return nil
	}
	if len(r.PlayerIDs) >= r.MaxPlayers {
		return ErrRoomFull
	}
	if r.Playing {
		return ErrRoomAlreadyPlaying
	}
	r.PlayerIDs = append(r.PlayerIDs, playerID)
	return nil
}

// Start deals a new game to the seated players.
func (r *Room) Start(s Shuffler) error {
	if r.Playing {
		return ErrRoomAlreadyPlaying
	}
	if len(r.PlayerIDs) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	g, err := NewGame(r.PlayerIDs, s)
	if err != nil {
		return err
	}
	r.Game = g
	r.Playing = true
	return nil
}

// Reset drops the game and reopens the room to joins.
func (r *Room) Reset() {
	r.Game = nil
	r.Playing = false
}

// Views projects the running game for every seated player. It is nil when the
// room is not playing.
func (r *Room) Views() map[string]View {
	if r.Game == nil {
		return nil
	}
	return ProjectAll(r.Game, r.PlayerIDs)
}
