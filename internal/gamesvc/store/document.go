package store

import (
	"errors"

	"github.com/avvvet/onecard-services/internal/onecard"
)

var (
	ErrNotFound        = errors.New("store: document not found")
	ErrVersionConflict = errors.New("store: document was modified concurrently")
	ErrDuplicate       = errors.New("store: document id already exists")
)

// roomDocument is the stored shape of a room. Piles and turn order keep their
// order; hands are stored as a list so player ids never become field names.
type roomDocument struct {
	ID         string        `bson:"_id" json:"id"`
	Name       string        `bson:"name" json:"name"`
	AdminID    string        `bson:"admin_id" json:"adminId"`
	MaxPlayers int           `bson:"max_players" json:"maxPlayers"`
	Playing    bool          `bson:"playing" json:"playing"`
	PlayerIDs  []string      `bson:"player_ids" json:"playerIds"`
	Game       *gameDocument `bson:"game,omitempty" json:"game,omitempty"`
	Version    int64         `bson:"version" json:"version"`
}

type gameDocument struct {
	DrawPile   []onecard.Card `bson:"draw_pile" json:"drawPile"`
	PlayedPile []onecard.Card `bson:"played_pile" json:"playedPile"`
	Hands      []handDocument `bson:"hands" json:"hands"`
	TurnOrder  []string       `bson:"turn_order" json:"turnOrder"`
	TurnDir    bool           `bson:"turn_dir" json:"turnDir"`
	CurTurn    string         `bson:"cur_turn" json:"curTurn"`
	NextTurn   string         `bson:"next_turn" json:"nextTurn"`
}

type handDocument struct {
	PlayerID string         `bson:"player_id" json:"playerId"`
	Cards    []onecard.Card `bson:"cards" json:"cards"`
}

func toDocument(r *onecard.Room) roomDocument {
	doc := roomDocument{
		ID:         r.ID,
		Name:       r.Name,
		AdminID:    r.AdminID,
		MaxPlayers: r.MaxPlayers,
		Playing:    r.Playing,
		PlayerIDs:  append([]string(nil), r.PlayerIDs...),
		Version:    r.Version,
	}
	if g := r.Game; g != nil {
		gd := &gameDocument{
			DrawPile:   g.DrawPile.Cards(),
			PlayedPile: g.PlayedPile.Cards(),
			TurnOrder:  g.Turns.Sequence(),
			TurnDir:    g.Turns.Forward(),
			CurTurn:    g.Turns.Current(),
			NextTurn:   g.Turns.Next(),
		}
		// hands follow seat order so documents compare stably
		for _, p := range r.PlayerIDs {
			if h, ok := g.Hands[p]; ok {
				gd.Hands = append(gd.Hands, handDocument{PlayerID: p, Cards: append([]onecard.Card(nil), h...)})
			}
		}
		doc.Game = gd
	}
	return doc
}

func fromDocument(doc roomDocument) *onecard.Room {
	r := &onecard.Room{
		ID:         doc.ID,
		Name:       doc.Name,
		AdminID:    doc.AdminID,
		MaxPlayers: doc.MaxPlayers,
		Playing:    doc.Playing,
		PlayerIDs:  append([]string(nil), doc.PlayerIDs...),
		Version:    doc.Version,
	}
	if gd := doc.Game; gd != nil {
		hands := make(map[string][]onecard.Card, len(gd.Hands))
		for _, h := range gd.Hands {
			hands[h.PlayerID] = h.Cards
		}
		turns := onecard.RestoreTurnOrder(gd.TurnOrder, gd.TurnDir, gd.CurTurn)
		r.Game = onecard.RestoreGame(gd.DrawPile, gd.PlayedPile, hands, turns)
	}
	return r
}
