package onecard

import (
	"fmt"
	"sort"
)

// HandSize is the number of cards dealt to each player at start.
const HandSize = 5

// MaxDealtPlayers is the largest table a single deck can deal.
const MaxDealtPlayers = (DeckSize - 1) / HandSize

// Hand is the set of cards a player holds. Order carries no meaning.
type Hand []Card

func (h Hand) Contains(id int) bool {
	for _, c := range h {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Sorted copies h ordered by card id.
func (h Hand) Sorted() Hand {
	out := append(Hand(nil), h...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GameState is the play state of a room once started.
type GameState struct {
	DrawPile   *Pile
	PlayedPile *Pile
	Hands      map[string]Hand
	Turns      *TurnOrder
}

// NewGame shuffles a fresh deck, opens one card onto the played pile and
// deals HandSize cards to every player in join order.
func NewGame(players []string, s Shuffler) (*GameState, error) {
	turns, err := NewTurnOrder(players)
	if err != nil {
		return nil, err
	}
	if len(players)*HandSize+1 > DeckSize {
		return nil, fmt.Errorf("deal %d players: %w", len(players), ErrInsufficientCards)
	}

	deck := NewDeck()
	Shuffle(deck, s)

	g := &GameState{
		DrawPile:   NewPile(deck...),
		PlayedPile: NewPile(),
		Hands:      make(map[string]Hand, len(players)),
		Turns:      turns,
	}

	opened, err := g.DrawPile.Draw()
	if err != nil {
		return nil, err
	}
	g.PlayedPile.Put(opened)

	for _, p := range players {
		hand := make(Hand, 0, HandSize)
		for i := 0; i < HandSize; i++ {
			c, err := g.DrawPile.Draw()
			if err != nil {
				return nil, fmt.Errorf("deal to %s: %w", p, err)
			}
			hand = append(hand, c)
		}
		g.Hands[p] = hand
	}
	return g, nil
}

// RestoreGame rebuilds a game from its stored parts.
func RestoreGame(draw, played []Card, hands map[string][]Card, turns *TurnOrder) *GameState {
	g := &GameState{
		DrawPile:   NewPile(draw...),
		PlayedPile: NewPile(played...),
		Hands:      make(map[string]Hand, len(hands)),
		Turns:      turns,
	}
	for p, h := range hands {
		g.Hands[p] = append(Hand(nil), h...)
	}
	return g
}

// OpenedCard is the top of the played pile.
func (g *GameState) OpenedCard() (Card, bool) {
	return g.PlayedPile.Top()
}

func (g *GameState) AdvanceTurn() string {
	return g.Turns.Advance()
}

func (g *GameState) ReverseDirection() {
	g.Turns.Reverse()
}

// Cards lists every card in the game: draw pile, played pile, then hands.
func (g *GameState) Cards() []Card {
	out := append(g.DrawPile.Cards(), g.PlayedPile.Cards()...)
	for _, h := range g.Hands {
		out = append(out, h...)
	}
	return out
}
