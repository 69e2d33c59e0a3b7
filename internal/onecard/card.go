package onecard

import (
	"math/rand/v2"
	"strconv"
)

type Suit string

const (
	SuitClub    Suit = "CLUB"
	SuitDiamond Suit = "DIAMOND"
	SuitHeart   Suit = "HEART"
	SuitSpade   Suit = "SPADE"
	SuitJoker   Suit = "JOKER"
)

// Suits lists every suit, the joker suit last.
var Suits = []Suit{SuitClub, SuitDiamond, SuitHeart, SuitSpade, SuitJoker}

type Rank int

const (
	RankJoker Rank = iota
	RankAce
	RankTwo
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
)

var rankNames = [...]string{
	"JOKER", "ACE", "TWO", "THREE", "FOUR", "FIVE", "SIX",
	"SEVEN", "EIGHT", "NINE", "TEN", "JACK", "QUEEN", "KING",
}

func (r Rank) String() string {
	if r < RankJoker || r > RankKing {
		return "Rank(" + strconv.Itoa(int(r)) + ")"
	}
	return rankNames[r]
}

// Card is an immutable playing card. IDs are unique within a deck.
type Card struct {
	ID   int  `json:"id" bson:"id"`
	Suit Suit `json:"suit" bson:"suit"`
	Rank Rank `json:"rank" bson:"rank"`
}

func (c Card) IsJoker() bool {
	return c.Suit == SuitJoker
}

func (c Card) String() string {
	if c.IsJoker() {
		return "JOKER"
	}
	return c.Rank.String() + " of " + string(c.Suit)
}

// DeckSize is the number of cards in a canonical deck: 13 ranks for each
// standard suit plus a single joker.
const DeckSize = 4*13 + 1

// NewDeck builds the canonical deck in suit-major order. Card ids start at 1.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	id := 0
	for _, suit := range Suits {
		if suit == SuitJoker {
			continue
		}
		for rank := RankAce; rank <= RankKing; rank++ {
			id++
			deck = append(deck, Card{ID: id, Suit: suit, Rank: rank})
		}
	}
	id++
	deck = append(deck, Card{ID: id, Suit: SuitJoker, Rank: RankJoker})
	return deck
}

// Shuffler permutes n elements through swap. *rand.Rand from math/rand and
// math/rand/v2 both satisfy it; their Shuffle is an unbiased Fisher-Yates.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// DefaultShuffler draws from the randomly seeded global source.
var DefaultShuffler Shuffler = globalShuffler{}

// Shuffle permutes cards in place. A nil shuffler means DefaultShuffler.
func Shuffle(cards []Card, s Shuffler) {
	if s == nil {
		s = DefaultShuffler
	}
	s.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
