package onecard

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	ids := make(map[int]bool)
	jokers := 0
	perSuit := make(map[Suit]int)
	for _, c := range deck {
		assert.False(t, ids[c.ID], "duplicate card id %d", c.ID)
		ids[c.ID] = true
		perSuit[c.Suit]++
		if c.IsJoker() {
			jokers++
			assert.Equal(t, RankJoker, c.Rank)
		} else {
			assert.NotEqual(t, RankJoker, c.Rank)
		}
	}

	assert.Equal(t, 1, jokers)
	for _, s := range []Suit{SuitClub, SuitDiamond, SuitHeart, SuitSpade} {
		assert.Equal(t, 13, perSuit[s], "suit %s", s)
	}
	assert.Equal(t, 1, deck[0].ID)
	assert.Equal(t, DeckSize, deck[len(deck)-1].ID)
}

func TestShuffleIsDeterministicWithSeed(t *testing.T) {
	a := NewDeck()
	b := NewDeck()
	Shuffle(a, rand.New(rand.NewPCG(7, 11)))
	Shuffle(b, rand.New(rand.NewPCG(7, 11)))
	assert.Equal(t, a, b)
	assert.NotEqual(t, NewDeck(), a)
	assert.ElementsMatch(t, NewDeck(), a)
}

func TestShufflePositionsAreUniform(t *testing.T) {
	// Every card should land in position 0 roughly 1/53 of the time.
	const rounds = 53 * 400
	rng := rand.New(rand.NewPCG(1, 2))
	counts := make(map[int]int)
	for i := 0; i < rounds; i++ {
		deck := NewDeck()
		Shuffle(deck, rng)
		counts[deck[0].ID]++
	}
	require.Len(t, counts, DeckSize)
	for id, n := range counts {
		assert.InDelta(t, 400, n, 120, "card %d", id)
	}
}

func TestRankString(t *testing.T) {
	assert.Equal(t, "JOKER", RankJoker.String())
	assert.Equal(t, "ACE", RankAce.String())
	assert.Equal(t, "KING", RankKing.String())
	assert.Equal(t, "Rank(42)", Rank(42).String())
	assert.Equal(t, "QUEEN of HEART", Card{Suit: SuitHeart, Rank: RankQueen}.String())
}
