package onecard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectHidesOpponentHands(t *testing.T) {
	ids := []string{"a", "b", "c"}
	g, err := NewGame(ids, seeded())
	require.NoError(t, err)

	views := ProjectAll(g, ids)
	require.Len(t, views, 3)

	for viewer, v := range views {
		assert.ElementsMatch(t, g.Hands[viewer], v.MyHand)
		assert.Equal(t, map[string]int{"a": 5, "b": 5, "c": 5}, v.RemainingCards)

		raw, err := json.Marshal(v)
		require.NoError(t, err)
		var decoded View
		require.NoError(t, json.Unmarshal(raw, &decoded))
		for other, hand := range g.Hands {
			if other == viewer {
				continue
			}
			for _, c := range hand {
				assert.False(t, Hand(decoded.MyHand).Contains(c.ID),
					"view of %s leaks card %d of %s", viewer, c.ID, other)
			}
		}
	}
}

func TestProjectTurnFields(t *testing.T) {
	g, err := NewGame([]string{"a", "b", "c", "d"}, seeded())
	require.NoError(t, err)
	g.ReverseDirection()

	v := Project(g, "c")
	opened, _ := g.OpenedCard()
	require.NotNil(t, v.OpenedCard)
	assert.Equal(t, opened, *v.OpenedCard)
	assert.Equal(t, []string{"b", "c", "d"}, v.TurnOrder)
	assert.False(t, v.TurnDir)
	assert.Equal(t, "a", v.CurTurn)
	assert.Equal(t, "d", v.NextTurn)
}

func TestProjectDoesNotMutate(t *testing.T) {
	g, err := NewGame([]string{"a", "b"}, seeded())
	require.NoError(t, err)
	before := g.Cards()

	v := Project(g, "a")
	v.MyHand[0] = Card{ID: 999}
	v.TurnOrder[0] = "zzz"

	assert.ElementsMatch(t, before, g.Cards())
	assert.False(t, g.Hands["a"].Contains(999))
	assert.Equal(t, []string{"b"}, g.Turns.Sequence())
}
