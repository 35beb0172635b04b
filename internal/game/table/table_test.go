package table

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullDeck(t *testing.T) {
	deck := FullDeck()
	require.Len(t, deck, 52)

	seen := make(map[string]bool)
	for _, c := range deck {
		assert.False(t, seen[c.ID()], "duplicate card %s", c)
		seen[c.ID()] = true
	}
	assert.Equal(t, "3♠", deck[0].ID())
	assert.Equal(t, "2♣", deck[51].ID())
}

func TestParseCard(t *testing.T) {
	c, err := ParseCard("10♥")
	require.NoError(t, err)
	assert.Equal(t, Card{Rank: Ten, Suit: Hearts}, c)

	_, err = ParseCard("1♥")
	assert.Error(t, err)
	_, err = ParseCard("Qx")
	assert.Error(t, err)
}

func TestRankOrder(t *testing.T) {
	assert.Less(t, int(Three), int(King))
	assert.Less(t, int(King), int(Ace))
	assert.Less(t, int(Ace), int(Two))
	assert.Equal(t, "?", Rank(42).String())
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal(MustParse("A♦")[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"r":"A","s":"♦","id":"A♦"}`, string(data))

	var back Card
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Card{Rank: Ace, Suit: Diamonds}, back)
}
