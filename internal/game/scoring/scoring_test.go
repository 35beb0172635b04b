package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"SamLoc/internal/game/table"
)

func sum(delta map[string]int) int {
	total := 0
	for _, d := range delta {
		total += d
	}
	return total
}

func TestComputeNormalRound(t *testing.T) {
	in := Input{
		Players: []string{"a", "b", "c", "d"},
		Hands: map[string][]table.Card{
			"a": table.MustParse("3♠", "4♠"),
			"b": {},
			"c": table.MustParse("2♠", "2♥", "9♦"),
			"d": table.MustParse("5♠", "6♠", "7♠", "8♠", "9♠", "10♠", "J♠", "Q♠", "K♠", "A♠"),
		},
		PlayedAny: map[string]bool{"a": true, "b": true, "c": true, "d": false},
	}

	res := Compute(in)

	assert.Equal(t, "b", res.WinnerID)
	assert.Equal(t, -2, res.Delta["a"])
	assert.Equal(t, -(3 + 2*2), res.Delta["c"])
	assert.Equal(t, -(10 + 10), res.Delta["d"], "never played adds the cóng fee")
	assert.Equal(t, 2+7+20, res.Delta["b"])
	assert.Equal(t, 29, res.Pot)
	assert.False(t, res.Bao1Override)
	assert.Zero(t, sum(res.Delta))
}

func TestComputeSamWinSkunksEveryone(t *testing.T) {
	in := Input{
		Players: []string{"a", "b", "c"},
		Hands: map[string][]table.Card{
			"a": table.MustParse("3♠"),
			"b": {},
			"c": table.MustParse("2♠", "2♥", "2♦", "9♦"),
		},
		PlayedAny: map[string]bool{"a": true, "b": true, "c": false},
		Sam:       SamSnapshot{DeclaredBy: "b", Active: true},
	}

	res := Compute(in)

	assert.Equal(t, -SkunkPenalty, res.Delta["a"])
	assert.Equal(t, -SkunkPenalty, res.Delta["c"])
	assert.Equal(t, 2*SkunkPenalty, res.Delta["b"])
	assert.Zero(t, sum(res.Delta))
}

func TestComputeFailedSamScoresNormally(t *testing.T) {
	in := Input{
		Players:   []string{"a", "b"},
		Hands:     map[string][]table.Card{"a": table.MustParse("3♠"), "b": {}},
		PlayedAny: map[string]bool{"a": true, "b": true},
		Sam:       SamSnapshot{DeclaredBy: "b", Active: true, Failed: true},
	}

	res := Compute(in)
	assert.Equal(t, -1, res.Delta["a"])
	assert.Equal(t, 1, res.Delta["b"])
}

func TestComputeBao1Override(t *testing.T) {
	in := Input{
		Players: []string{"a", "b", "c", "d"},
		Hands: map[string][]table.Card{
			"a": {},
			"b": table.MustParse("3♠", "4♠"),
			"c": table.MustParse("5♠"),
			"d": table.MustParse("2♣"),
		},
		PlayedAny: map[string]bool{"a": true, "b": true, "c": true, "d": true},
		Bao1:      Bao1Snapshot{Active: true, PlayerID: "a", Violated: true, OffenderID: "d"},
	}

	res := Compute(in)

	assert.True(t, res.Bao1Override)
	assert.Equal(t, 2+1+3, res.Pot)
	assert.Equal(t, 6, res.Delta["a"])
	assert.Equal(t, -6, res.Delta["d"])
	assert.Zero(t, res.Delta["b"])
	assert.Zero(t, res.Delta["c"])
}

func TestComputeBao1WithoutWinIsIgnored(t *testing.T) {
	in := Input{
		Players:   []string{"a", "b", "c"},
		Hands:     map[string][]table.Card{"a": table.MustParse("3♠"), "b": {}, "c": table.MustParse("5♠")},
		PlayedAny: map[string]bool{"a": true, "b": true, "c": true},
		Bao1:      Bao1Snapshot{Active: true, PlayerID: "a", Violated: true, OffenderID: "c"},
	}

	res := Compute(in)
	assert.False(t, res.Bao1Override)
	assert.Equal(t, -1, res.Delta["a"])
	assert.Equal(t, -1, res.Delta["c"])
	assert.Equal(t, 2, res.Delta["b"])
}

func TestComputeFallbackWinner(t *testing.T) {
	in := Input{
		Players:   []string{"a", "b"},
		Hands:     map[string][]table.Card{"a": table.MustParse("3♠"), "b": table.MustParse("4♠")},
		PlayedAny: map[string]bool{"a": true, "b": true},
	}
	res := Compute(in)
	assert.Equal(t, "a", res.WinnerID)
	assert.Zero(t, sum(res.Delta))

	assert.Empty(t, Compute(Input{}).Delta)
}

func TestPenalty(t *testing.T) {
	assert.Equal(t, 0, Penalty(nil, true))
	assert.Equal(t, 10, Penalty(nil, false))
	assert.Equal(t, 1+2, Penalty(table.MustParse("2♦"), true))
}
