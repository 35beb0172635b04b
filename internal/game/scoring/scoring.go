package scoring

import "SamLoc/internal/game/table"

const (
	// SkunkPenalty is what every opponent owes an uncaught Sâm winner, and what a
	// caught Sâm declarer pays each opponent.
	SkunkPenalty = 20
	// NeverPlayedPenalty is added for a player who played no card all round (cóng).
	NeverPlayedPenalty = 10
	// TwoSurcharge is added per rank-2 card left in hand, on top of the card itself.
	TwoSurcharge = 2
)

// SamSnapshot is the Sâm tracker as seen at round end.
type SamSnapshot struct {
	DeclaredBy string
	Active     bool
	Failed     bool
}

// Bao1Snapshot is the Báo-1 tracker as seen at round end.
type Bao1Snapshot struct {
	Active     bool
	PlayerID   string
	Violated   bool
	OffenderID string
}

// Input is everything the scoring function needs about a finished round.
type Input struct {
	Players   []string // roster order
	Hands     map[string][]table.Card
	PlayedAny map[string]bool
	Sam       SamSnapshot
	Bao1      Bao1Snapshot
}

// Result holds per-player deltas for the round.
type Result struct {
	Delta    map[string]int
	WinnerID string
	Pot      int
	// Bao1Override is set when the whole pot was charged to the Báo-1 offender.
	Bao1Override bool
}

// Compute scores a finished round. It is pure.
func Compute(in Input) Result {
	res := Result{Delta: make(map[string]int, len(in.Players))}
	if len(in.Players) == 0 {
		return res
	}
	for _, id := range in.Players {
		res.Delta[id] = 0
	}

	for _, id := range in.Players {
		if len(in.Hands[id]) == 0 {
			res.WinnerID = id
			break
		}
	}
	if res.WinnerID == "" {
		res.WinnerID = in.Players[0]
	}

	samWin := in.Sam.Active && !in.Sam.Failed && in.Sam.DeclaredBy == res.WinnerID

	losses := make(map[string]int, len(in.Players))
	for _, id := range in.Players {
		if id == res.WinnerID {
			continue
		}
		loss := Penalty(in.Hands[id], in.PlayedAny[id])
		if samWin {
			loss = SkunkPenalty
		}
		losses[id] = loss
		res.Pot += loss
	}

	b := in.Bao1
	if b.Violated && b.OffenderID != "" && b.PlayerID == res.WinnerID {
		if _, seated := res.Delta[b.OffenderID]; seated {
			res.Delta[res.WinnerID] = res.Pot
			res.Delta[b.OffenderID] = -res.Pot
			res.Bao1Override = true
			return res
		}
	}

	for id, loss := range losses {
		res.Delta[id] -= loss
	}
	res.Delta[res.WinnerID] += res.Pot
	return res
}

// Penalty is a losing player's card penalty: one point per card, a surcharge per
// two, and a flat fee if they never played.
func Penalty(hand []table.Card, playedAny bool) int {
	loss := len(hand)
	for _, c := range hand {
		if c.Rank == table.Two {
			loss += TwoSurcharge
		}
	}
	if !playedAny {
		loss += NeverPlayedPenalty
	}
	return loss
}
