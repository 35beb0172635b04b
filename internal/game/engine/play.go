package engine

import (
	"errors"
	"fmt"

	"SamLoc/internal/game/rules"
	"SamLoc/internal/game/scoring"
	"SamLoc/internal/game/table"
)

// PlayResult describes the outcome of an accepted play.
type PlayResult struct {
	Win      bool
	WinnerID string

	SamCaught bool
	LoserID   string
	CatcherID string

	CutBonus int
	Messages []string
}

// Pass gives up the current trick. The player sits out until the trick clears.
func (r *Room) Pass(id string) error {
	if r.phase != PhasePlaying {
		return ErrNotPlaying
	}
	if !r.inRound[id] {
		return ErrNotInRoom
	}
	if r.TurnID() != id {
		return ErrNotYourTurn
	}
	if r.trick.Combo == nil {
		return ErrCannotPassOnEmpty
	}

	r.passed[id] = true
	r.advanceTurn()
	r.settleTrick()
	return nil
}

// Play puts cards from the player's hand on the table.
func (r *Room) Play(id string, cardIDs []string) (PlayResult, error) {
	if r.phase != PhasePlaying {
		return PlayResult{}, ErrNotPlaying
	}
	if !r.inRound[id] {
		return PlayResult{}, ErrNotInRoom
	}
	if r.TurnID() != id {
		return PlayResult{}, ErrNotYourTurn
	}
	if r.passed[id] {
		return PlayResult{}, ErrYouPassedThisTrick
	}

	chosen, rest, err := pick(r.hands[id], cardIDs)
	if err != nil {
		return PlayResult{}, err
	}
	combo, err := rules.Classify(chosen)
	if err != nil {
		if errors.Is(err, rules.ErrInvalidCombo) {
			return PlayResult{}, err
		}
		return PlayResult{}, fmt.Errorf("%w: %w", ErrInvalidCombo, err)
	}
	prev := r.trick.Combo
	if !rules.CanBeat(prev, combo) {
		return PlayResult{}, ErrCannotBeatTable
	}

	var res PlayResult
	name := r.Name(id)

	// Only the watched player's next single is judged.
	if r.bao1.Active && id != r.bao1.PlayerID && id == r.bao1.WatchedID && combo.Kind() == rules.Single {
		r.bao1.WatchedID = ""
		if chosen[0].Rank < highestRank(r.hands[id]) {
			r.bao1.Violated = true
			r.bao1.OffenderID = id
			res.Messages = append(res.Messages,
				fmt.Sprintf("⚠️ %s did not play their highest card against Báo 1!", name))
		}
	}

	victim := r.trick.HolderID
	if bonus, ok := rules.IsCutTwo(prev, combo); ok && victim != "" && victim != id {
		r.points[victim] -= bonus
		r.points[id] += bonus
		res.CutBonus = bonus
		res.Messages = append(res.Messages,
			fmt.Sprintf("🎯 %s cut the two of %s! (+%d)", name, r.Name(victim), bonus))
	}

	if r.sam.Active && !r.sam.Failed && prev != nil && victim == r.sam.DeclaredBy && id != victim {
		r.sam.Failed = true
		res.Messages = append(res.Messages, r.applySamPenalty()...)
		r.phase = PhaseRoundEnd
		r.settled = true
		r.trick = Trick{Cards: chosen, Combo: &combo, HolderID: id}
		res.SamCaught = true
		res.LoserID = victim
		res.CatcherID = id
		res.Messages = append(res.Messages, fmt.Sprintf("🏁 Round over, Sâm caught by %s.", name))
		return res, nil
	}

	r.playedAny[id] = true
	r.hands[id] = rest
	r.discard = append(r.discard, chosen...)
	preceding := r.lastPlayerID
	r.lastPlayerID = id
	r.trick.Cards = chosen
	r.trick.Combo = &combo
	r.trick.HolderID = id

	switch len(rest) {
	case 1:
		r.bao1 = bao1State{Active: true, PlayerID: id}
		if preceding != id {
			r.bao1.WatchedID = preceding
		}
		res.Messages = append(res.Messages, fmt.Sprintf("📢 %s: Báo 1!", name))
	case 0:
		r.phase = PhaseRoundEnd
		r.lastWinnerID = id
		if r.sam.Active && !r.sam.Failed && r.sam.DeclaredBy == id && !r.sam.RewardApplied {
			r.sam.RewardApplied = true
			res.Messages = append(res.Messages, fmt.Sprintf("🔥 %s wins the Sâm!", name))
		}
		res.Win = true
		res.WinnerID = id
		return res, nil
	}

	r.advanceTurn()
	r.settleTrick()
	return res, nil
}

// pick splits hand into the requested cards and the remainder. Every id must
// be held and appear once.
func pick(hand []table.Card, ids []string) (chosen, rest []table.Card, err error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if want[id] {
			return nil, nil, ErrCardNotInHand
		}
		want[id] = true
	}
	for _, c := range hand {
		if want[c.ID()] {
			chosen = append(chosen, c)
		} else {
			rest = append(rest, c)
		}
	}
	if len(chosen) != len(ids) {
		return nil, nil, ErrCardNotInHand
	}
	if rest == nil {
		rest = []table.Card{}
	}
	return chosen, rest, nil
}

func highestRank(hand []table.Card) table.Rank {
	best := table.Three
	for _, c := range hand {
		if c.Rank > best {
			best = c.Rank
		}
	}
	return best
}

// applySamPenalty charges a caught declarer the skunk penalty once per opponent.
func (r *Room) applySamPenalty() []string {
	if !r.sam.Active || r.sam.PenaltyApplied || r.sam.DeclaredBy == "" {
		return nil
	}
	declarer := r.sam.DeclaredBy
	opponents := 0
	for _, id := range r.roundPlayers() {
		if id == declarer {
			continue
		}
		r.points[id] += scoring.SkunkPenalty
		opponents++
	}
	r.points[declarer] -= scoring.SkunkPenalty * opponents
	r.sam.PenaltyApplied = true
	return []string{fmt.Sprintf("💥 Sâm caught: %s pays %d to everyone.", r.Name(declarer), scoring.SkunkPenalty)}
}

// FinishAndScore applies end-of-round scoring to the points ledger. It runs at
// most once per round and never after a caught Sâm, which settles itself.
func (r *Room) FinishAndScore() (scoring.Result, error) {
	if r.phase != PhaseRoundEnd {
		return scoring.Result{}, ErrRoundNotOver
	}
	if r.settled {
		return scoring.Result{}, ErrAlreadyScored
	}

	players := r.roundPlayers()
	hands := make(map[string][]table.Card, len(players))
	for _, id := range players {
		hands[id] = r.hands[id]
	}
	res := scoring.Compute(scoring.Input{
		Players:   players,
		Hands:     hands,
		PlayedAny: r.playedAny,
		Sam: scoring.SamSnapshot{
			DeclaredBy: r.sam.DeclaredBy,
			Active:     r.sam.Active,
			Failed:     r.sam.Failed,
		},
		Bao1: scoring.Bao1Snapshot{
			Active:     r.bao1.Active,
			PlayerID:   r.bao1.PlayerID,
			Violated:   r.bao1.Violated,
			OffenderID: r.bao1.OffenderID,
		},
	})
	for id, d := range res.Delta {
		r.points[id] += d
	}
	r.settled = true
	if res.WinnerID != "" {
		r.lastWinnerID = res.WinnerID
	}
	return res, nil
}
