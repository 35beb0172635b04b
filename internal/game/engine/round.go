package engine

import (
	"fmt"

	"SamLoc/internal/game/rules"
	"SamLoc/internal/game/table"
)

// WhiteWinKind names the instant win found in a freshly dealt hand.
type WhiteWinKind string

const (
	WhiteWinFourTwos   WhiteWinKind = "FOUR_TWOS"
	WhiteWinStraight10 WhiteWinKind = "STRAIGHT_10"
	WhiteWinFivePairs  WhiteWinKind = "FIVE_PAIRS"
)

// StartResult reports how a round began.
type StartResult struct {
	WhiteWin bool
	WinnerID string
	Kind     WhiteWinKind
	Messages []string
}

// StartGame deals a new round to every seated player and opens the Sâm
// declaration window. A white win ends the round before any play.
func (r *Room) StartGame() (StartResult, error) {
	if r.InRound() {
		return StartResult{}, ErrAlreadyStarted
	}
	if len(r.players) < MinPlayers {
		return StartResult{}, ErrNeedTwoPlayers
	}

	ids := r.IDs()
	r.dealer.NewDeck()
	hands := r.dealer.Deal(ids, HandSize)
	return r.startRound(hands, r.dealer.Remaining()), nil
}

// startRound installs dealt hands and resets round state. Tests call it
// directly with fixed hands.
func (r *Room) startRound(hands map[string][]table.Card, stock []table.Card) StartResult {
	r.NewRound(false)
	r.discard = nil
	r.stock = stock

	for _, p := range r.players {
		h, dealt := hands[p.ID]
		r.hands[p.ID] = append([]table.Card{}, h...)
		r.playedAny[p.ID] = false
		if dealt {
			r.inRound[p.ID] = true
		}
	}

	r.phase = PhaseDeclareSam
	r.declare = declareState{
		Deadline: r.now().Add(r.declareWindow),
		Choices:  make(map[string]bool),
	}

	r.turn = 0
	if idx := r.index(r.lastWinnerID); idx >= 0 && r.inRound[r.lastWinnerID] {
		r.turn = idx
	} else if first := r.roundPlayers(); len(first) > 0 {
		r.turn = r.index(first[0])
	}

	res := StartResult{Messages: []string{"🃏 Dealt a new round. Declare Sâm within the window."}}

	for _, id := range r.roundPlayers() {
		kind, ok := whiteWin(r.hands[id])
		if !ok {
			continue
		}
		r.discard = append(r.discard, r.hands[id]...)
		r.hands[id] = []table.Card{}
		r.phase = PhaseRoundEnd
		r.lastWinnerID = id
		res.WhiteWin = true
		res.WinnerID = id
		res.Kind = kind
		res.Messages = append(res.Messages, fmt.Sprintf("⚡ %s wins white (%s)!", r.Name(id), kind))
		break
	}
	return res
}

func whiteWin(hand []table.Card) (WhiteWinKind, bool) {
	counts := make(map[table.Rank]int, len(hand))
	for _, c := range hand {
		counts[c.Rank]++
	}
	if counts[table.Two] == 4 {
		return WhiteWinFourTwos, true
	}
	if len(hand) == HandSize {
		if c, err := rules.Classify(hand); err == nil && c.Kind() == rules.Straight {
			return WhiteWinStraight10, true
		}
	}
	pairs := 0
	for _, n := range counts {
		if n == 2 {
			pairs++
		}
	}
	if pairs == 5 {
		return WhiteWinFivePairs, true
	}
	return "", false
}

// DeclareSam records a player's choice for the current window. The last call wins.
func (r *Room) DeclareSam(id string, flag bool) error {
	if r.phase != PhaseDeclareSam {
		return ErrNotDeclarePhase
	}
	if !r.inRound[id] {
		return ErrNotInRoom
	}
	r.declare.Choices[id] = flag
	return nil
}

// Choices returns the current declaration choices.
func (r *Room) Choices() map[string]bool {
	out := make(map[string]bool, len(r.declare.Choices))
	for id, v := range r.declare.Choices {
		out[id] = v
	}
	return out
}

// TickDeclarePhase closes the declaration window once its deadline has passed
// and reports whether the room changed. The first declarer in seat order wins
// the Sâm and takes the lead.
func (r *Room) TickDeclarePhase() bool {
	if r.phase != PhaseDeclareSam {
		return false
	}
	if r.now().Before(r.declare.Deadline) {
		return false
	}

	for _, id := range r.roundPlayers() {
		if r.declare.Choices[id] {
			r.sam.DeclaredBy = id
			r.sam.Active = true
			r.turn = r.index(id)
			break
		}
	}

	r.declare = declareState{Choices: make(map[string]bool)}
	r.phase = PhasePlaying
	return true
}

// SamDeclarer returns the active declarer, if any.
func (r *Room) SamDeclarer() (string, bool) {
	return r.sam.DeclaredBy, r.sam.Active
}
