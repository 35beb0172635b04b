package rules

import (
	"encoding/json"
	"errors"
	"sort"

	"SamLoc/internal/game/table"
)

// Kind is the type of a card combination.
type Kind int

const (
	Single Kind = iota + 1
	Pair
	Triple
	Quad
	Straight
)

var kindNames = map[Kind]string{
	Single:   "SINGLE",
	Pair:     "PAIR",
	Triple:   "TRIPLE",
	Quad:     "QUAD",
	Straight: "STRAIGHT",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return ""
}

var (
	ErrEmpty           = errors.New("EMPTY")
	ErrInvalidSet      = errors.New("INVALID_SET")
	ErrKA2NotAllowed   = errors.New("KA2_NOT_ALLOWED")
	ErrInvalidStraight = errors.New("INVALID_STRAIGHT")
	ErrInvalidCombo    = errors.New("INVALID_COMBO")
)

// Combo is a classified combination. The zero value is not a valid combination;
// values are only produced by Classify.
type Combo struct {
	kind   Kind
	rank   table.Rank
	length int
}

func (c Combo) Kind() Kind { return c.kind }

// Rank is the representative rank used for ordering. For a straight it is the
// top card of the sequence in whichever order accepted it.
func (c Combo) Rank() table.Rank { return c.rank }

// Len is the number of cards in the combination.
func (c Combo) Len() int { return c.length }

func (c Combo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Rank string `json:"rank"`
		Len  int    `json:"len"`
	}{c.kind.String(), c.rank.String(), c.length})
}

// rankOrder maps a rank onto a position in a total order used for straights.
type rankOrder func(table.Rank) int

// primaryOrder: 3,4,...,K,A,2.
func primaryOrder(r table.Rank) int { return int(r) }

// aceLowOrder: A,2,3,...,K. Allows A-2-3 and 2-3-4.
func aceLowOrder(r table.Rank) int { return (int(r) + 2) % table.NumRanks }

var straightOrders = []rankOrder{primaryOrder, aceLowOrder}

// Classify maps a set of cards to a combination or a rejection reason.
func Classify(cards []table.Card) (Combo, error) {
	n := len(cards)
	if n == 0 {
		return Combo{}, ErrEmpty
	}
	if n == 1 {
		return Combo{kind: Single, rank: cards[0].Rank, length: 1}, nil
	}

	counts := make(map[table.Rank]int, n)
	for _, c := range cards {
		counts[c.Rank]++
	}

	if len(counts) == 1 {
		r := cards[0].Rank
		switch n {
		case 2:
			return Combo{kind: Pair, rank: r, length: 2}, nil
		case 3:
			return Combo{kind: Triple, rank: r, length: 3}, nil
		case 4:
			return Combo{kind: Quad, rank: r, length: 4}, nil
		}
		return Combo{}, ErrInvalidSet
	}

	if n < 3 {
		return Combo{}, ErrInvalidCombo
	}

	// K-A-2 never forms a straight, whichever order would accept it.
	if counts[table.King] > 0 && counts[table.Ace] > 0 && counts[table.Two] > 0 {
		return Combo{}, ErrKA2NotAllowed
	}

	if len(counts) != n {
		return Combo{}, ErrInvalidStraight
	}

	ranks := make([]table.Rank, 0, n)
	for r := range counts {
		ranks = append(ranks, r)
	}
	for _, order := range straightOrders {
		if top, ok := consecutive(ranks, order); ok {
			return Combo{kind: Straight, rank: top, length: n}, nil
		}
	}
	return Combo{}, ErrInvalidStraight
}

// consecutive reports whether distinct ranks form an unbroken run under order,
// returning the highest rank of the run.
func consecutive(ranks []table.Rank, order rankOrder) (table.Rank, bool) {
	sorted := append([]table.Rank(nil), ranks...)
	sort.Slice(sorted, func(i, j int) bool { return order(sorted[i]) < order(sorted[j]) })
	for i := 1; i < len(sorted); i++ {
		if order(sorted[i]) != order(sorted[i-1])+1 {
			return 0, false
		}
	}
	return sorted[len(sorted)-1], true
}

// CanBeat reports whether next may be played on top of prev. A nil prev is an
// empty table.
func CanBeat(prev *Combo, next Combo) bool {
	if prev == nil {
		return true
	}

	// Chặt 2: a quad cuts a single or pair of twos, and a smaller quad.
	if next.kind == Quad {
		if (prev.kind == Single || prev.kind == Pair) && prev.rank == table.Two {
			return true
		}
		if prev.kind == Quad {
			return primaryOrder(next.rank) > primaryOrder(prev.rank)
		}
		return false
	}

	if prev.kind != next.kind {
		return false
	}
	if prev.kind == Straight && prev.length != next.length {
		return false
	}
	return primaryOrder(next.rank) > primaryOrder(prev.rank)
}

// IsCutTwo reports whether playing next on prev is a "chặt 2" and returns the
// immediate bonus owed by the previous holder.
func IsCutTwo(prev *Combo, next Combo) (int, bool) {
	if prev == nil || next.kind != Quad || prev.rank != table.Two {
		return 0, false
	}
	switch prev.kind {
	case Single:
		return CutSingleTwoBonus, true
	case Pair:
		return CutPairTwoBonus, true
	}
	return 0, false
}

const (
	CutSingleTwoBonus = 5
	CutPairTwoBonus   = 10
)
