package dealer

import (
	"math/rand"

	"SamLoc/internal/game/table"
)

// Dealer 只负责洗牌与发牌（无规则判断）
type Dealer struct {
	deck    []table.Card
	rnd     *rand.Rand
	stacked []table.Card
}

func NewDealer(seed int64) *Dealer {
	return &Dealer{
		deck: make([]table.Card, 0, 52),
		rnd:  rand.New(rand.NewSource(seed)),
	}
}

// NewStackedDealer deals the given order on every NewDeck, without shuffling.
// Used to replay a known deal.
func NewStackedDealer(order []table.Card) *Dealer {
	return &Dealer{stacked: append([]table.Card(nil), order...)}
}

// NewDeck 初始化一副牌并洗牌
func (d *Dealer) NewDeck() {
	if d.stacked != nil {
		d.deck = append([]table.Card(nil), d.stacked...)
		return
	}
	d.deck = table.FullDeck()
	d.shuffle()
}

// Fisher-Yates, every permutation equally likely.
func (d *Dealer) shuffle() {
	d.rnd.Shuffle(len(d.deck), func(i, j int) {
		d.deck[i], d.deck[j] = d.deck[j], d.deck[i]
	})
}

// Deal gives perPlayer cards to each player, one card at a time in seat order.
func (d *Dealer) Deal(players []string, perPlayer int) map[string][]table.Card {
	out := make(map[string][]table.Card, len(players))
	for _, id := range players {
		out[id] = make([]table.Card, 0, perPlayer)
	}
	for i := 0; i < perPlayer; i++ {
		for _, id := range players {
			out[id] = append(out[id], d.draw())
		}
	}
	return out
}

// Remaining returns the undealt cards left in the deck.
func (d *Dealer) Remaining() []table.Card {
	return append([]table.Card(nil), d.deck...)
}

func (d *Dealer) draw() table.Card {
	if len(d.deck) == 0 {
		// should not happen if properly invoked
		d.NewDeck()
	}
	c := d.deck[0]
	d.deck = d.deck[1:]
	return c
}
