package dealer

import (
	"testing"
	"time"

	"SamLoc/internal/game/table"
)

// 工具：检查是否有重复牌
func hasDuplicates(cards []table.Card) bool {
	seen := make(map[string]bool)
	for _, c := range cards {
		if seen[c.ID()] {
			return true
		}
		seen[c.ID()] = true
	}
	return false
}

// ✅ 测试牌组初始化
func TestNewDeck(t *testing.T) {
	d := NewDealer(time.Now().UnixNano())
	d.NewDeck()

	if len(d.deck) != 52 {
		t.Fatalf("expected 52 cards, got %d", len(d.deck))
	}
	if hasDuplicates(d.deck) {
		t.Fatalf("deck should not contain duplicates")
	}

	suits := make(map[table.Suit]bool)
	ranks := make(map[table.Rank]bool)
	for _, c := range d.deck {
		suits[c.Suit] = true
		ranks[c.Rank] = true
	}
	if len(suits) != 4 {
		t.Fatalf("expected 4 suits, got %d", len(suits))
	}
	if len(ranks) != 13 {
		t.Fatalf("expected 13 ranks, got %d", len(ranks))
	}
}

// ✅ 测试洗牌效果（概率性验证）
func TestShuffleChangesOrder(t *testing.T) {
	d1 := NewDealer(42)
	d1.NewDeck()
	d2 := NewDealer(42)
	d2.NewDeck()

	for i := range d1.deck {
		if d1.deck[i] != d2.deck[i] {
			t.Fatalf("expected identical decks for same seed")
		}
	}

	d3 := NewDealer(99)
	d3.NewDeck()
	diff := false
	for i := range d1.deck {
		if d1.deck[i] != d3.deck[i] {
			diff = true
			break
		}
	}
	if !diff {
		t.Fatalf("expected deck with different seed to differ")
	}
}

// ✅ 测试轮流发牌
func TestDealRoundRobin(t *testing.T) {
	d := NewDealer(1)
	d.NewDeck()
	order := append([]table.Card(nil), d.deck...)

	players := []string{"A", "B", "C", "D", "E"}
	hands := d.Deal(players, 10)

	for _, id := range players {
		if len(hands[id]) != 10 {
			t.Fatalf("player %s should have 10 cards, got %d", id, len(hands[id]))
		}
	}
	// first card to A, second to B ... sixth back to A
	if hands["A"][0] != order[0] || hands["B"][0] != order[1] || hands["A"][1] != order[5] {
		t.Fatalf("cards were not dealt one at a time in seat order")
	}

	all := d.Remaining()
	for _, h := range hands {
		all = append(all, h...)
	}
	if len(all) != 52 || hasDuplicates(all) {
		t.Fatalf("hands plus stock should be exactly the deck, got %d cards", len(all))
	}
	if len(d.Remaining()) != 2 {
		t.Fatalf("expected 2 undealt cards, got %d", len(d.Remaining()))
	}
}

// ✅ 测试自动补牌机制
func TestDrawResetsDeck(t *testing.T) {
	d := NewDealer(3)
	d.NewDeck()
	for i := 0; i < 52; i++ {
		d.draw()
	}
	card := d.draw()
	if card.Rank < table.Three || card.Rank > table.Two || card.Suit < table.Spades || card.Suit > table.Clubs {
		t.Fatalf("invalid card returned after deck reset")
	}
	if len(d.deck) != 51 {
		t.Fatalf("expected a fresh deck minus one, got %d", len(d.deck))
	}
}

// ✅ 测试固定牌序
func TestStackedDealerReplaysOrder(t *testing.T) {
	order := table.FullDeck()
	d := NewStackedDealer(order)

	for round := 0; round < 2; round++ {
		d.NewDeck()
		hands := d.Deal([]string{"A", "B"}, 2)
		if hands["A"][0] != order[0] || hands["B"][0] != order[1] || hands["A"][1] != order[2] {
			t.Fatalf("round %d: stacked order not dealt as given", round)
		}
		if len(d.Remaining()) != 48 {
			t.Fatalf("round %d: expected 48 undealt cards, got %d", round, len(d.Remaining()))
		}
	}
}
