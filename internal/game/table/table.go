package table

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rank is a card rank in Sâm Lốc strength order: 3 is the lowest, 2 the highest.
type Rank int

const (
	Three Rank = iota
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	Two
)

// NumRanks is the number of distinct ranks in a deck.
const NumRanks = 13

var rankNames = [NumRanks]string{"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2"}

func (r Rank) String() string {
	if r < Three || r > Two {
		return "?"
	}
	return rankNames[r]
}

// Suit is one of the four card suits.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitSymbols = [4]string{"♠", "♥", "♦", "♣"}

func (s Suit) String() string {
	if s < Spades || s > Clubs {
		return "?"
	}
	return suitSymbols[s]
}

// Card 一张牌 (rank + suit). Immutable once dealt.
type Card struct {
	Rank Rank
	Suit Suit
}

// ID is the stable identifier clients use to reference a card, e.g. "10♥".
func (c Card) ID() string {
	return c.Rank.String() + c.Suit.String()
}

func (c Card) String() string {
	return c.ID()
}

type cardJSON struct {
	R  string `json:"r"`
	S  string `json:"s"`
	ID string `json:"id"`
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{R: c.Rank.String(), S: c.Suit.String(), ID: c.ID()})
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCard(raw.R + raw.S)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseRank converts "3".."10","J","Q","K","A","2" into a Rank.
func ParseRank(s string) (Rank, error) {
	for i, name := range rankNames {
		if name == s {
			return Rank(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}

// ParseCard converts a card id such as "Q♦" back into a Card.
func ParseCard(id string) (Card, error) {
	for i, sym := range suitSymbols {
		if r, ok := strings.CutSuffix(id, sym); ok {
			rank, err := ParseRank(r)
			if err != nil {
				return Card{}, fmt.Errorf("card %q: %w", id, err)
			}
			return Card{Rank: rank, Suit: Suit(i)}, nil
		}
	}
	return Card{}, fmt.Errorf("card %q: unknown suit", id)
}

// MustParse is ParseCard for fixed literals; it panics on malformed ids.
func MustParse(ids ...string) []Card {
	out := make([]Card, 0, len(ids))
	for _, id := range ids {
		c, err := ParseCard(id)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

// IDs returns the identifiers of cards in order.
func IDs(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID()
	}
	return out
}

// FullDeck returns the 52 distinct cards ordered by rank then suit.
func FullDeck() []Card {
	deck := make([]Card, 0, NumRanks*4)
	for r := Three; r <= Two; r++ {
		for s := Spades; s <= Clubs; s++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}
