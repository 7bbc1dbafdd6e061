package domain

import (
	"fmt"
	"strings"
)

// Rank is the strength of a card face. 3 is the lowest, 2 the highest.
type Rank int

const (
	RankThree Rank = iota + 3
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankAce
	RankTwo
)

// Suit orders cards of the same rank: diamonds < hearts < spades < clubs.
type Suit int

const (
	Diamonds Suit = iota
	Hearts
	Spades
	Clubs
)

const (
	rankSymbols = "3456789TJQKA2"
	suitSymbols = "dhsc"
)

// Card is a single playing card from a standard 52-card deck.
type Card struct {
	Rank Rank
	Suit Suit
}

// Value is the card's total order: 4*rank + suit.
func (c Card) Value() int {
	return 4*int(c.Rank) + int(c.Suit)
}

// String renders a card as rank symbol followed by suit symbol, e.g. "Td".
func (c Card) String() string {
	if c.Rank < RankThree || c.Rank > RankTwo || c.Suit < Diamonds || c.Suit > Clubs {
		return "??"
	}
	return string(rankSymbols[c.Rank-RankThree]) + string(suitSymbols[c.Suit])
}

// MarshalText encodes the card in its two-character form.
func (c Card) MarshalText() ([]byte, error) {
	if c.String() == "??" {
		return nil, fmt.Errorf("invalid card %+v", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes the two-character form.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a card such as "3s" or "Kc".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	r := strings.IndexByte(rankSymbols, s[0])
	u := strings.IndexByte(suitSymbols, s[1])
	if r < 0 || u < 0 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	return Card{Rank: RankThree + Rank(r), Suit: Suit(u)}, nil
}

// ParseCards parses a whitespace separated list of cards. An empty string yields no cards.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards for fixed inputs; it panics on malformed cards.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}
