package domain

import (
	"errors"
	"math/rand"
	"sort"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// ErrDeckTooSmall is returned when a deal asks for more cards than a deck holds.
var ErrDeckTooSmall = errors.New("cannot deal more than 52 cards")

// NewDeck returns a sorted 52-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for r := RankThree; r <= RankTwo; r++ {
		for s := Diamonds; s <= Clubs; s++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(rng *rand.Rand, deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// DealHands shuffles a fresh deck and splits it into numHands hands of handSize cards.
func DealHands(rng *rand.Rand, numHands, handSize int) ([][]Card, error) {
	if numHands < 0 || handSize < 0 {
		return nil, errors.New("hand count and size must not be negative")
	}
	if numHands*handSize > DeckSize {
		return nil, ErrDeckTooSmall
	}
	deck := ShuffleDeck(rng, NewDeck())
	hands := make([][]Card, numHands)
	for i := range hands {
		hand := make([]Card, handSize)
		copy(hand, deck[i*handSize:(i+1)*handSize])
		SortHand(hand)
		hands[i] = hand
	}
	return hands, nil
}

// SortHand orders a hand by ascending value.
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].Value() < cards[j].Value()
	})
}
