package domain

import "github.com/samber/lo"

// RemoveCards removes the specified cards from a hand and returns the updated hand.
// The input hand is left untouched.
func RemoveCards(hand []Card, toRemove []Card) []Card {
	if len(toRemove) == 0 || len(hand) == 0 {
		return append([]Card(nil), hand...)
	}

	removeCounts := make(map[Card]int, len(toRemove))
	for _, card := range toRemove {
		removeCounts[card]++
	}

	updated := make([]Card, 0, len(hand))
	for _, card := range hand {
		if count, ok := removeCounts[card]; ok && count > 0 {
			removeCounts[card] = count - 1
			continue
		}
		updated = append(updated, card)
	}

	return updated
}

// HasCards reports whether every card in cards is held in hand.
func HasCards(hand []Card, cards []Card) bool {
	return lo.Every(hand, cards)
}

// Smallest returns the lowest valued card. ok is false for an empty hand.
func Smallest(cards []Card) (smallest Card, ok bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	return lo.MinBy(cards, func(a, b Card) bool { return a.Value() < b.Value() }), true
}

// FormatCards renders cards in their two-character form separated by spaces.
func FormatCards(cards []Card) []string {
	return lo.Map(cards, func(c Card, _ int) string { return c.String() })
}
