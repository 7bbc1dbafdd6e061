package chinesepoker

import (
	"cmp"
	"errors"
	"slices"

	"github.com/samber/lo"

	"gamehub/internal/domain"
)

// ErrInvalidHand is returned for card combinations that are not a playable hand.
var ErrInvalidHand = errors.New("Invalid hand")

// HandType ranks five-card shapes; singles, pairs and triples only meet their own kind.
type HandType int

const (
	HandSingle HandType = iota + 1
	HandPair
	HandThree
	HandStraight
	HandFlush
	HandFullHouse
	HandFour
	HandStraightFlush
)

// HandValue orders hands by type, then by Values lexicographically.
type HandValue struct {
	Type   HandType
	Values []int
}

// Compare returns -1, 0 or +1.
func (v HandValue) Compare(o HandValue) int {
	if c := cmp.Compare(v.Type, o.Type); c != 0 {
		return c
	}
	return slices.Compare(v.Values, o.Values)
}

// Beats reports whether v is strictly greater than o.
func (v HandValue) Beats(o HandValue) bool {
	return v.Compare(o) > 0
}

// HandValueOf evaluates a hand. A hand naming the same card twice is invalid.
func HandValueOf(cards []domain.Card) (HandValue, error) {
	if len(lo.Uniq(cards)) != len(cards) {
		return HandValue{}, ErrInvalidHand
	}
	switch n := len(cards); {
	case n >= 1 && n <= 3:
		return sameRankValue(cards)
	case n == 5:
		return fiveCardValue(cards)
	default:
		return HandValue{}, ErrInvalidHand
	}
}

func sameRankValue(cards []domain.Card) (HandValue, error) {
	if len(lo.UniqBy(cards, func(c domain.Card) domain.Rank { return c.Rank })) != 1 {
		return HandValue{}, ErrInvalidHand
	}
	top := lo.MaxBy(cards, func(a, b domain.Card) bool { return a.Value() > b.Value() })
	return HandValue{Type: HandType(len(cards)), Values: []int{top.Value()}}, nil
}

func fiveCardValue(cards []domain.Card) (HandValue, error) {
	counts := lo.CountValuesBy(cards, func(c domain.Card) domain.Rank { return c.Rank })
	switch len(counts) {
	case 2:
		dominant, n := domain.Rank(0), 0
		for rank, c := range counts {
			if c > n {
				dominant, n = rank, c
			}
		}
		kind := HandFullHouse
		if n == 4 {
			kind = HandFour
		}
		return HandValue{Type: kind, Values: []int{int(dominant)}}, nil
	case 5:
		return straightOrFlushValue(cards)
	default:
		return HandValue{}, ErrInvalidHand
	}
}

func straightOrFlushValue(cards []domain.Card) (HandValue, error) {
	sorted := slices.Clone(cards)
	slices.SortFunc(sorted, func(a, b domain.Card) int { return cmp.Compare(a.Rank, b.Rank) })
	flush := len(lo.UniqBy(sorted, func(c domain.Card) domain.Suit { return c.Suit })) == 1

	if top, ok := straightTop(sorted); ok {
		kind := HandStraight
		if flush {
			kind = HandStraightFlush
		}
		return HandValue{Type: kind, Values: []int{top.Value()}}, nil
	}
	if !flush {
		return HandValue{}, ErrInvalidHand
	}
	values := make([]int, 0, len(sorted)+1)
	for i := len(sorted) - 1; i >= 0; i-- {
		values = append(values, int(sorted[i].Rank))
	}
	values = append(values, int(sorted[0].Suit))
	return HandValue{Type: HandFlush, Values: values}, nil
}

var (
	lowStraightSix = []domain.Rank{domain.RankThree, domain.RankFour, domain.RankFive, domain.RankSix, domain.RankTwo}
	lowStraightAce = []domain.Rank{domain.RankThree, domain.RankFour, domain.RankFive, domain.RankAce, domain.RankTwo}
)

// straightTop expects five distinct ranks sorted ascending. A 2 never tops a
// straight; in the two wrap-around straights it plays low.
func straightTop(sorted []domain.Card) (domain.Card, bool) {
	ranks := lo.Map(sorted, func(c domain.Card, _ int) domain.Rank { return c.Rank })
	switch {
	case ranks[4]-ranks[0] == 4 && ranks[4] != domain.RankTwo:
		return sorted[4], true
	case slices.Equal(ranks, lowStraightSix):
		return sorted[3], true
	case slices.Equal(ranks, lowStraightAce):
		return sorted[2], true
	}
	return domain.Card{}, false
}
