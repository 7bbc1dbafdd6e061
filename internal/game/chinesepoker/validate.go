package chinesepoker

import (
	"slices"

	"gamehub/internal/domain"
)

const (
	reasonNotAwaiting       = "Cannot make move at this time"
	reasonNotYourTurn       = "It is not your turn"
	reasonNotYourCards      = "You do not have those cards"
	reasonFirstCannotPass   = "First player of the round cannot pass"
	reasonMustUseSmallest   = "First player of the match must use smallest card"
	reasonCardCountMismatch = "Must use the same number of cards as the hand to beat"
	reasonDoesNotBeat       = "Hand does not beat previous hand"
)

type moveCheck func(s *State, m Move, cfg Config) string

// moveChecks run in order; the first non-empty reason rejects the move.
var moveChecks = []moveCheck{
	func(s *State, _ Move, _ Config) string {
		if s.Status != StatusAwaitPlayerAction {
			return reasonNotAwaiting
		}
		return ""
	},
	func(s *State, m Move, _ Config) string {
		if s.CurrentPlayerID() != m.Player {
			return reasonNotYourTurn
		}
		return ""
	},
	func(s *State, m Move, _ Config) string {
		if !domain.HasCards(s.Players[s.Current].Cards, m.Cards) {
			return reasonNotYourCards
		}
		return ""
	},
	func(s *State, m Move, _ Config) string {
		if m.IsPass() && len(s.History) == 0 {
			return reasonFirstCannotPass
		}
		return ""
	},
	func(s *State, m Move, cfg Config) string {
		if !s.isFirstTurnOfMatch(cfg.CardsPerPlayer) {
			return ""
		}
		if smallest, ok := s.smallestCard(); ok && !slices.Contains(m.Cards, smallest) {
			return reasonMustUseSmallest
		}
		return ""
	},
	func(s *State, m Move, _ Config) string {
		if m.IsPass() {
			return ""
		}
		if prev, ok := s.handToBeat(); ok && len(m.Cards) != len(prev.Cards) {
			return reasonCardCountMismatch
		}
		return ""
	},
	func(s *State, m Move, _ Config) string {
		if m.IsPass() {
			return ""
		}
		value, err := HandValueOf(m.Cards)
		if err != nil {
			return err.Error()
		}
		prev, ok := s.handToBeat()
		if !ok {
			return ""
		}
		// the previous hand was validated when it was played
		prevValue, _ := HandValueOf(prev.Cards)
		if !value.Beats(prevValue) {
			return reasonDoesNotBeat
		}
		return ""
	},
}

func validateMove(s *State, m Move, cfg Config) string {
	for _, check := range moveChecks {
		if reason := check(s, m, cfg); reason != "" {
			return reason
		}
	}
	return ""
}
