package chinesepoker

import (
	"slices"

	"github.com/samber/lo"

	"gamehub/internal/domain"
	"gamehub/internal/game"
)

// Player is one seat: cumulative points and the cards currently held.
type Player struct {
	ID     string
	Points int
	Cards  []domain.Card
}

// Move plays Cards, or passes when Cards is empty. IsBotMove marks moves forced by a timeout.
type Move struct {
	Player    string
	Cards     []domain.Card
	IsBotMove bool
}

// IsPass reports whether the move plays no cards.
func (m Move) IsPass() bool { return len(m.Cards) == 0 }

// State is an immutable game snapshot. Transitions build new values and never
// mutate the receiver's slices.
type State struct {
	Status  Status
	Players []Player
	// Current indexes Players; -1 when nobody is active.
	Current int
	// History holds the moves of the current round.
	History []Move

	creditsPerPoint int
}

var _ game.State = (*State)(nil)

// CurrentPlayerID returns "" when nobody is active.
func (s *State) CurrentPlayerID() string {
	if s.Current < 0 || s.Current >= len(s.Players) {
		return ""
	}
	return s.Players[s.Current].ID
}

func (s *State) IsTerminal() bool { return s.Status == StatusEndGame }

func (s *State) next(status Status) *State {
	return &State{
		Status:          status,
		Players:         s.Players,
		Current:         -1,
		creditsPerPoint: s.creditsPerPoint,
	}
}

func (s *State) indexOf(playerID string) int {
	return slices.IndexFunc(s.Players, func(p Player) bool { return p.ID == playerID })
}

func (s *State) nextIndex() int {
	return (s.Current + 1) % len(s.Players)
}

func (s *State) smallestCard() (domain.Card, bool) {
	return domain.Smallest(lo.FlatMap(s.Players, func(p Player, _ int) []domain.Card { return p.Cards }))
}

func (s *State) holderOfSmallestCard() int {
	smallest, ok := s.smallestCard()
	if !ok {
		return -1
	}
	return slices.IndexFunc(s.Players, func(p Player) bool { return slices.Contains(p.Cards, smallest) })
}

// handToBeat is the most recent non-pass move of the round.
func (s *State) handToBeat() (Move, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if !s.History[i].IsPass() {
			return s.History[i], true
		}
	}
	return Move{}, false
}

func (s *State) roundWinner() int {
	if m, ok := s.handToBeat(); ok {
		return s.indexOf(m.Player)
	}
	return s.Current
}

func (s *State) othersPassed() bool {
	n := len(s.Players) - 1
	if len(s.History) < n {
		return false
	}
	return lo.EveryBy(s.History[len(s.History)-n:], Move.IsPass)
}

func (s *State) isFirstTurnOfMatch(cardsPerPlayer int) bool {
	return lo.EveryBy(s.Players, func(p Player) bool { return len(p.Cards) == cardsPerPlayer })
}

func (s *State) someHandEmpty() bool {
	return lo.SomeBy(s.Players, func(p Player) bool { return len(p.Cards) == 0 })
}

func (s *State) maxPoints() int {
	return lo.Max(lo.Map(s.Players, func(p Player, _ int) int { return p.Points }))
}
