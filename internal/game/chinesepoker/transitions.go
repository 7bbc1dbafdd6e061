package chinesepoker

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"gamehub/internal/domain"
)

// advance returns the automatic successor of s, or nil when s waits for a
// player or the game is over.
func (l *Logic) advance(s *State) (*State, error) {
	switch s.Status {
	case StatusStartGame:
		next := s.next(StatusStartMatch)
		next.Players = withHands(s.Players, nil)
		return next, nil

	case StatusStartMatch:
		hands, err := domain.DealHands(l.rng, len(s.Players), l.cfg.CardsPerPlayer)
		if err != nil {
			return nil, fmt.Errorf("deal: %w", err)
		}
		next := s.next(StatusDealCards)
		next.Players = withHands(s.Players, hands)
		return next, nil

	case StatusDealCards:
		next := s.next(StatusStartRound)
		next.Current = s.holderOfSmallestCard()
		return next, nil

	case StatusStartRound:
		next := s.next(StatusStartTurn)
		next.Current = s.Current
		return next, nil

	case StatusStartTurn:
		next := s.next(StatusAwaitPlayerAction)
		next.Current = s.Current
		next.History = s.History
		return next, nil

	case StatusEndTurn:
		following := s.nextIndex()
		if s.othersPassed() || len(s.Players[following].Cards) == 0 {
			next := s.next(StatusEndRound)
			next.Current = s.roundWinner()
			return next, nil
		}
		next := s.next(StatusStartTurn)
		next.Current = following
		next.History = s.History
		return next, nil

	case StatusEndRound:
		if s.someHandEmpty() {
			return s.next(StatusEndMatch), nil
		}
		next := s.next(StatusStartRound)
		next.Current = s.Current
		return next, nil

	case StatusEndMatch:
		next := s.next(StatusUpdatePoints)
		next.Players = lo.Map(s.Players, func(p Player, _ int) Player {
			return Player{ID: p.ID, Points: p.Points + len(p.Cards)}
		})
		return next, nil

	case StatusUpdatePoints:
		if s.maxPoints() >= l.cfg.GameOverPointThreshold {
			return s.next(StatusEndGame), nil
		}
		return s.next(StatusStartMatch), nil
	}
	return nil, nil
}

// afterMove applies a validated move.
func afterMove(s *State, m Move) *State {
	players := slices.Clone(s.Players)
	players[s.Current] = Player{
		ID:     players[s.Current].ID,
		Points: players[s.Current].Points,
		Cards:  domain.RemoveCards(players[s.Current].Cards, m.Cards),
	}
	next := s.next(StatusEndTurn)
	next.Players = players
	next.Current = s.Current
	next.History = append(slices.Clone(s.History), m)
	return next
}

func withHands(players []Player, hands [][]domain.Card) []Player {
	return lo.Map(players, func(p Player, i int) Player {
		var cards []domain.Card
		if i < len(hands) {
			cards = hands[i]
		}
		return Player{ID: p.ID, Points: p.Points, Cards: cards}
	})
}
