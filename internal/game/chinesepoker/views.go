package chinesepoker

import (
	"github.com/samber/lo"

	"gamehub/internal/domain"
	"gamehub/internal/game"
)

type PlayerView struct {
	PlayerID  string `json:"player_id"`
	NumPoints int    `json:"num_points"`
	NumCards  int    `json:"num_cards"`
}

type MoveView struct {
	PlayerID  string        `json:"player_id"`
	Cards     []domain.Card `json:"cards"`
	IsBotMove bool          `json:"is_bot_move"`
}

type PlayerResult struct {
	PlayerID  string  `json:"player_id"`
	NumPoints int     `json:"num_points"`
	DistToAvg float64 `json:"dist_to_avg"`
	Credits   int     `json:"credits"`
}

type Result struct {
	Players []PlayerResult `json:"players"`
}

// SharedView is broadcast to players and spectators.
type SharedView struct {
	Status          Status       `json:"status"`
	Players         []PlayerView `json:"players"`
	CurrentPlayerID string       `json:"current_player_id,omitempty"`
	MoveHistory     []MoveView   `json:"move_history"`
	Result          *Result      `json:"result,omitempty"`
}

// PrivateView carries one player's hand.
type PrivateView struct {
	Status Status        `json:"status"`
	Cards  []domain.Card `json:"cards"`
}

func (s *State) SharedView() any {
	view := SharedView{
		Status: s.Status,
		Players: lo.Map(s.Players, func(p Player, _ int) PlayerView {
			return PlayerView{PlayerID: p.ID, NumPoints: p.Points, NumCards: len(p.Cards)}
		}),
		CurrentPlayerID: s.CurrentPlayerID(),
		MoveHistory: lo.Map(s.History, func(m Move, _ int) MoveView {
			return MoveView{PlayerID: m.Player, Cards: cardsOrEmpty(m.Cards), IsBotMove: m.IsBotMove}
		}),
	}
	if s.Status == StatusEndGame {
		view.Result = s.result()
	}
	return view
}

func (s *State) result() *Result {
	points := lo.Map(s.Players, func(p Player, _ int) int { return p.Points })
	credits := Credits(points, s.creditsPerPoint)
	avg := float64(lo.Sum(points)) / float64(len(points))
	return &Result{Players: lo.Map(s.Players, func(p Player, i int) PlayerResult {
		return PlayerResult{
			PlayerID:  p.ID,
			NumPoints: p.Points,
			DistToAvg: float64(p.Points) - avg,
			Credits:   credits[i],
		}
	})}
}

// PrivateViews goes to every player right after dealing and to the active
// player while they act; other phases reveal nothing.
func (s *State) PrivateViews() []game.PrivateView {
	switch s.Status {
	case StatusDealCards:
		return lo.Map(s.Players, func(p Player, _ int) game.PrivateView {
			return game.PrivateView{PlayerID: p.ID, View: s.privateView(p)}
		})
	case StatusAwaitPlayerAction, StatusEndTurn:
		if s.Current < 0 || s.Current >= len(s.Players) {
			return nil
		}
		p := s.Players[s.Current]
		return []game.PrivateView{{PlayerID: p.ID, View: s.privateView(p)}}
	default:
		return nil
	}
}

func (s *State) PrivateView(playerID string) (any, bool) {
	i := s.indexOf(playerID)
	if i < 0 {
		return nil, false
	}
	return s.privateView(s.Players[i]), true
}

func (s *State) privateView(p Player) PrivateView {
	return PrivateView{Status: s.Status, Cards: cardsOrEmpty(p.Cards)}
}

func cardsOrEmpty(cards []domain.Card) []domain.Card {
	if cards == nil {
		return []domain.Card{}
	}
	return cards
}
