// Package rps is two-player rock-paper-scissors: one hidden selection each,
// revealed once both have chosen.
package rps

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"gamehub/internal/game"
)

const GameType = "rock_paper_scissors"

type Selection string

const (
	Rock     Selection = "ROCK"
	Paper    Selection = "PAPER"
	Scissors Selection = "SCISSORS"
)

var beats = map[Selection]Selection{Rock: Scissors, Paper: Rock, Scissors: Paper}

type Player struct {
	ID        string
	Selection Selection // empty until chosen
}

type Move struct {
	Player    string
	Selection Selection
}

type State struct {
	Players []Player
	// LastMover is the player who produced this state; empty for the initial state.
	LastMover string
}

var _ game.State = (*State)(nil)

type SharedPlayerView struct {
	PlayerID string `json:"player_id"`
	Selected bool   `json:"selected"`
}

type PlayerSelection struct {
	PlayerID  string    `json:"player_id"`
	Selection Selection `json:"selection"`
}

type ResultView struct {
	Winner string            `json:"winner,omitempty"`
	Moves  []PlayerSelection `json:"moves"`
}

type SharedView struct {
	Players []SharedPlayerView `json:"players"`
	Result  *ResultView        `json:"result,omitempty"`
}

type PrivateView struct {
	Selection Selection `json:"selection"`
}

func (s *State) SharedView() any {
	view := SharedView{Players: lo.Map(s.Players, func(p Player, _ int) SharedPlayerView {
		return SharedPlayerView{PlayerID: p.ID, Selected: p.Selection != ""}
	})}
	if s.IsTerminal() {
		view.Result = &ResultView{
			Winner: s.winner(),
			Moves: lo.Map(s.Players, func(p Player, _ int) PlayerSelection {
				return PlayerSelection{PlayerID: p.ID, Selection: p.Selection}
			}),
		}
	}
	return view
}

// PrivateViews echoes a selection to its player once, on the state that
// recorded it.
func (s *State) PrivateViews() []game.PrivateView {
	if s.LastMover == "" {
		return nil
	}
	view, ok := s.PrivateView(s.LastMover)
	if !ok {
		return nil
	}
	return []game.PrivateView{{PlayerID: s.LastMover, View: view}}
}

func (s *State) PrivateView(playerID string) (any, bool) {
	p, ok := lo.Find(s.Players, func(p Player) bool { return p.ID == playerID })
	if !ok || p.Selection == "" {
		return nil, false
	}
	return PrivateView{Selection: p.Selection}, true
}

func (s *State) IsTerminal() bool {
	return lo.EveryBy(s.Players, func(p Player) bool { return p.Selection != "" })
}

// winner is empty on a tie.
func (s *State) winner() string {
	a, b := s.Players[0], s.Players[1]
	switch {
	case beats[a.Selection] == b.Selection:
		return a.ID
	case beats[b.Selection] == a.Selection:
		return b.ID
	}
	return ""
}

// Logic has no configuration, derived events or timeout policy.
type Logic struct{}

var _ game.Logic = Logic{}

func (Logic) NumPlayers() int    { return 2 }
func (Logic) GameType() string   { return GameType }
func (Logic) Configuration() any { return nil }

func (Logic) InitialState(playerIDs []string) (game.State, error) {
	if len(playerIDs) != 2 {
		return nil, fmt.Errorf("rock paper scissors needs 2 players, got %d", len(playerIDs))
	}
	return &State{Players: lo.Map(playerIDs, func(id string, _ int) Player { return Player{ID: id} })}, nil
}

func (Logic) MakeMove(state game.State, move game.Move) (game.State, error) {
	s, ok := state.(*State)
	if !ok {
		return nil, fmt.Errorf("rock paper scissors: unexpected state type %T", state)
	}
	m, ok := move.(Move)
	if !ok {
		return nil, fmt.Errorf("rock paper scissors: unexpected move type %T", move)
	}
	i := slices.IndexFunc(s.Players, func(p Player) bool { return p.ID == m.Player })
	if i < 0 {
		return nil, game.Invalid(fmt.Sprintf("%s is not playing", m.Player))
	}
	if s.Players[i].Selection != "" {
		return nil, game.Invalid(fmt.Sprintf("%s has already selected", m.Player))
	}
	players := slices.Clone(s.Players)
	players[i].Selection = m.Selection
	return &State{Players: players, LastMover: m.Player}, nil
}

func (Logic) NextAutomatedState(game.State) (game.State, error)       { return nil, nil }
func (Logic) DerivedEvents(game.State, int, []string) []any           { return nil }
func (Logic) StateAfterTimeout(game.State, string) (game.State, bool) { return nil, false }

type movePayload struct {
	Selection Selection `json:"selection" validate:"required,oneof=ROCK PAPER SCISSORS"`
}

// ParseMove decodes {"selection": "ROCK"}.
func ParseMove(playerID string, raw json.RawMessage) (game.Move, error) {
	var p movePayload
	if err := game.Decode(raw, &p); err != nil {
		return nil, err
	}
	return Move{Player: playerID, Selection: p.Selection}, nil
}
