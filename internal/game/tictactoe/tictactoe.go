// Package tictactoe is the two-player 3x3 grid game. The first seated player
// moves first; cells are indexed 0..8 row by row.
package tictactoe

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"gamehub/internal/game"
)

const GameType = "tic_tac_toe"

const numCells = 9

var lines = [][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

type Player struct {
	ID         string `json:"player_id"`
	Selections []int  `json:"selections"`
}

type Move struct {
	Player    string
	CellIndex int
}

type State struct {
	Players []Player
	// LastMover is the player who produced this state; empty for the initial state.
	LastMover string
}

var _ game.State = (*State)(nil)

type SharedView struct {
	Players         []Player `json:"players"`
	CurrentPlayerID string   `json:"current_player_id,omitempty"`
	Winner          string   `json:"winner,omitempty"`
}

func (s *State) currentIndex() int {
	if len(s.Players[0].Selections) == len(s.Players[1].Selections) {
		return 0
	}
	return 1
}

func (s *State) currentPlayerID() string {
	if s.IsTerminal() {
		return ""
	}
	return s.Players[s.currentIndex()].ID
}

func (s *State) taken() []int {
	return append(slices.Clone(s.Players[0].Selections), s.Players[1].Selections...)
}

func (s *State) winner() string {
	for _, p := range s.Players {
		for _, line := range lines {
			if lo.Every(p.Selections, line[:]) {
				return p.ID
			}
		}
	}
	return ""
}

func (s *State) IsTerminal() bool {
	return s.winner() != "" || len(s.taken()) == numCells
}

func (s *State) SharedView() any {
	return SharedView{
		Players: lo.Map(s.Players, func(p Player, _ int) Player {
			sel := slices.Clone(p.Selections)
			if sel == nil {
				sel = []int{}
			}
			return Player{ID: p.ID, Selections: sel}
		}),
		CurrentPlayerID: s.currentPlayerID(),
		Winner:          s.winner(),
	}
}

func (s *State) PrivateViews() []game.PrivateView { return nil }
func (s *State) PrivateView(string) (any, bool)   { return nil, false }

type Logic struct{}

var _ game.Logic = Logic{}

func (Logic) NumPlayers() int    { return 2 }
func (Logic) GameType() string   { return GameType }
func (Logic) Configuration() any { return nil }

func (Logic) InitialState(playerIDs []string) (game.State, error) {
	if len(playerIDs) != 2 {
		return nil, fmt.Errorf("tic tac toe needs 2 players, got %d", len(playerIDs))
	}
	return &State{Players: lo.Map(playerIDs, func(id string, _ int) Player { return Player{ID: id} })}, nil
}

func (Logic) MakeMove(state game.State, move game.Move) (game.State, error) {
	s, ok := state.(*State)
	if !ok {
		return nil, fmt.Errorf("tic tac toe: unexpected state type %T", state)
	}
	m, ok := move.(Move)
	if !ok {
		return nil, fmt.Errorf("tic tac toe: unexpected move type %T", move)
	}
	switch {
	case s.IsTerminal():
		return nil, game.Invalid("Game is over")
	case m.Player != s.currentPlayerID():
		return nil, game.Invalid("Not player's turn")
	case m.CellIndex < 0 || m.CellIndex >= numCells:
		return nil, game.Invalid(fmt.Sprintf("Cell %d is off the board", m.CellIndex))
	case slices.Contains(s.taken(), m.CellIndex):
		return nil, game.Invalid("Cell already selected")
	}
	players := slices.Clone(s.Players)
	i := s.currentIndex()
	sel := append(slices.Clone(players[i].Selections), m.CellIndex)
	slices.Sort(sel)
	players[i] = Player{ID: players[i].ID, Selections: sel}
	return &State{Players: players, LastMover: m.Player}, nil
}

func (Logic) NextAutomatedState(game.State) (game.State, error) { return nil, nil }

// DerivedEvents lets a configured turn timer follow the alternating turns.
func (Logic) DerivedEvents(state game.State, roomID int, recipients []string) []any {
	s, ok := state.(*State)
	if !ok {
		return nil
	}
	var events []any
	if s.LastMover == "" {
		events = append(events, game.GameStarted{RoomID: roomID})
	} else {
		events = append(events, game.TurnEnded{RoomID: roomID, PlayerID: s.LastMover})
	}
	if s.IsTerminal() {
		return append(events, game.GameEnded{RoomID: roomID})
	}
	return append(events, game.TurnStarted{RoomID: roomID, PlayerID: s.currentPlayerID(), Recipients: recipients})
}

// StateAfterTimeout marks the lowest free cell for the player who ran out of time.
func (l Logic) StateAfterTimeout(state game.State, playerID string) (game.State, bool) {
	s, ok := state.(*State)
	if !ok || s.IsTerminal() || s.currentPlayerID() != playerID {
		return nil, false
	}
	taken := s.taken()
	for cell := 0; cell < numCells; cell++ {
		if slices.Contains(taken, cell) {
			continue
		}
		next, err := l.MakeMove(s, Move{Player: playerID, CellIndex: cell})
		if err != nil {
			return nil, false
		}
		return next, true
	}
	return nil, false
}

type movePayload struct {
	CellIndex *int `json:"cell_index" validate:"required,min=0,max=8"`
}

// ParseMove decodes {"cell_index": 4}.
func ParseMove(playerID string, raw json.RawMessage) (game.Move, error) {
	var p movePayload
	if err := game.Decode(raw, &p); err != nil {
		return nil, err
	}
	return Move{Player: playerID, CellIndex: *p.CellIndex}, nil
}
