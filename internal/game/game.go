// Package game defines the rule-engine contract every room hosts and the
// lifecycle events games derive to drive turn timers.
package game

import "encoding/json"

// Move is a parsed player action. Each game defines its own concrete type.
type Move any

// PrivateView pairs a player with the view only they may see.
type PrivateView struct {
	PlayerID string
	View     any
}

// State is an immutable snapshot of a game in progress.
type State interface {
	SharedView() any
	PrivateViews() []PrivateView
	PrivateView(playerID string) (any, bool)
	IsTerminal() bool
}

// Logic is the pure rule engine for one game type.
type Logic interface {
	NumPlayers() int
	GameType() string
	// Configuration is exposed in room updates; nil when the game has none.
	Configuration() any
	InitialState(playerIDs []string) (State, error)
	MakeMove(state State, move Move) (State, error)
	// NextAutomatedState returns nil when the state waits for player input or is terminal.
	NextAutomatedState(state State) (State, error)
	DerivedEvents(state State, roomID int, recipients []string) []any
	// StateAfterTimeout returns false when the timeout forces nothing.
	StateAfterTimeout(state State, playerID string) (State, bool)
}

// MoveParser turns a raw move payload into a game move.
type MoveParser func(playerID string, raw json.RawMessage) (Move, error)

// InvalidMoveError reports a rule violation. Its text is shown to the player verbatim.
type InvalidMoveError struct {
	Reason string
}

func (e *InvalidMoveError) Error() string { return e.Reason }

// Invalid returns an InvalidMoveError with the given reason.
func Invalid(reason string) error {
	return &InvalidMoveError{Reason: reason}
}
