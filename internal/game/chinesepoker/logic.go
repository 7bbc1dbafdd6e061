package chinesepoker

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/samber/lo"

	"gamehub/internal/domain"
	"gamehub/internal/game"
)

// Logic is the rule engine. The rng is only touched from the room's loop.
type Logic struct {
	cfg Config
	rng *rand.Rand
}

var _ game.Logic = (*Logic)(nil)

// NewLogic validates cfg. A nil rng is replaced by a time-seeded one.
func NewLogic(cfg Config, rng *rand.Rand) (*Logic, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Logic{cfg: cfg, rng: rng}, nil
}

func (l *Logic) NumPlayers() int    { return l.cfg.NumPlayers }
func (l *Logic) GameType() string   { return GameType }
func (l *Logic) Configuration() any { return l.cfg }

func (l *Logic) InitialState(playerIDs []string) (game.State, error) {
	if len(playerIDs) != l.cfg.NumPlayers {
		return nil, fmt.Errorf("chinese poker needs %d players, got %d", l.cfg.NumPlayers, len(playerIDs))
	}
	players := make([]Player, len(playerIDs))
	for i, id := range playerIDs {
		players[i] = Player{ID: id}
	}
	return &State{
		Status:          StatusStartGame,
		Players:         players,
		Current:         -1,
		creditsPerPoint: l.cfg.CreditsPerPoint,
	}, nil
}

func (l *Logic) MakeMove(state game.State, move game.Move) (game.State, error) {
	s, err := asState(state)
	if err != nil {
		return nil, err
	}
	m, ok := move.(Move)
	if !ok {
		return nil, fmt.Errorf("chinese poker: unexpected move type %T", move)
	}
	if reason := validateMove(s, m, l.cfg); reason != "" {
		return nil, game.Invalid(reason)
	}
	return afterMove(s, m), nil
}

func (l *Logic) NextAutomatedState(state game.State) (game.State, error) {
	s, err := asState(state)
	if err != nil {
		return nil, err
	}
	next, err := l.advance(s)
	if err != nil || next == nil {
		return nil, err
	}
	return next, nil
}

func (l *Logic) DerivedEvents(state game.State, roomID int, recipients []string) []any {
	s, err := asState(state)
	if err != nil {
		return nil
	}
	switch s.Status {
	case StatusStartGame:
		return []any{game.GameStarted{RoomID: roomID}}
	case StatusEndGame:
		return []any{game.GameEnded{RoomID: roomID}}
	case StatusAwaitPlayerAction:
		return []any{game.TurnStarted{RoomID: roomID, PlayerID: s.CurrentPlayerID(), Recipients: recipients}}
	case StatusEndTurn:
		return []any{game.TurnEnded{RoomID: roomID, PlayerID: s.CurrentPlayerID()}}
	}
	return nil
}

// StateAfterTimeout makes the timed-out player pass, or lead their smallest
// card when the round has no moves yet.
func (l *Logic) StateAfterTimeout(state game.State, playerID string) (game.State, bool) {
	s, err := asState(state)
	if err != nil || s.Status != StatusAwaitPlayerAction || s.CurrentPlayerID() != playerID {
		return nil, false
	}
	move := Move{Player: playerID, IsBotMove: true}
	if len(s.History) == 0 {
		smallest, ok := domain.Smallest(s.Players[s.Current].Cards)
		if !ok {
			return nil, false
		}
		move.Cards = []domain.Card{smallest}
	}
	next, err := l.MakeMove(s, move)
	if err != nil {
		return nil, false
	}
	return next, true
}

type movePayload struct {
	Cards []domain.Card `json:"cards" validate:"required,max=5"`
}

// ParseMove decodes {"cards": ["3d", "4c"]}. An empty list is a pass.
func ParseMove(playerID string, raw json.RawMessage) (game.Move, error) {
	var p movePayload
	if err := game.Decode(raw, &p); err != nil {
		return nil, err
	}
	if len(lo.Uniq(p.Cards)) != len(p.Cards) {
		return nil, ErrInvalidHand
	}
	return Move{Player: playerID, Cards: p.Cards}, nil
}

func asState(state game.State) (*State, error) {
	s, ok := state.(*State)
	if !ok || s == nil {
		return nil, fmt.Errorf("chinese poker: unexpected state type %T", state)
	}
	return s, nil
}
