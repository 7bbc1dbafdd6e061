package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/samber/lo"

	"gamehub/internal/event"
	"gamehub/internal/game"
)

// GameRoom hosts one game instance at a time. Players take seats in join order;
// the game starts when the last seat is taken and the room resets when the game
// reaches a terminal state. All methods must run on the event loop.
type GameRoom struct {
	id        int
	logic     game.Logic
	parseMove game.MoveParser
	bus       *event.Bus
	logger    runtime.Logger

	players    []string
	spectators []string
	offline    map[string]struct{}
	state      game.State
}

func NewGameRoom(id int, logic game.Logic, parseMove game.MoveParser, bus *event.Bus, logger runtime.Logger) *GameRoom {
	return &GameRoom{
		id:        id,
		logic:     logic,
		parseMove: parseMove,
		bus:       bus,
		logger:    logger.WithFields(map[string]any{"room_id": id, "game_type": logic.GameType()}),
		offline:   make(map[string]struct{}),
	}
}

func (r *GameRoom) ID() int          { return r.id }
func (r *GameRoom) GameType() string { return r.logic.GameType() }
func (r *GameRoom) Capacity() int    { return r.logic.NumPlayers() }
func (r *GameRoom) IsFull() bool     { return len(r.players) >= r.Capacity() }
func (r *GameRoom) InProgress() bool { return r.state != nil }

// State returns the current game state, nil between games.
func (r *GameRoom) State() game.State { return r.state }

func (r *GameRoom) RoomState() RoomState {
	return RoomState{
		RoomID:         r.id,
		Capacity:       r.Capacity(),
		PlayerIDs:      slices.Clone(r.seated()),
		OfflinePlayers: lo.Filter(r.seated(), func(id string, _ int) bool { return r.isOffline(id) }),
		IsFull:         r.IsFull(),
		Configuration:  r.logic.Configuration(),
	}
}

// Join seats playerID and starts the game when the room fills.
func (r *GameRoom) Join(ctx context.Context, playerID string) error {
	if r.isPlayer(playerID) {
		return r.fail(ctx, playerID, msgAlreadyInRoom)
	}
	if r.IsFull() {
		return r.fail(ctx, playerID, msgRoomFull)
	}

	r.players = append(r.players, playerID)
	r.spectators = lo.Without(r.spectators, playerID)
	r.logger.Info("GameRoom: %s joined (%d/%d)", playerID, len(r.players), r.Capacity())
	if err := r.publishRoomUpdate(ctx); err != nil {
		return err
	}
	if r.IsFull() {
		return r.startGame(ctx)
	}
	return nil
}

// Rejoin restores an offline player and syncs their client.
func (r *GameRoom) Rejoin(ctx context.Context, playerID string) error {
	if !r.isPlayer(playerID) {
		return r.fail(ctx, playerID, msgNotInRoom)
	}
	if !r.isOffline(playerID) {
		return r.fail(ctx, playerID, msgNotOffline)
	}

	delete(r.offline, playerID)
	r.logger.Info("GameRoom: %s rejoined", playerID)
	if err := r.publishRoomUpdate(ctx); err != nil {
		return err
	}
	sync := SyncClientState{ClientID: playerID, RoomState: r.RoomState()}
	if r.state != nil {
		sync.SharedView = r.state.SharedView()
		if view, ok := r.state.PrivateView(playerID); ok {
			sync.PrivateView = view
		}
	}
	return r.publish(ctx, sync)
}

// AddSpectator lets a non-seated client follow the room.
func (r *GameRoom) AddSpectator(ctx context.Context, playerID string) error {
	if r.isPlayer(playerID) {
		return r.fail(ctx, playerID, msgAlreadyPlaying)
	}
	if !lo.Contains(r.spectators, playerID) {
		r.spectators = append(r.spectators, playerID)
		r.logger.Debug("GameRoom: %s is watching", playerID)
	}
	sync := SyncClientState{ClientID: playerID, RoomState: r.RoomState()}
	if r.state != nil {
		sync.SharedView = r.state.SharedView()
	}
	return r.publish(ctx, sync)
}

// MakeMove parses and applies a move. A rejected move leaves the state untouched.
func (r *GameRoom) MakeMove(ctx context.Context, playerID string, raw json.RawMessage) error {
	if !r.isPlayer(playerID) {
		return r.fail(ctx, playerID, msgNotInRoom)
	}
	if r.state == nil {
		return r.fail(ctx, playerID, msgGameNotStarted)
	}

	move, err := r.parseMove(playerID, raw)
	if err != nil {
		return r.fail(ctx, playerID, err.Error())
	}
	next, err := r.logic.MakeMove(r.state, move)
	if err != nil {
		var invalid *game.InvalidMoveError
		if !errors.As(err, &invalid) {
			r.logger.Warn("GameRoom: move by %s failed: %v", playerID, err)
		}
		return r.fail(ctx, playerID, err.Error())
	}
	return r.advance(ctx, next)
}

// HandlePlayerDisconnected frees a seat between games and marks the player
// offline during one. Spectators leave silently.
func (r *GameRoom) HandlePlayerDisconnected(ctx context.Context, playerID string) error {
	switch {
	case r.isPlayer(playerID) && r.state != nil:
		r.offline[playerID] = struct{}{}
		r.logger.Info("GameRoom: %s went offline", playerID)
		return r.publishRoomUpdate(ctx)
	case r.isPlayer(playerID):
		r.players = lo.Without(r.players, playerID)
		r.logger.Info("GameRoom: %s left", playerID)
		return r.publishRoomUpdate(ctx)
	case lo.Contains(r.spectators, playerID):
		r.spectators = lo.Without(r.spectators, playerID)
	}
	return nil
}

// HandleTurnTimeout applies the game's timeout policy for playerID, if any.
func (r *GameRoom) HandleTurnTimeout(ctx context.Context, playerID string) error {
	if r.state == nil {
		return nil
	}
	next, ok := r.logic.StateAfterTimeout(r.state, playerID)
	if !ok {
		return nil
	}
	r.logger.Info("GameRoom: turn of %s timed out", playerID)
	return r.advance(ctx, next)
}

func (r *GameRoom) startGame(ctx context.Context) error {
	initial, err := r.logic.InitialState(slices.Clone(r.players))
	if err != nil {
		return fmt.Errorf("room %d: initial state: %w", r.id, err)
	}
	r.logger.Info("GameRoom: game started")
	return r.advance(ctx, initial)
}

// advance publishes every state until one waits for input or ends the game.
func (r *GameRoom) advance(ctx context.Context, state game.State) error {
	for state != nil {
		r.state = state
		recipients := r.recipients()
		update := GameStateUpdate{
			RoomID:       r.id,
			SharedView:   state.SharedView(),
			PrivateViews: state.PrivateViews(),
			Recipients:   recipients,
		}
		if err := r.publish(ctx, update); err != nil {
			return err
		}
		for _, ev := range r.logic.DerivedEvents(state, r.id, recipients) {
			if err := r.publish(ctx, ev); err != nil {
				return err
			}
		}
		if state.IsTerminal() {
			r.reset()
			return nil
		}

		next, err := r.logic.NextAutomatedState(state)
		if err != nil {
			return fmt.Errorf("room %d: automated step: %w", r.id, err)
		}
		state = next
	}
	return nil
}

func (r *GameRoom) reset() {
	r.logger.Info("GameRoom: game over, resetting")
	r.state = nil
	r.players = nil
	r.spectators = nil
	clear(r.offline)
}

func (r *GameRoom) publishRoomUpdate(ctx context.Context) error {
	return r.publish(ctx, GameRoomUpdate{RoomState: r.RoomState(), Recipients: r.recipients()})
}

func (r *GameRoom) fail(ctx context.Context, playerID, msg string) error {
	r.logger.Debug("GameRoom: request by %s failed: %s", playerID, msg)
	return r.publish(ctx, RequestFailed{PlayerID: playerID, ErrorMsg: msg})
}

func (r *GameRoom) publish(ctx context.Context, ev any) error {
	return r.bus.Publish(ctx, ev)
}

// recipients lists players in seat order, then spectators.
func (r *GameRoom) recipients() []string {
	out := make([]string, 0, len(r.players)+len(r.spectators))
	out = append(out, r.players...)
	return append(out, r.spectators...)
}

func (r *GameRoom) seated() []string {
	if r.players == nil {
		return []string{}
	}
	return r.players
}

func (r *GameRoom) isPlayer(id string) bool { return lo.Contains(r.players, id) }

func (r *GameRoom) isOffline(id string) bool {
	_, ok := r.offline[id]
	return ok
}
