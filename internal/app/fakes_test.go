package app

import (
	"context"
	"encoding/json"

	"gamehub/internal/event"
	"gamehub/internal/game"
	"gamehub/internal/logging"
)

const fakeGameType = "fake_game"

// fakeState is named after the step that produced it.
type fakeState struct {
	name     string
	terminal bool
	players  []string
}

func (s fakeState) SharedView() any { return s.name }

func (s fakeState) PrivateViews() []game.PrivateView {
	out := make([]game.PrivateView, 0, len(s.players))
	for _, id := range s.players {
		out = append(out, game.PrivateView{PlayerID: id, View: s.name + ":" + id})
	}
	return out
}

func (s fakeState) PrivateView(playerID string) (any, bool) { return s.name + ":" + playerID, true }
func (s fakeState) IsTerminal() bool                        { return s.terminal }

type fakeMove struct {
	player string
	action string
}

// fakeLogic starts with START, runs two automatic steps after START and after
// every accepted move, and ends on the "end" action.
type fakeLogic struct {
	numPlayers int
}

var automated = map[string]string{
	"START":        "AUTO_START_A",
	"AUTO_START_A": "AUTO_START_B",
	"MOVE":         "AUTO_MOVE_A",
	"AUTO_MOVE_A":  "AUTO_MOVE_B",
}

func (l fakeLogic) NumPlayers() int    { return l.numPlayers }
func (l fakeLogic) GameType() string   { return fakeGameType }
func (l fakeLogic) Configuration() any { return nil }

func (l fakeLogic) InitialState(playerIDs []string) (game.State, error) {
	return fakeState{name: "START", players: playerIDs}, nil
}

func (l fakeLogic) MakeMove(state game.State, move game.Move) (game.State, error) {
	s := state.(fakeState)
	switch move.(fakeMove).action {
	case "bad":
		return nil, game.Invalid("Bad move")
	case "end":
		return fakeState{name: "END", terminal: true, players: s.players}, nil
	}
	return fakeState{name: "MOVE", players: s.players}, nil
}

func (l fakeLogic) NextAutomatedState(state game.State) (game.State, error) {
	s := state.(fakeState)
	next, ok := automated[s.name]
	if !ok {
		return nil, nil
	}
	return fakeState{name: next, players: s.players}, nil
}

func (l fakeLogic) DerivedEvents(game.State, int, []string) []any { return nil }

func (l fakeLogic) StateAfterTimeout(state game.State, _ string) (game.State, bool) {
	return fakeState{name: "TIMEOUT", players: state.(fakeState).players}, true
}

type fakeMovePayload struct {
	Action string `json:"action" validate:"required"`
}

func parseFakeMove(playerID string, raw json.RawMessage) (game.Move, error) {
	var p fakeMovePayload
	if err := game.Decode(raw, &p); err != nil {
		return nil, err
	}
	return fakeMove{player: playerID, action: p.Action}, nil
}

// recorder captures every result event published on a bus.
type recorder struct {
	roomUpdates  []GameRoomUpdate
	stateUpdates []GameStateUpdate
	failures     []RequestFailed
	syncs        []SyncClientState
	roomLists    []RoomList
	outgoing     []OutgoingMessage
}

func newRecorder(bus *event.Bus) *recorder {
	r := &recorder{}
	event.Subscribe(bus, func(_ context.Context, ev GameRoomUpdate) { r.roomUpdates = append(r.roomUpdates, ev) })
	event.Subscribe(bus, func(_ context.Context, ev GameStateUpdate) { r.stateUpdates = append(r.stateUpdates, ev) })
	event.Subscribe(bus, func(_ context.Context, ev RequestFailed) { r.failures = append(r.failures, ev) })
	event.Subscribe(bus, func(_ context.Context, ev SyncClientState) { r.syncs = append(r.syncs, ev) })
	event.Subscribe(bus, func(_ context.Context, ev RoomList) { r.roomLists = append(r.roomLists, ev) })
	event.Subscribe(bus, func(_ context.Context, ev OutgoingMessage) { r.outgoing = append(r.outgoing, ev) })
	return r
}

func (r *recorder) lastRoomUpdate() GameRoomUpdate { return r.roomUpdates[len(r.roomUpdates)-1] }

func (r *recorder) stateNames() []string {
	names := make([]string, 0, len(r.stateUpdates))
	for _, u := range r.stateUpdates {
		names = append(names, u.SharedView.(string))
	}
	return names
}

func (r *recorder) errorMessages() []string {
	out := make([]string, 0, len(r.failures))
	for _, f := range r.failures {
		out = append(out, f.ErrorMsg)
	}
	return out
}

func newFakeRoom(id, numPlayers int) (*GameRoom, *event.Bus, *recorder) {
	bus := event.NewBus()
	rec := newRecorder(bus)
	room := NewGameRoom(id, fakeLogic{numPlayers: numPlayers}, parseFakeMove, bus, logging.Nop())
	return room, bus, rec
}
