package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/samber/lo"

	"gamehub/internal/app"
	"gamehub/internal/config"
	"gamehub/internal/event"
	"gamehub/internal/hub"
	"gamehub/internal/ports"
)

const msgPlayerIDInUse = "Player id already in use by another client"

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Hub       *hub.Hub                    // Rooms, timers and the event loop
	Presences map[string]runtime.Presence // Map UserId -> Presence for targeted messaging
	Label     string                      // Last label pushed to Nakama

	logger     runtime.Logger
	dispatcher runtime.MatchDispatcher // Set on every match callback before the loop drains
}

// newMatchState builds the hub from the runtime env. Outbound messages are sent
// through whichever dispatcher the current callback supplied.
func newMatchState(env map[string]string, logger runtime.Logger, economy ports.EconomyPort, opts ...hub.Option) (*MatchState, error) {
	cfg, err := config.Load(env[EnvRoomsFile])
	if err != nil {
		return nil, err
	}
	if val, ok := env[EnvSchedulerTickMs]; ok {
		if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
			opts = append(opts, hub.WithTick(time.Duration(ms)*time.Millisecond))
		}
	}
	h, err := hub.New(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}

	state := &MatchState{
		Hub:       h,
		Presences: make(map[string]runtime.Presence),
		logger:    logger,
	}
	h.OnOutgoing(state.Send)
	if economy != nil {
		ports.NewSettler(economy, logger).Subscribe(h.Bus)
	}
	return state, nil
}

var _ ports.MessageSender = (*MatchState)(nil)

// Send delivers msg to the player's presence, if connected.
func (ms *MatchState) Send(_ context.Context, msg app.OutgoingMessage) {
	presence, ok := ms.Presences[msg.PlayerID]
	if !ok || ms.dispatcher == nil {
		return
	}
	data, err := encodeMessage(msg.Message)
	if err != nil {
		ms.logger.Error("Send: message for %s dropped: %v", msg.PlayerID, err)
		return
	}
	if err := ms.dispatcher.BroadcastMessage(OpMessage, data, []runtime.Presence{presence}, nil, true); err != nil {
		ms.logger.Warn("Send: failed to deliver to %s: %v", msg.PlayerID, err)
	}
}

// drain runs every queued loop task with dispatcher as the outbound channel.
func (ms *MatchState) drain(ctx context.Context, dispatcher runtime.MatchDispatcher) {
	ms.dispatcher = dispatcher
	ms.Hub.Loop.Drain(ctx)
}

// enqueue hands one event to the hub without blocking the match goroutine,
// which is the loop's only consumer. A full queue is drained once and retried.
func (ms *MatchState) enqueue(ctx context.Context, dispatcher runtime.MatchDispatcher, post func() error) error {
	err := post()
	if errors.Is(err, event.ErrLoopFull) {
		ms.logger.Warn("Enqueue: loop full with %d tasks, draining early", ms.Hub.Loop.Len())
		ms.drain(ctx, dispatcher)
		err = post()
	}
	return err
}

// gameInProgress reports whether any room has a running game.
func (ms *MatchState) gameInProgress() bool {
	return lo.SomeBy(ms.Hub.Manager.Rooms(), func(r *app.GameRoom) bool { return r.InProgress() })
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing hub match.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	var economy ports.EconomyPort
	if nk != nil {
		economy = NewNakamaEconomyAdapter(nk)
	}
	state, err := newMatchState(env, logger, economy)
	if err != nil {
		logger.Error("MatchInit: Failed to build hub: %v", err)
		return nil, 0, ""
	}

	label, err := buildLabel(0, state.Hub.Manager.RoomStates(""))
	if err != nil {
		logger.Error("MatchInit: Failed to build label: %v", err)
		return nil, 0, ""
	}
	state.Label = label
	return state, TickRate, label
}

// MatchJoinAttempt refuses a second connection for a user already present.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if _, exists := matchState.Presences[presence.GetUserId()]; exists {
		return state, false, msgPlayerIDInUse
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		logger.Debug("MatchJoin: User %s connected.", p.GetUserId())
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave reports each lost presence to the hub. The match ends once nobody
// is connected and no game is waiting for an offline player.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)
		if err := matchState.enqueue(ctx, dispatcher, func() error { return matchState.Hub.TryDisconnect(userID) }); err != nil {
			logger.Error("MatchLeave: Failed to queue disconnect of %s: %v", userID, err)
		}
		logger.Debug("MatchLeave: User %s left.", userID)
	}
	matchState.drain(ctx, dispatcher)

	if len(matchState.Presences) == 0 && !matchState.gameInProgress() {
		logger.Info("MatchLeave: Terminating empty hub match.")
		matchState.Hub.Close()
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpRequest:
			userID, raw := msg.GetUserId(), string(msg.GetData())
			if err := matchState.enqueue(ctx, dispatcher, func() error { return matchState.Hub.TrySubmit(userID, raw) }); err != nil {
				logger.Error("MatchLoop: Failed to queue request from %s: %v", userID, err)
			}
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	matchState.drain(ctx, dispatcher)
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(len(state.Presences), state.Hub.Manager.RoomStates(""))
	if err != nil {
		logger.Error("UpdateLabel: Failed to build: %v", err)
		return
	}
	if label == state.Label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.Label = label
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminating in %d seconds", graceSeconds)
	if matchState, ok := state.(*MatchState); ok {
		matchState.Hub.Close()
	}
	return state
}

// roomsSignal is the MatchSignal payload of the rooms RPC.
type roomsSignal struct {
	GameType string `json:"game_type"`
}

// MatchSignal answers room listings. It runs on the match goroutine, so the
// manager can be read directly.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	var req roomsSignal
	if data != "" {
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			logger.Warn("MatchSignal: Bad payload: %v", err)
			return state, ""
		}
	}
	resp, err := json.Marshal(app.RoomListPayload{Rooms: matchState.Hub.Manager.RoomStates(req.GameType)})
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal rooms: %v", err)
		return state, ""
	}
	return state, string(resp)
}
