package timer

import (
	"context"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"

	"gamehub/internal/event"
	"gamehub/internal/game"
)

// Registry routes game lifecycle events to the turn timer of their room.
// Rooms without a timer never time out.
type Registry struct {
	logger runtime.Logger

	mu     sync.RWMutex
	timers map[int]*TurnTimer
}

func NewRegistry(logger runtime.Logger) *Registry {
	return &Registry{logger: logger, timers: make(map[int]*TurnTimer)}
}

// Add installs the timer for roomID, replacing any previous one.
func (r *Registry) Add(roomID int, t *TurnTimer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers[roomID] = t
}

func (r *Registry) Timer(roomID int) (*TurnTimer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.timers[roomID]
	return t, ok
}

// Subscribe registers the lifecycle handlers on bus.
func (r *Registry) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, r.HandleGameStarted)
	event.Subscribe(bus, r.HandleGameEnded)
	event.Subscribe(bus, r.HandleTurnStarted)
	event.Subscribe(bus, r.HandleTurnEnded)
}

func (r *Registry) HandleGameStarted(_ context.Context, ev game.GameStarted) {
	if t, ok := r.Timer(ev.RoomID); ok {
		t.Reset()
	}
}

func (r *Registry) HandleGameEnded(_ context.Context, ev game.GameEnded) {
	if t, ok := r.Timer(ev.RoomID); ok {
		t.Reset()
	}
}

func (r *Registry) HandleTurnStarted(_ context.Context, ev game.TurnStarted) {
	if t, ok := r.Timer(ev.RoomID); ok {
		r.logger.Debug("TurnTimer: room %d turn started for %s", ev.RoomID, ev.PlayerID)
		t.Start(ev.PlayerID, ev.Recipients)
	}
}

func (r *Registry) HandleTurnEnded(_ context.Context, ev game.TurnEnded) {
	if t, ok := r.Timer(ev.RoomID); ok {
		t.Cancel(ev.PlayerID)
	}
}
