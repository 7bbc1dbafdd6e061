// Package hub wires the event bus, the loop, the rooms and their timers from a
// room catalogue. Transports talk to a Hub and nothing else.
package hub

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"gamehub/internal/app"
	"gamehub/internal/config"
	"gamehub/internal/event"
	"gamehub/internal/game"
	"gamehub/internal/game/chinesepoker"
	"gamehub/internal/game/rps"
	"gamehub/internal/game/tictactoe"
	"gamehub/internal/timer"
)

const defaultLoopCapacity = 1024

type options struct {
	rng          *rand.Rand
	scheduler    timer.Scheduler
	tick         time.Duration
	loopCapacity int
}

type Option func(*options)

// WithRand fixes the dealing source, for tests and replays.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithScheduler replaces the timing wheel.
func WithScheduler(s timer.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithTick sets the timing wheel resolution.
func WithTick(d time.Duration) Option {
	return func(o *options) { o.tick = d }
}

func WithLoopCapacity(n int) Option {
	return func(o *options) { o.loopCapacity = n }
}

// Hub is one running set of rooms.
type Hub struct {
	Bus     *event.Bus
	Loop    *event.Loop
	Manager *app.RoomManager
	Timers  *timer.Registry

	cfg    *config.Config
	logger runtime.Logger
	wheel  *timer.WheelScheduler
}

// New builds every room in cfg and subscribes all handlers.
func New(cfg *config.Config, logger runtime.Logger, opts ...Option) (*Hub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{loopCapacity: defaultLoopCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	h := &Hub{
		Bus:    event.NewBus(),
		Loop:   event.NewLoop(o.loopCapacity, logger),
		Timers: timer.NewRegistry(logger),
		cfg:    cfg,
		logger: logger,
	}
	scheduler := o.scheduler
	if scheduler == nil {
		var wopts []timer.WheelOption
		if o.tick > 0 {
			wopts = append(wopts, timer.WithTick(o.tick))
		}
		h.wheel = timer.NewWheelScheduler(h.Loop, h.Bus, logger, wopts...)
		scheduler = h.wheel
	}

	rooms := make([]*app.GameRoom, 0, len(cfg.Rooms))
	for _, rc := range cfg.Rooms {
		logic, parse, err := newGame(rc, o.rng)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("room %d: %w", rc.ID, err)
		}
		rooms = append(rooms, app.NewGameRoom(rc.ID, logic, parse, h.Bus, logger))
		if rc.TurnTimer != nil {
			h.Timers.Add(rc.ID, timer.NewTurnTimer(rc.ID, rc.TurnTimer.Timeout(), rc.TurnTimer.Reminders(), scheduler))
		}
	}
	manager, err := app.NewRoomManager(rooms, h.Bus, logger)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.Manager = manager

	app.NewRequestParser(h.Bus, logger).Subscribe(h.Bus)
	h.Manager.Subscribe(h.Bus)
	app.NewMessageBuilder(h.Bus).Subscribe(h.Bus)
	h.Timers.Subscribe(h.Bus)

	logger.Info("Hub: %d rooms ready", len(rooms))
	return h, nil
}

func newGame(rc config.Room, rng *rand.Rand) (game.Logic, game.MoveParser, error) {
	switch rc.GameType {
	case chinesepoker.GameType:
		cfg := chinesepoker.DefaultConfig()
		if rc.ChinesePoker != nil {
			cfg = *rc.ChinesePoker
		}
		// each table gets its own source; *rand.Rand is not safe to share
		logic, err := chinesepoker.NewLogic(cfg, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			return nil, nil, err
		}
		return logic, chinesepoker.ParseMove, nil
	case rps.GameType:
		return rps.Logic{}, rps.ParseMove, nil
	case tictactoe.GameType:
		return tictactoe.Logic{}, tictactoe.ParseMove, nil
	}
	return nil, nil, fmt.Errorf("%w %q", config.ErrUnknownGameType, rc.GameType)
}

// Config returns the catalogue the hub was built from.
func (h *Hub) Config() *config.Config { return h.cfg }

// OnOutgoing registers a sender for every outbound message.
func (h *Hub) OnOutgoing(send func(ctx context.Context, msg app.OutgoingMessage)) {
	event.Subscribe(h.Bus, send)
}

// Submit queues a raw request from playerID.
func (h *Hub) Submit(playerID, raw string) error {
	return h.Loop.Publish(h.Bus, app.SocketRequest{PlayerID: playerID, RawRequest: raw})
}

// Disconnect queues the loss of playerID's connection.
func (h *Hub) Disconnect(playerID string) error {
	return h.Loop.Publish(h.Bus, app.PlayerDisconnected{PlayerID: playerID})
}

// TrySubmit is Submit for hosts that drain the loop themselves. It fails with
// event.ErrLoopFull instead of blocking.
func (h *Hub) TrySubmit(playerID, raw string) error {
	return h.Loop.TryPublish(h.Bus, app.SocketRequest{PlayerID: playerID, RawRequest: raw})
}

// TryDisconnect is the non-blocking form of Disconnect.
func (h *Hub) TryDisconnect(playerID string) error {
	return h.Loop.TryPublish(h.Bus, app.PlayerDisconnected{PlayerID: playerID})
}

// QueryRooms reads room projections from outside the loop. It blocks until the
// loop has served the read, so it must not be called from a loop task.
func (h *Hub) QueryRooms(ctx context.Context, gameType string) ([]app.RoomState, error) {
	result := make(chan []app.RoomState, 1)
	err := h.Loop.Post(func(context.Context) {
		result <- h.Manager.RoomStates(gameType)
	})
	if err != nil {
		return nil, err
	}
	select {
	case rooms := <-result:
		return rooms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run serves the loop until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	err := h.Loop.Run(ctx)
	h.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops the loop and the timing wheel it owns.
func (h *Hub) Close() {
	h.Loop.Close()
	if h.wheel != nil {
		h.wheel.Stop()
	}
}
