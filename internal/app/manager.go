package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/samber/lo"

	"gamehub/internal/event"
	"gamehub/internal/timer"
)

var (
	ErrNoRooms       = errors.New("no rooms configured")
	ErrDuplicateRoom = errors.New("duplicate room id")
	ErrNilRoom       = errors.New("nil room")
)

// RoomManager routes room-directed requests to their GameRoom.
type RoomManager struct {
	bus    *event.Bus
	logger runtime.Logger
	rooms  []*GameRoom
	byID   map[int]*GameRoom
}

// NewRoomManager keeps rooms in the given order; ids must be unique.
func NewRoomManager(rooms []*GameRoom, bus *event.Bus, logger runtime.Logger) (*RoomManager, error) {
	if len(rooms) == 0 {
		return nil, ErrNoRooms
	}
	byID := make(map[int]*GameRoom, len(rooms))
	for _, room := range rooms {
		if room == nil {
			return nil, ErrNilRoom
		}
		if _, ok := byID[room.ID()]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateRoom, room.ID())
		}
		byID[room.ID()] = room
	}
	return &RoomManager{bus: bus, logger: logger, rooms: rooms, byID: byID}, nil
}

// Subscribe registers the manager's handlers on bus.
func (m *RoomManager) Subscribe(bus *event.Bus) {
	event.SubscribeAwait(bus, m.HandleJoinGameByID)
	event.SubscribeAwait(bus, m.HandleJoinGameByType)
	event.SubscribeAwait(bus, m.HandleRejoinGame)
	event.SubscribeAwait(bus, m.HandleWatchGame)
	event.SubscribeAwait(bus, m.HandleMakeMove)
	event.SubscribeAwait(bus, m.HandlePlayerDisconnected)
	event.SubscribeAwait(bus, m.HandleTurnTimeout)
	event.SubscribeAwait(bus, m.HandleQueryRooms)
}

func (m *RoomManager) Room(id int) (*GameRoom, bool) {
	room, ok := m.byID[id]
	return room, ok
}

func (m *RoomManager) Rooms() []*GameRoom { return m.rooms }

// RoomStates projects every room, or only rooms of gameType when it is set.
func (m *RoomManager) RoomStates(gameType string) []RoomState {
	rooms := m.rooms
	if gameType != "" {
		rooms = lo.Filter(rooms, func(r *GameRoom, _ int) bool { return r.GameType() == gameType })
	}
	return lo.Map(rooms, func(r *GameRoom, _ int) RoomState { return r.RoomState() })
}

func (m *RoomManager) HandleJoinGameByID(ctx context.Context, ev JoinGameByID) error {
	room, err := m.lookup(ctx, ev.PlayerID, ev.RoomID)
	if room == nil {
		return err
	}
	return room.Join(ctx, ev.PlayerID)
}

func (m *RoomManager) HandleJoinGameByType(ctx context.Context, ev JoinGameByType) error {
	room, ok := lo.Find(m.rooms, func(r *GameRoom) bool {
		return r.GameType() == ev.GameType && !r.IsFull()
	})
	if !ok {
		return m.fail(ctx, ev.PlayerID, fmt.Sprintf(msgNoRoomForGameType, ev.GameType))
	}
	return room.Join(ctx, ev.PlayerID)
}

func (m *RoomManager) HandleRejoinGame(ctx context.Context, ev RejoinGame) error {
	room, err := m.lookup(ctx, ev.PlayerID, ev.RoomID)
	if room == nil {
		return err
	}
	return room.Rejoin(ctx, ev.PlayerID)
}

func (m *RoomManager) HandleWatchGame(ctx context.Context, ev WatchGame) error {
	room, err := m.lookup(ctx, ev.PlayerID, ev.RoomID)
	if room == nil {
		return err
	}
	return room.AddSpectator(ctx, ev.PlayerID)
}

func (m *RoomManager) HandleMakeMove(ctx context.Context, ev MakeMove) error {
	room, err := m.lookup(ctx, ev.PlayerID, ev.RoomID)
	if room == nil {
		return err
	}
	return room.MakeMove(ctx, ev.PlayerID, ev.Move)
}

func (m *RoomManager) HandlePlayerDisconnected(ctx context.Context, ev PlayerDisconnected) error {
	for _, room := range m.rooms {
		if err := room.HandlePlayerDisconnected(ctx, ev.PlayerID); err != nil {
			return err
		}
	}
	return nil
}

func (m *RoomManager) HandleTurnTimeout(ctx context.Context, ev timer.TurnTimeout) error {
	room, ok := m.byID[ev.RoomID]
	if !ok {
		m.logger.Warn("RoomManager: timeout for unknown room %d", ev.RoomID)
		return nil
	}
	return room.HandleTurnTimeout(ctx, ev.PlayerID)
}

func (m *RoomManager) HandleQueryRooms(ctx context.Context, ev QueryRooms) error {
	return m.bus.Publish(ctx, RoomList{PlayerID: ev.PlayerID, Rooms: m.RoomStates(ev.GameType)})
}

// lookup returns the room, or nil plus the result of reporting the miss.
func (m *RoomManager) lookup(ctx context.Context, playerID string, roomID int) (*GameRoom, error) {
	if room, ok := m.byID[roomID]; ok {
		return room, nil
	}
	return nil, m.fail(ctx, playerID, fmt.Sprintf(msgRoomDoesNotExist, roomID))
}

func (m *RoomManager) fail(ctx context.Context, playerID, msg string) error {
	m.logger.Debug("RoomManager: request by %s failed: %s", playerID, msg)
	return m.bus.Publish(ctx, RequestFailed{PlayerID: playerID, ErrorMsg: msg})
}
