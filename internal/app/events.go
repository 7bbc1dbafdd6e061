package app

import (
	"encoding/json"

	"gamehub/internal/game"
)

// Inbound events, produced by the RequestParser and the transports.

type SocketRequest struct {
	PlayerID   string
	RawRequest string
}

type JoinGameByID struct {
	PlayerID string
	RoomID   int
}

type JoinGameByType struct {
	PlayerID string
	GameType string
}

type RejoinGame struct {
	PlayerID string
	RoomID   int
}

type WatchGame struct {
	PlayerID string
	RoomID   int
}

type MakeMove struct {
	PlayerID string
	RoomID   int
	Move     json.RawMessage
}

// QueryRooms asks for the room catalogue, optionally filtered by game type.
type QueryRooms struct {
	PlayerID string
	GameType string
}

type PlayerDisconnected struct {
	PlayerID string
}

// Result events, consumed by the MessageBuilder.

// RequestFailed is the only way a player-visible failure leaves a room or the manager.
type RequestFailed struct {
	PlayerID string
	ErrorMsg string
}

type GameRoomUpdate struct {
	RoomState  RoomState
	Recipients []string
}

// GameStateUpdate carries one state step. Private views go only to their owner.
type GameStateUpdate struct {
	RoomID       int
	SharedView   any
	PrivateViews []game.PrivateView
	Recipients   []string
}

// SyncClientState brings a single client up to date after a rejoin or watch.
type SyncClientState struct {
	ClientID    string
	RoomState   RoomState
	SharedView  any
	PrivateView any
}

type RoomList struct {
	PlayerID string
	Rooms    []RoomState
}

// OutgoingMessage is addressed to exactly one player. Transports deliver or drop it.
type OutgoingMessage struct {
	PlayerID string
	Message  Message
}

// RoomState is the public projection of a room.
type RoomState struct {
	RoomID         int      `json:"room_id"`
	Capacity       int      `json:"capacity"`
	PlayerIDs      []string `json:"player_ids"`
	OfflinePlayers []string `json:"offline_players"`
	IsFull         bool     `json:"is_full"`
	Configuration  any      `json:"configuration"`
}
