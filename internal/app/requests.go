package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"gamehub/internal/event"
	"gamehub/internal/game"
)

// RequestType names the inbound request kinds.
type RequestType string

const (
	RequestJoinGameByID   RequestType = "JOIN_GAME_BY_ID"
	RequestJoinGameByType RequestType = "JOIN_GAME_BY_TYPE"
	RequestRejoinGame     RequestType = "REJOIN_GAME"
	RequestWatchGame      RequestType = "WATCH_GAME"
	RequestMakeMove       RequestType = "MAKE_MOVE"
	RequestQueryRooms     RequestType = "QUERY_ROOMS"
)

// Request is the JSON envelope clients send.
type Request struct {
	RequestType RequestType     `json:"request_type" validate:"required,oneof=JOIN_GAME_BY_ID JOIN_GAME_BY_TYPE REJOIN_GAME WATCH_GAME MAKE_MOVE QUERY_ROOMS"`
	Payload     json.RawMessage `json:"payload"`
}

type RoomPayload struct {
	RoomID *int `json:"room_id" validate:"required"`
}

type GameTypePayload struct {
	GameType string `json:"game_type" validate:"required"`
}

type MakeMovePayload struct {
	RoomID *int            `json:"room_id" validate:"required"`
	Move   json.RawMessage `json:"move" validate:"required"`
}

type QueryRoomsPayload struct {
	GameType string `json:"game_type"`
}

// RequestParser turns raw socket text into typed request events.
type RequestParser struct {
	bus    *event.Bus
	logger runtime.Logger
}

func NewRequestParser(bus *event.Bus, logger runtime.Logger) *RequestParser {
	return &RequestParser{bus: bus, logger: logger}
}

func (p *RequestParser) Subscribe(bus *event.Bus) {
	event.SubscribeAwait(bus, p.HandleSocketRequest)
}

// HandleSocketRequest publishes the typed event for a raw request, or a
// RequestFailed naming what was wrong with it.
func (p *RequestParser) HandleSocketRequest(ctx context.Context, ev SocketRequest) error {
	if ev.PlayerID == "" {
		p.logger.Warn("RequestParser: dropping request without player id")
		return nil
	}
	parsed, err := Parse(ev.PlayerID, ev.RawRequest)
	if err != nil {
		p.logger.Debug("RequestParser: bad request from %s: %v", ev.PlayerID, err)
		return p.bus.Publish(ctx, RequestFailed{PlayerID: ev.PlayerID, ErrorMsg: err.Error()})
	}
	return p.bus.Publish(ctx, parsed)
}

// Parse decodes raw into the event for its request type.
func Parse(playerID, raw string) (any, error) {
	var req Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, fmt.Errorf(msgUnparsableRequest, raw, err)
	}
	if err := game.Validate(&req); err != nil {
		return nil, err
	}

	switch req.RequestType {
	case RequestJoinGameByID, RequestRejoinGame, RequestWatchGame:
		var body RoomPayload
		if err := game.Decode(req.Payload, &body); err != nil {
			return nil, err
		}
		switch req.RequestType {
		case RequestJoinGameByID:
			return JoinGameByID{PlayerID: playerID, RoomID: *body.RoomID}, nil
		case RequestRejoinGame:
			return RejoinGame{PlayerID: playerID, RoomID: *body.RoomID}, nil
		default:
			return WatchGame{PlayerID: playerID, RoomID: *body.RoomID}, nil
		}
	case RequestJoinGameByType:
		var body GameTypePayload
		if err := game.Decode(req.Payload, &body); err != nil {
			return nil, err
		}
		return JoinGameByType{PlayerID: playerID, GameType: body.GameType}, nil
	case RequestMakeMove:
		var body MakeMovePayload
		if err := game.Decode(req.Payload, &body); err != nil {
			return nil, err
		}
		return MakeMove{PlayerID: playerID, RoomID: *body.RoomID, Move: body.Move}, nil
	case RequestQueryRooms:
		var body QueryRoomsPayload
		if err := game.Decode(req.Payload, &body); err != nil {
			return nil, err
		}
		return QueryRooms{PlayerID: playerID, GameType: body.GameType}, nil
	}
	return nil, fmt.Errorf(msgUnknownRequestType, req.RequestType)
}
