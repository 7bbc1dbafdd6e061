package app

import (
	"context"

	"gamehub/internal/event"
	"gamehub/internal/timer"
)

// MessageType tags every outbound message.
type MessageType string

const (
	MessageGameRoomUpdate MessageType = "GAME_ROOM_UPDATE"
	MessageGameState      MessageType = "GAME_STATE"
	MessageError          MessageType = "ERROR"
	MessageTurnTimerAlert MessageType = "TURN_TIMER_ALERT"
	MessageRoomList       MessageType = "ROOM_LIST"
)

// Message is the JSON envelope sent to clients.
type Message struct {
	MessageType MessageType `json:"message_type"`
	Payload     any         `json:"payload"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type GameStatePayload struct {
	RoomID      int `json:"room_id"`
	SharedView  any `json:"shared_view,omitempty"`
	PrivateView any `json:"private_view,omitempty"`
}

type TurnTimerAlertPayload struct {
	RoomID           int    `json:"room_id"`
	PlayerID         string `json:"player_id"`
	SecondsRemaining int    `json:"seconds_remaining"`
}

type RoomListPayload struct {
	Rooms []RoomState `json:"rooms"`
}

// MessageBuilder turns result events into one OutgoingMessage per recipient.
type MessageBuilder struct {
	bus *event.Bus
}

func NewMessageBuilder(bus *event.Bus) *MessageBuilder {
	return &MessageBuilder{bus: bus}
}

func (b *MessageBuilder) Subscribe(bus *event.Bus) {
	event.SubscribeAwait(bus, b.HandleRequestFailed)
	event.SubscribeAwait(bus, b.HandleGameRoomUpdate)
	event.SubscribeAwait(bus, b.HandleGameStateUpdate)
	event.SubscribeAwait(bus, b.HandleSyncClientState)
	event.SubscribeAwait(bus, b.HandleTurnTimerAlert)
	event.SubscribeAwait(bus, b.HandleRoomList)
}

func (b *MessageBuilder) HandleRequestFailed(ctx context.Context, ev RequestFailed) error {
	return b.send(ctx, ev.PlayerID, Message{MessageType: MessageError, Payload: ErrorPayload{Error: ev.ErrorMsg}})
}

func (b *MessageBuilder) HandleGameRoomUpdate(ctx context.Context, ev GameRoomUpdate) error {
	msg := Message{MessageType: MessageGameRoomUpdate, Payload: ev.RoomState}
	for _, id := range ev.Recipients {
		if err := b.send(ctx, id, msg); err != nil {
			return err
		}
	}
	return nil
}

// HandleGameStateUpdate sends each private view to its owner, then the shared
// view to every recipient.
func (b *MessageBuilder) HandleGameStateUpdate(ctx context.Context, ev GameStateUpdate) error {
	for _, pv := range ev.PrivateViews {
		msg := Message{MessageType: MessageGameState, Payload: GameStatePayload{RoomID: ev.RoomID, PrivateView: pv.View}}
		if err := b.send(ctx, pv.PlayerID, msg); err != nil {
			return err
		}
	}
	shared := Message{MessageType: MessageGameState, Payload: GameStatePayload{RoomID: ev.RoomID, SharedView: ev.SharedView}}
	for _, id := range ev.Recipients {
		if err := b.send(ctx, id, shared); err != nil {
			return err
		}
	}
	return nil
}

func (b *MessageBuilder) HandleSyncClientState(ctx context.Context, ev SyncClientState) error {
	if err := b.send(ctx, ev.ClientID, Message{MessageType: MessageGameRoomUpdate, Payload: ev.RoomState}); err != nil {
		return err
	}
	if ev.SharedView == nil && ev.PrivateView == nil {
		return nil
	}
	payload := GameStatePayload{RoomID: ev.RoomState.RoomID, SharedView: ev.SharedView, PrivateView: ev.PrivateView}
	return b.send(ctx, ev.ClientID, Message{MessageType: MessageGameState, Payload: payload})
}

func (b *MessageBuilder) HandleTurnTimerAlert(ctx context.Context, ev timer.TurnTimerAlert) error {
	msg := Message{MessageType: MessageTurnTimerAlert, Payload: TurnTimerAlertPayload{
		RoomID:           ev.RoomID,
		PlayerID:         ev.PlayerID,
		SecondsRemaining: ev.SecondsRemaining,
	}}
	for _, id := range ev.Recipients {
		if err := b.send(ctx, id, msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *MessageBuilder) HandleRoomList(ctx context.Context, ev RoomList) error {
	rooms := ev.Rooms
	if rooms == nil {
		rooms = []RoomState{}
	}
	return b.send(ctx, ev.PlayerID, Message{MessageType: MessageRoomList, Payload: RoomListPayload{Rooms: rooms}})
}

func (b *MessageBuilder) send(ctx context.Context, playerID string, msg Message) error {
	return b.bus.Publish(ctx, OutgoingMessage{PlayerID: playerID, Message: msg})
}
