package hub

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/internal/app"
	"gamehub/internal/config"
	"gamehub/internal/logging"
	"gamehub/internal/timer"
)

type stubScheduler struct {
	events []any
}

func (s *stubScheduler) Schedule(ev any, _ time.Duration) timer.Handle {
	s.events = append(s.events, ev)
	return timer.Handle(len(s.events))
}

func (s *stubScheduler) Cancel(timer.Handle) {}

type outbox struct {
	msgs []app.OutgoingMessage
}

func (o *outbox) take() []app.OutgoingMessage {
	out := o.msgs
	o.msgs = nil
	return out
}

func newTestHub(t *testing.T) (*Hub, *outbox, *stubScheduler) {
	t.Helper()
	sched := &stubScheduler{}
	h, err := New(config.Default(), logging.Nop(), WithScheduler(sched), WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	t.Cleanup(h.Close)

	box := &outbox{}
	h.OnOutgoing(func(_ context.Context, msg app.OutgoingMessage) { box.msgs = append(box.msgs, msg) })
	return h, box, sched
}

func submitAndDrain(t *testing.T, h *Hub, playerID, raw string) {
	t.Helper()
	require.NoError(t, h.Submit(playerID, raw))
	h.Loop.Drain(context.Background())
}

func kinds(msgs []app.OutgoingMessage, playerID string) []string {
	var out []string
	for _, m := range msgs {
		if m.PlayerID != playerID {
			continue
		}
		kind := string(m.Message.MessageType)
		if p, ok := m.Message.Payload.(app.GameStatePayload); ok {
			if p.PrivateView != nil {
				kind += ":private"
			} else {
				kind += ":shared"
			}
		}
		out = append(out, kind)
	}
	return out
}

func TestRockPaperScissorsEndToEnd(t *testing.T) {
	h, box, _ := newTestHub(t)

	submitAndDrain(t, h, "Alice", `{"request_type":"JOIN_GAME_BY_TYPE","payload":{"game_type":"rock_paper_scissors"}}`)
	submitAndDrain(t, h, "Bob", `{"request_type":"JOIN_GAME_BY_ID","payload":{"room_id":4}}`)
	started := box.take()
	assert.Equal(t, []string{"GAME_ROOM_UPDATE", "GAME_ROOM_UPDATE", "GAME_STATE:shared"}, kinds(started, "Alice"))
	assert.Equal(t, []string{"GAME_ROOM_UPDATE", "GAME_STATE:shared"}, kinds(started, "Bob"))

	submitAndDrain(t, h, "Alice", `{"request_type":"MAKE_MOVE","payload":{"room_id":4,"move":{"selection":"ROCK"}}}`)
	moved := box.take()
	assert.Equal(t, []string{"GAME_STATE:private", "GAME_STATE:shared"}, kinds(moved, "Alice"))
	assert.Equal(t, []string{"GAME_STATE:shared"}, kinds(moved, "Bob"))

	submitAndDrain(t, h, "Bob", `{"request_type":"MAKE_MOVE","payload":{"room_id":4,"move":{"selection":"PAPER"}}}`)
	ended := box.take()
	assert.Equal(t, []string{"GAME_STATE:shared"}, kinds(ended, "Alice"))
	assert.Equal(t, []string{"GAME_STATE:private", "GAME_STATE:shared"}, kinds(ended, "Bob"))

	last, err := json.Marshal(ended[len(ended)-1].Message)
	require.NoError(t, err)
	assert.Contains(t, string(last), `"winner":"Bob"`)

	rooms := h.Manager.RoomStates("rock_paper_scissors")
	require.Len(t, rooms, 1)
	assert.Empty(t, rooms[0].PlayerIDs)
}

func TestRockPaperScissorsEchoesEachSelectionOnce(t *testing.T) {
	h, box, _ := newTestHub(t)

	submitAndDrain(t, h, "Alice", `{"request_type":"JOIN_GAME_BY_ID","payload":{"room_id":4}}`)
	submitAndDrain(t, h, "Bob", `{"request_type":"JOIN_GAME_BY_ID","payload":{"room_id":4}}`)
	submitAndDrain(t, h, "Alice", `{"request_type":"MAKE_MOVE","payload":{"room_id":4,"move":{"selection":"ROCK"}}}`)
	submitAndDrain(t, h, "Bob", `{"request_type":"MAKE_MOVE","payload":{"room_id":4,"move":{"selection":"SCISSORS"}}}`)

	echoes := map[string][]string{}
	for _, m := range box.take() {
		if p, ok := m.Message.Payload.(app.GameStatePayload); ok && p.PrivateView != nil {
			data, err := json.Marshal(p.PrivateView)
			require.NoError(t, err)
			echoes[m.PlayerID] = append(echoes[m.PlayerID], string(data))
		}
	}
	assert.Equal(t, map[string][]string{
		"Alice": {`{"selection":"ROCK"}`},
		"Bob":   {`{"selection":"SCISSORS"}`},
	}, echoes)
}

func TestBadRequestsBecomeErrors(t *testing.T) {
	h, box, _ := newTestHub(t)

	submitAndDrain(t, h, "Alice", `not json`)
	submitAndDrain(t, h, "Alice", `{"request_type":"JOIN_GAME_BY_ID","payload":{"room_id":99}}`)
	submitAndDrain(t, h, "Alice", `{"request_type":"MAKE_MOVE","payload":{"room_id":5,"move":{"cell_index":4}}}`)

	msgs := box.take()
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.Equal(t, app.MessageError, m.Message.MessageType)
	}
	assert.Equal(t, "Room with id 99 does not exist", msgs[1].Message.Payload.(app.ErrorPayload).Error)
	assert.Equal(t, "Player not in room", msgs[2].Message.Payload.(app.ErrorPayload).Error)
}

func TestChinesePokerTurnTimerForcesMove(t *testing.T) {
	h, box, sched := newTestHub(t)

	for _, id := range []string{"Alice", "Bob", "Charlie", "Diana"} {
		submitAndDrain(t, h, id, `{"request_type":"JOIN_GAME_BY_ID","payload":{"room_id":1}}`)
	}
	require.NotEmpty(t, sched.events)
	timeout, ok := sched.events[0].(timer.TurnTimeout)
	require.True(t, ok, "first scheduled event is %T", sched.events[0])
	assert.Equal(t, 1, timeout.RoomID)
	tt, ok := h.Timers.Timer(1)
	require.True(t, ok)
	assert.Equal(t, []string{timeout.PlayerID}, tt.Active())
	box.take()

	require.NoError(t, h.Loop.Publish(h.Bus, timeout))
	h.Loop.Drain(context.Background())

	msgs := box.take()
	require.NotEmpty(t, msgs)
	for _, m := range msgs {
		assert.NotEqual(t, app.MessageError, m.Message.MessageType)
	}
	assert.NotContains(t, tt.Active(), timeout.PlayerID)
	assert.Len(t, tt.Active(), 1)
}

func TestQueryRoomsFromOutsideTheLoop(t *testing.T) {
	h, _, _ := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = h.Run(ctx) }()

	rooms, err := h.QueryRooms(ctx, "")
	require.NoError(t, err)
	assert.Len(t, rooms, 5)

	poker, err := h.QueryRooms(ctx, "chinese_poker")
	require.NoError(t, err)
	assert.Len(t, poker, 3)
}
