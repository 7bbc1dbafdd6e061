package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/internal/app"
	"gamehub/internal/config"
	"gamehub/internal/hub"
	"gamehub/internal/logging"
)

type wireMessage struct {
	MessageType app.MessageType `json:"message_type"`
	Payload     json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()
	h, err := hub.New(config.Default(), logging.Nop())
	require.NoError(t, err)

	s, err := New(h, logging.Nop(), Options{Version: "1.2.3", MaxConnections: 8})
	require.NoError(t, err)
	h.OnOutgoing(s.Send)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Run(ctx)
	}()

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
		cancel()
		<-done
	})
	return ts, h
}

func dial(t *testing.T, ts *httptest.Server, playerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?player_id=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wireMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestJoinOverWebsocket(t *testing.T) {
	ts, _ := newTestServer(t)
	alice := dial(t, ts, "Alice")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage,
		[]byte(`{"request_type":"JOIN_GAME_BY_ID","payload":{"room_id":4}}`)))

	msg := read(t, alice)
	assert.Equal(t, app.MessageGameRoomUpdate, msg.MessageType)
	var room app.RoomState
	require.NoError(t, json.Unmarshal(msg.Payload, &room))
	assert.Equal(t, 4, room.RoomID)
	assert.Equal(t, []string{"Alice"}, room.PlayerIDs)
}

func TestMalformedRequestGetsError(t *testing.T) {
	ts, _ := newTestServer(t)
	alice := dial(t, ts, "Alice")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"request_type":`)))
	msg := read(t, alice)
	assert.Equal(t, app.MessageError, msg.MessageType)
}

func TestDuplicatePlayerIDRefused(t *testing.T) {
	ts, _ := newTestServer(t)
	dial(t, ts, "Alice")

	second := dial(t, ts, "Alice")
	msg := read(t, second)
	assert.Equal(t, app.MessageError, msg.MessageType)
	assert.JSONEq(t, `{"error":"Player id already in use by another client"}`, string(msg.Payload))

	_, _, err := second.ReadMessage()
	assert.Error(t, err)
}

func TestMissingPlayerID(t *testing.T) {
	ts, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDisconnectFreesLobbySeat(t *testing.T) {
	ts, h := newTestServer(t)
	alice := dial(t, ts, "Alice")
	require.NoError(t, alice.WriteMessage(websocket.TextMessage,
		[]byte(`{"request_type":"JOIN_GAME_BY_ID","payload":{"room_id":4}}`)))
	read(t, alice)

	require.NoError(t, alice.Close())

	require.Eventually(t, func() bool {
		rooms, err := h.QueryRooms(context.Background(), "rock_paper_scissors")
		return err == nil && len(rooms) == 1 && len(rooms[0].PlayerIDs) == 0
	}, 5*time.Second, 20*time.Millisecond)

	// the id is free again
	again := dial(t, ts, "Alice")
	require.NoError(t, again.WriteMessage(websocket.TextMessage,
		[]byte(`{"request_type":"QUERY_ROOMS","payload":{}}`)))
	assert.Equal(t, app.MessageRoomList, read(t, again).MessageType)
}

func TestRoomRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name      string
		path      string
		status    int
		wantRooms int
	}{
		{name: "all rooms", path: "/rooms", status: http.StatusOK, wantRooms: 5},
		{name: "by type", path: "/rooms/chinese_poker", status: http.StatusOK, wantRooms: 3},
		{name: "unknown type", path: "/rooms/chess", status: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+tc.path)
			require.Equal(t, tc.status, resp.StatusCode)
			if tc.status != http.StatusOK {
				return
			}
			var payload app.RoomListPayload
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Len(t, payload.Rooms, tc.wantRooms)
		})
	}
}

func TestSingleRoomAndQR(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/rooms/tic_tac_toe/5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var room app.RoomState
	require.NoError(t, json.Unmarshal(body, &room))
	assert.Equal(t, 5, room.RoomID)
	assert.Equal(t, 2, room.Capacity)

	resp, body = get(t, ts.URL+"/rooms/tic_tac_toe/5/qr")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "\x89PNG"))

	resp, body = get(t, ts.URL+"/rooms/tic_tac_toe/4/qr")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "Room with id 4 does not exist")

	resp, _ = get(t, ts.URL+"/rooms/tic_tac_toe/x")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndVersion(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ok\n", string(body))

	_, body = get(t, ts.URL+"/version")
	assert.Equal(t, "gamehub v1.2.3\n", string(body))
}

func TestClientManager(t *testing.T) {
	m := NewClientManager()
	first := &client{playerID: "Alice", send: make(chan []byte, 1)}
	second := &client{playerID: "Alice", send: make(chan []byte, 1)}

	require.NoError(t, m.add(first))
	assert.EqualError(t, m.add(second), msgPlayerIDInUse)
	assert.True(t, m.Connected("Alice"))
	assert.Equal(t, 1, m.Len())

	assert.False(t, m.remove(second), "a refused connection does not own the id")
	assert.True(t, m.remove(first))
	assert.False(t, m.Connected("Alice"))

	require.NoError(t, m.add(second))
}
