package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/heroiclabs/nakama-common/runtime"
)

const msgPlayerIDInUse = "Player id already in use by another client"

var errPlayerIDInUse = errors.New(msgPlayerIDInUse)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

// client is one websocket connection bound to a player id.
type client struct {
	id       string
	playerID string
	conn     *websocket.Conn
	logger   runtime.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(playerID string, conn *websocket.Conn, logger runtime.Logger) *client {
	id := uuid.NewString()
	return &client{
		id:       id,
		playerID: playerID,
		conn:     conn,
		logger:   logger.WithFields(map[string]interface{}{"conn_id": id, "player_id": playerID}),
		send:     make(chan []byte, sendBuffer),
	}
}

// enqueue never blocks. A client that cannot keep up is disconnected.
func (c *client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		c.logger.Warn("Client: send buffer full, closing connection")
		_ = c.conn.Close()
		return false
	}
}

// shutdown stops the write pump. It is safe to call more than once.
func (c *client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ClientManager maps player ids to their single live connection.
type ClientManager struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewClientManager() *ClientManager {
	return &ClientManager{clients: make(map[string]*client)}
}

// add binds c to its player id, refusing an id that already has a connection.
func (m *ClientManager) add(c *client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.clients[c.playerID]; exists {
		return errPlayerIDInUse
	}
	m.clients[c.playerID] = c
	return nil
}

// remove unbinds c and reports whether it was the player's live connection.
func (m *ClientManager) remove(c *client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.clients[c.playerID]; ok && current == c {
		delete(m.clients, c.playerID)
		return true
	}
	return false
}

func (m *ClientManager) get(playerID string) (*client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[playerID]
	return c, ok
}

// Len returns the number of connected players.
func (m *ClientManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Connected reports whether playerID has a live connection.
func (m *ClientManager) Connected(playerID string) bool {
	_, ok := m.get(playerID)
	return ok
}

func (m *ClientManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.clients {
		c.shutdown()
		_ = c.conn.Close()
		delete(m.clients, id)
	}
}
