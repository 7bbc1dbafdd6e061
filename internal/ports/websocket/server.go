// Package websocket serves the hub over websockets and a small HTTP API.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/julienschmidt/httprouter"
	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"github.com/skip2/go-qrcode"

	"gamehub/internal/app"
	"gamehub/internal/config"
	"gamehub/internal/ports"
)

const (
	defaultMaxConnections = 10000
	qrSize                = 320
	shutdownTimeout       = 5 * time.Second
)

// Hub is what the server needs from the running rooms.
type Hub interface {
	Submit(playerID, raw string) error
	Disconnect(playerID string) error
	QueryRooms(ctx context.Context, gameType string) ([]app.RoomState, error)
}

type Options struct {
	PublicURL      string // base URL encoded in join QR codes; derived from the request when empty
	MaxConnections int
	Version        string
}

// Server owns the websocket clients and the HTTP routes.
type Server struct {
	hub      Hub
	clients  *ClientManager
	pool     *ants.Pool
	router   *httprouter.Router
	upgrader websocket.Upgrader
	opts     Options
	logger   runtime.Logger
}

var _ ports.MessageSender = (*Server)(nil)

// New builds the server. Read pumps run on a bounded pool, so MaxConnections
// caps the number of concurrent sockets.
func New(hub Hub, logger runtime.Logger, opts Options) (*Server, error) {
	if opts.MaxConnections <= 0 {
		opts.MaxConnections = defaultMaxConnections
	}
	opts.PublicURL = strings.TrimSuffix(opts.PublicURL, "/")

	pool, err := ants.NewPool(opts.MaxConnections,
		ants.WithNonblocking(true),
		ants.WithExpiryDuration(60*time.Second),
		ants.WithPanicHandler(func(p interface{}) {
			logger.Error("Server: read pump panic: %v", p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	s := &Server{
		hub:     hub,
		clients: NewClientManager(),
		pool:    pool,
		router:  httprouter.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		opts:   opts,
		logger: logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.GET("/ws", s.serveWS)
	s.router.GET("/rooms", s.serveRooms)
	s.router.GET("/rooms/:type", s.serveRooms)
	s.router.GET("/rooms/:type/:id", s.serveRoom)
	s.router.GET("/rooms/:type/:id/qr", s.serveQR)
	s.router.GET("/healthz", s.serveHealthCheck)
	s.router.GET("/version", s.serveVersion)
	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, p interface{}) {
		s.logger.Error("Server: panic serving %s: %v", r.URL.Path, p)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("Server: listening on %s", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close drops every connection and releases the pool.
func (s *Server) Close() {
	s.clients.closeAll()
	s.pool.Release()
}

// Send delivers msg to the player's socket, if connected.
func (s *Server) Send(_ context.Context, msg app.OutgoingMessage) {
	c, ok := s.clients.get(msg.PlayerID)
	if !ok {
		return
	}
	data, err := json.Marshal(msg.Message)
	if err != nil {
		s.logger.Error("Server: message for %s dropped: %v", msg.PlayerID, err)
		return
	}
	c.enqueue(data)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		http.Error(w, "missing player_id", http.StatusBadRequest)
		return
	}
	if s.pool.Free() <= 0 {
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Server: upgrade failed for %s: %v", playerID, err)
		return
	}

	c := newClient(playerID, conn, s.logger)
	if err := s.clients.add(c); err != nil {
		s.reject(conn, err.Error())
		return
	}
	if err := s.pool.Submit(func() { s.readPump(c) }); err != nil {
		s.clients.remove(c)
		s.reject(conn, "server full")
		return
	}
	go s.writePump(c)
	c.logger.Info("Server: client connected, %d online", s.clients.Len())
}

// reject sends one ERROR message and closes a connection that never joined.
func (s *Server) reject(conn *websocket.Conn, reason string) {
	defer conn.Close()
	msg := app.Message{MessageType: app.MessageError, Payload: app.ErrorPayload{Error: reason}}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
}

func (s *Server) readPump(c *client) {
	defer s.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Server: read failed: %v", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if err := s.hub.Submit(c.playerID, string(data)); err != nil {
			c.logger.Error("Server: failed to queue request: %v", err)
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop runs once the read pump exits.
func (s *Server) drop(c *client) {
	c.shutdown()
	_ = c.conn.Close()
	if !s.clients.remove(c) {
		return
	}
	c.logger.Info("Server: client disconnected")
	if err := s.hub.Disconnect(c.playerID); err != nil {
		c.logger.Error("Server: failed to queue disconnect: %v", err)
	}
}

func (s *Server) serveRooms(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	gameType := p.ByName("type")
	if gameType != "" && !lo.Contains(config.KnownGameTypes, gameType) {
		http.Error(w, fmt.Sprintf("unknown game type %q", gameType), http.StatusNotFound)
		return
	}
	rooms, err := s.hub.QueryRooms(r.Context(), gameType)
	if err != nil {
		s.logger.Error("Server: room query failed: %v", err)
		http.Error(w, "room query failed", http.StatusServiceUnavailable)
		return
	}
	if rooms == nil {
		rooms = []app.RoomState{}
	}
	writeJSON(w, app.RoomListPayload{Rooms: rooms})
}

// lookupRoom resolves the :type and :id route parameters.
func (s *Server) lookupRoom(w http.ResponseWriter, r *http.Request, p httprouter.Params) (app.RoomState, bool) {
	id, err := strconv.Atoi(p.ByName("id"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return app.RoomState{}, false
	}
	rooms, err := s.hub.QueryRooms(r.Context(), p.ByName("type"))
	if err != nil {
		http.Error(w, "room query failed", http.StatusServiceUnavailable)
		return app.RoomState{}, false
	}
	room, ok := lo.Find(rooms, func(rs app.RoomState) bool { return rs.RoomID == id })
	if !ok {
		http.Error(w, fmt.Sprintf("Room with id %d does not exist", id), http.StatusNotFound)
		return app.RoomState{}, false
	}
	return room, true
}

func (s *Server) serveRoom(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if room, ok := s.lookupRoom(w, r, p); ok {
		writeJSON(w, room)
	}
}

// serveQR renders a PNG QR code of the room's join link.
func (s *Server) serveQR(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if _, ok := s.lookupRoom(w, r, p); !ok {
		return
	}

	link := s.baseURL(r) + strings.TrimSuffix(r.URL.Path, "/qr")
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("Server: qr generation failed: %v", err)
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) baseURL(r *http.Request) string {
	if s.opts.PublicURL != "" {
		return s.opts.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (s *Server) serveHealthCheck(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Ok\n"))
}

func (s *Server) serveVersion(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("gamehub v" + s.opts.Version + "\n"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
