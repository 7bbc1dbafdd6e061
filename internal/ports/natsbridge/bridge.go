// Package natsbridge connects the hub to NATS subjects, so backend services
// can act as players without holding a websocket.
//
//	gamehub.requests.<player>    inbound request JSON
//	gamehub.disconnect.<player>  inbound, any payload
//	gamehub.players.<player>     outbound message JSON
package natsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nats-io/nats.go"

	"gamehub/internal/app"
	"gamehub/internal/ports"
)

const (
	RequestPrefix    = "gamehub.requests."
	DisconnectPrefix = "gamehub.disconnect."
	PlayerPrefix     = "gamehub.players."
)

// Conn is the part of *nats.Conn the bridge uses.
type Conn interface {
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Publish(subj string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

// Hub receives the bridged traffic.
type Hub interface {
	Submit(playerID, raw string) error
	Disconnect(playerID string) error
}

type Bridge struct {
	conn   Conn
	hub    Hub
	logger runtime.Logger
}

var _ ports.MessageSender = (*Bridge)(nil)

func New(conn Conn, hub Hub, logger runtime.Logger) *Bridge {
	return &Bridge{conn: conn, hub: hub, logger: logger}
}

// Connect dials url with reconnects enabled and connection events logged.
func Connect(url string, logger runtime.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("gamehub"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS: disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS: reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return nc, nil
}

// Run subscribes to the inbound subjects and serves them until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	requests, err := b.conn.Subscribe(RequestPrefix+">", b.handleRequest)
	if err != nil {
		return fmt.Errorf("subscribe requests: %w", err)
	}
	disconnects, err := b.conn.Subscribe(DisconnectPrefix+">", b.handleDisconnect)
	if err != nil {
		unsubscribe(requests)
		return fmt.Errorf("subscribe disconnects: %w", err)
	}
	b.logger.Info("NATS: bridge subscribed")

	<-ctx.Done()
	unsubscribe(requests)
	unsubscribe(disconnects)
	return nil
}

func unsubscribe(sub *nats.Subscription) {
	if sub != nil {
		_ = sub.Unsubscribe()
	}
}

func (b *Bridge) handleRequest(msg *nats.Msg) {
	playerID := strings.TrimPrefix(msg.Subject, RequestPrefix)
	if playerID == "" {
		return
	}
	if err := b.hub.Submit(playerID, string(msg.Data)); err != nil {
		b.logger.Error("NATS: failed to queue request from %s: %v", playerID, err)
	}
}

func (b *Bridge) handleDisconnect(msg *nats.Msg) {
	playerID := strings.TrimPrefix(msg.Subject, DisconnectPrefix)
	if playerID == "" {
		return
	}
	if err := b.hub.Disconnect(playerID); err != nil {
		b.logger.Error("NATS: failed to queue disconnect of %s: %v", playerID, err)
	}
}

// Send publishes msg on the player's subject.
func (b *Bridge) Send(_ context.Context, msg app.OutgoingMessage) {
	data, err := json.Marshal(msg.Message)
	if err != nil {
		b.logger.Error("NATS: message for %s dropped: %v", msg.PlayerID, err)
		return
	}
	if err := b.conn.Publish(PlayerPrefix+msg.PlayerID, data); err != nil {
		b.logger.Warn("NATS: publish to %s failed: %v", msg.PlayerID, err)
	}
}
