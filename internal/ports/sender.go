// Package ports holds the interfaces the transports implement and the small
// transport-agnostic pieces they share.
package ports

import (
	"context"

	"gamehub/internal/app"
)

// MessageSender delivers one outbound message to a connected player. Messages
// for players without a connection are dropped.
type MessageSender interface {
	Send(ctx context.Context, msg app.OutgoingMessage)
}
