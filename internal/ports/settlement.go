package ports

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"

	"gamehub/internal/app"
	"gamehub/internal/event"
	"gamehub/internal/game/chinesepoker"
)

// Settler applies the credits of a finished Chinese Poker game to the
// players' wallets.
type Settler struct {
	economy EconomyPort
	logger  runtime.Logger
}

func NewSettler(economy EconomyPort, logger runtime.Logger) *Settler {
	return &Settler{economy: economy, logger: logger}
}

func (s *Settler) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, s.HandleGameStateUpdate)
}

// HandleGameStateUpdate settles on the END_GAME step, which a game publishes once.
func (s *Settler) HandleGameStateUpdate(ctx context.Context, ev app.GameStateUpdate) {
	view, ok := ev.SharedView.(chinesepoker.SharedView)
	if !ok || view.Status != chinesepoker.StatusEndGame || view.Result == nil {
		return
	}
	updates := Settlement(ev.RoomID, view.Result)
	if err := s.economy.UpdateBalances(ctx, updates); err != nil {
		s.logger.Error("Settler: room %d settlement failed: %v", ev.RoomID, err)
		return
	}
	s.logger.Info("Settler: room %d settled for %d players", ev.RoomID, len(updates))
	for _, u := range updates {
		balance, err := s.economy.GetBalance(ctx, u.UserID)
		if err != nil {
			s.logger.Warn("Settler: balance of %s unavailable: %v", u.UserID, err)
			continue
		}
		s.logger.Info("Settler: %s %+d credits, balance %d", u.UserID, u.Amount, balance)
	}
}

// Settlement turns a game result into one wallet change per player.
func Settlement(roomID int, result *chinesepoker.Result) []WalletUpdate {
	updates := make([]WalletUpdate, 0, len(result.Players))
	for _, p := range result.Players {
		updates = append(updates, WalletUpdate{
			UserID: p.PlayerID,
			Amount: int64(p.Credits),
			Metadata: map[string]interface{}{
				"room_id": roomID,
				"points":  p.NumPoints,
			},
		})
	}
	return updates
}
