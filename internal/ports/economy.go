package ports

import "context"

// WalletCurrency is the wallet key game credits are settled in.
const WalletCurrency = "credits"

// WalletUpdate represents a single currency change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort defines the interface for managing player credits.
type EconomyPort interface {
	// GetBalance retrieves the current credit balance for a user.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies multiple wallet changes.
	// This is used at the end of a game to settle credits.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
