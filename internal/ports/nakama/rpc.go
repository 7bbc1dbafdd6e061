package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcRooms, rpcRooms)
}

// findHubMatch returns the id of a running hub match, or "" when there is none.
func findHubMatch(ctx context.Context, nk runtime.NakamaModule) (string, error) {
	limit := 1
	authoritative := true
	query := fmt.Sprintf("+label.%s:%s", MatchLabelKey_Game, LabelGame)

	matches, err := nk.MatchList(ctx, limit, authoritative, "", nil, nil, query)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0].MatchId, nil
}

// rpcRooms lists the hub's rooms. Payload: optional {"game_type": "..."}.
// Returns: {"rooms": [...]}.
func rpcRooms(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	matchID, err := findHubMatch(ctx, nk)
	if err != nil {
		logger.Error("rpcRooms: Failed to list matches: %v", err)
		return "", err
	}
	if matchID == "" {
		return `{"rooms":[]}`, nil
	}

	resp, err := nk.MatchSignal(ctx, matchID, payload)
	if err != nil {
		logger.Error("rpcRooms: Failed to signal match %s: %v", matchID, err)
		return "", err
	}
	return resp, nil
}
