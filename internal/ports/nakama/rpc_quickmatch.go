package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients asking for the hub match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// rpcQuickMatch returns the running hub match, creating it when none exists.
func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	matchID, err := findHubMatch(ctx, nk)
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: MatchList error: %v", userID, err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID}
	if matchID == "" {
		matchID, err = nk.MatchCreate(ctx, MatchNameGameHub, map[string]interface{}{})
		if err != nil {
			logger.Error("rpcQuickMatch [User:%s]: MatchCreate error: %v", userID, err)
			return "", err
		}
		logger.Info("rpcQuickMatch [User:%s]: Created hub match %s", userID, matchID)
		resp = QuickMatchResponse{MatchID: matchID, IsNew: true}
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
