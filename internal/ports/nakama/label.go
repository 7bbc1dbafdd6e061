package nakama

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"gamehub/internal/app"
)

// Label keys, usable in MatchList queries such as "+label.game:gamehub".
const (
	MatchLabelKey_Game      = "game"
	MatchLabelKey_Players   = "players"
	MatchLabelKey_OpenSeats = "open"
	MatchLabelKey_Playing   = "playing"
)

// buildLabel summarises the hub for match listing.
func buildLabel(connected int, rooms []app.RoomState) (string, error) {
	open := lo.SumBy(rooms, func(r app.RoomState) int { return r.Capacity - len(r.PlayerIDs) })
	playing := lo.CountBy(rooms, func(r app.RoomState) bool { return r.IsFull })

	label, err := structpb.NewStruct(map[string]any{
		MatchLabelKey_Game:      LabelGame,
		MatchLabelKey_Players:   connected,
		MatchLabelKey_OpenSeats: open,
		MatchLabelKey_Playing:   playing,
	})
	if err != nil {
		return "", fmt.Errorf("build label: %w", err)
	}
	raw, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", fmt.Errorf("marshal label: %w", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return "", fmt.Errorf("compact label: %w", err)
	}
	return compact.String(), nil
}
