package nakama

import (
	"encoding/json"
	"fmt"

	"gamehub/internal/app"
)

// encodeMessage renders a server message in its wire form.
func encodeMessage(msg app.Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.MessageType, err)
	}
	return data, nil
}
