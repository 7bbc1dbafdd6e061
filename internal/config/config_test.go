package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/internal/game/chinesepoker"
)

func TestDefaultCatalogue(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Len(t, c.Rooms, 5)

	thresholds := []int{25, 25, 20}
	credits := []int{100, 200, 400}
	for i := 0; i < 3; i++ {
		r := c.Rooms[i]
		assert.Equal(t, i+1, r.ID)
		assert.Equal(t, chinesepoker.GameType, r.GameType)
		assert.Equal(t, thresholds[i], r.ChinesePoker.GameOverPointThreshold)
		assert.Equal(t, credits[i], r.ChinesePoker.CreditsPerPoint)
		assert.Equal(t, 60*time.Second, r.TurnTimer.Timeout())
		assert.Equal(t, []time.Duration{30 * time.Second, 5 * time.Second}, r.TurnTimer.Reminders())
	}
	assert.Equal(t, "rock_paper_scissors", c.Rooms[3].GameType)
	assert.Equal(t, "tic_tac_toe", c.Rooms[4].GameType)
	assert.Nil(t, c.Rooms[4].TurnTimer)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "poker room defaults its game config",
			yaml: "rooms:\n  - id: 9\n    game_type: chinese_poker\n",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, chinesepoker.DefaultConfig(), *c.Rooms[0].ChinesePoker)
			},
		},
		{
			name: "timer on tic tac toe",
			yaml: "rooms:\n  - id: 1\n    game_type: tic_tac_toe\n    turn_timer:\n      timeout_seconds: 10\n      reminder_seconds: [3]\n",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 10*time.Second, c.Rooms[0].TurnTimer.Timeout())
			},
		},
		{name: "empty", yaml: "rooms: []\n", wantErr: ErrNoRooms},
		{name: "duplicate id", yaml: "rooms:\n  - {id: 1, game_type: tic_tac_toe}\n  - {id: 1, game_type: rock_paper_scissors}\n", wantErr: ErrDuplicateRoomID},
		{name: "unknown game", yaml: "rooms:\n  - {id: 1, game_type: chess}\n", wantErr: ErrUnknownGameType},
		{name: "zero timeout", yaml: "rooms:\n  - {id: 1, game_type: tic_tac_toe, turn_timer: {timeout_seconds: 0}}\n", wantErr: ErrInvalidTimer},
		{name: "reminder past timeout", yaml: "rooms:\n  - {id: 1, game_type: tic_tac_toe, turn_timer: {timeout_seconds: 5, reminder_seconds: [5]}}\n", wantErr: ErrInvalidTimer},
		{name: "bad poker config", yaml: "rooms:\n  - {id: 1, game_type: chinese_poker, chinese_poker: {num_players: 5, cards_per_player: 13, game_over_point_threshold: 25}}\n", wantErr: chinesepoker.ErrInvalidConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse([]byte(tc.yaml))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, c)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("rooms:\n  - id: 1\n    game_type: tic_tac_toe\n    colour: red\n"))
	assert.Error(t, err)
}

func TestLoadRoundTripsMarshal(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
