// Package config loads the room catalogue: which rooms exist, which game each
// hosts and how its turn timer is set up.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gamehub/internal/game/chinesepoker"
	"gamehub/internal/game/rps"
	"gamehub/internal/game/tictactoe"
)

var (
	ErrNoRooms         = errors.New("no rooms configured")
	ErrDuplicateRoomID = errors.New("duplicate room id")
	ErrUnknownGameType = errors.New("unknown game type")
	ErrInvalidTimer    = errors.New("invalid turn timer")
)

// KnownGameTypes lists the games a room can host.
var KnownGameTypes = []string{chinesepoker.GameType, rps.GameType, tictactoe.GameType}

// TurnTimer arms a timeout for the active player, with reminders sent the
// given number of seconds before it expires.
type TurnTimer struct {
	TimeoutSeconds  int   `yaml:"timeout_seconds"`
	ReminderSeconds []int `yaml:"reminder_seconds,omitempty"`
}

func (t TurnTimer) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

func (t TurnTimer) Reminders() []time.Duration {
	out := make([]time.Duration, 0, len(t.ReminderSeconds))
	for _, s := range t.ReminderSeconds {
		out = append(out, time.Duration(s)*time.Second)
	}
	return out
}

type Room struct {
	ID           int                  `yaml:"id"`
	GameType     string               `yaml:"game_type"`
	ChinesePoker *chinesepoker.Config `yaml:"chinese_poker,omitempty"`
	TurnTimer    *TurnTimer           `yaml:"turn_timer,omitempty"`
}

// Config is the room catalogue, in the order rooms are offered to players.
type Config struct {
	Rooms []Room `yaml:"rooms"`
}

// Default is the stock catalogue: three Chinese Poker tables at increasing
// stakes, one rock paper scissors room and one tic-tac-toe room.
func Default() *Config {
	poker := func(threshold, credits int) *chinesepoker.Config {
		c := chinesepoker.DefaultConfig()
		c.GameOverPointThreshold = threshold
		c.CreditsPerPoint = credits
		return &c
	}
	timer := func() *TurnTimer {
		return &TurnTimer{TimeoutSeconds: 60, ReminderSeconds: []int{30, 5}}
	}
	return &Config{Rooms: []Room{
		{ID: 1, GameType: chinesepoker.GameType, ChinesePoker: poker(25, 100), TurnTimer: timer()},
		{ID: 2, GameType: chinesepoker.GameType, ChinesePoker: poker(25, 200), TurnTimer: timer()},
		{ID: 3, GameType: chinesepoker.GameType, ChinesePoker: poker(20, 400), TurnTimer: timer()},
		{ID: 4, GameType: rps.GameType},
		{ID: 5, GameType: tictactoe.GameType},
	}}
}

// Load reads and validates the catalogue at path. An empty path yields Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read room config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalogue. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode room config: %w", err)
	}
	for i := range c.Rooms {
		if c.Rooms[i].GameType == chinesepoker.GameType && c.Rooms[i].ChinesePoker == nil {
			cp := chinesepoker.DefaultConfig()
			c.Rooms[i].ChinesePoker = &cp
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if len(c.Rooms) == 0 {
		return ErrNoRooms
	}
	seen := make(map[int]bool, len(c.Rooms))
	for _, r := range c.Rooms {
		if seen[r.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateRoomID, r.ID)
		}
		seen[r.ID] = true

		switch r.GameType {
		case chinesepoker.GameType:
			if r.ChinesePoker != nil {
				if err := r.ChinesePoker.Validate(); err != nil {
					return fmt.Errorf("room %d: %w", r.ID, err)
				}
			}
		case rps.GameType, tictactoe.GameType:
		default:
			return fmt.Errorf("room %d: %w %q", r.ID, ErrUnknownGameType, r.GameType)
		}

		if t := r.TurnTimer; t != nil {
			if t.TimeoutSeconds <= 0 {
				return fmt.Errorf("room %d: %w: timeout_seconds must be positive", r.ID, ErrInvalidTimer)
			}
			for _, s := range t.ReminderSeconds {
				if s <= 0 || s >= t.TimeoutSeconds {
					return fmt.Errorf("room %d: %w: reminder %ds outside (0, %d)", r.ID, ErrInvalidTimer, s, t.TimeoutSeconds)
				}
			}
		}
	}
	return nil
}

// Marshal renders the catalogue as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
