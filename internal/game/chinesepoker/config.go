// Package chinesepoker implements the four-player climbing card game: dealing,
// rounds of beating the previous hand, points per match and credits at game end.
package chinesepoker

import (
	"errors"
	"fmt"

	"gamehub/internal/domain"
)

// GameType is the tag rooms and requests use for this game.
const GameType = "chinese_poker"

var ErrInvalidConfig = errors.New("invalid chinese poker configuration")

// Config is the per-room configuration. It is exposed to clients in room updates.
type Config struct {
	NumPlayers             int `json:"num_players" yaml:"num_players"`
	CardsPerPlayer         int `json:"cards_per_player" yaml:"cards_per_player"`
	GameOverPointThreshold int `json:"game_over_point_threshold" yaml:"game_over_point_threshold"`
	CreditsPerPoint        int `json:"credits_per_point" yaml:"credits_per_point"`
}

// DefaultConfig is four players with thirteen cards, ending at 25 points.
func DefaultConfig() Config {
	return Config{
		NumPlayers:             4,
		CardsPerPlayer:         13,
		GameOverPointThreshold: 25,
		CreditsPerPoint:        100,
	}
}

// Validate rejects configurations that cannot be dealt or never end.
func (c Config) Validate() error {
	switch {
	case c.NumPlayers < 2:
		return fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidConfig, c.NumPlayers)
	case c.CardsPerPlayer < 1:
		return fmt.Errorf("%w: cards_per_player must be positive", ErrInvalidConfig)
	case c.NumPlayers*c.CardsPerPlayer > domain.DeckSize:
		return fmt.Errorf("%w: %d players x %d cards exceeds the deck", ErrInvalidConfig, c.NumPlayers, c.CardsPerPlayer)
	case c.GameOverPointThreshold < 1:
		return fmt.Errorf("%w: game_over_point_threshold must be positive", ErrInvalidConfig)
	case c.CreditsPerPoint < 0:
		return fmt.Errorf("%w: credits_per_point cannot be negative", ErrInvalidConfig)
	}
	return nil
}
