package domain

import (
	"fmt"
	"strings"
)

// GameMode is the interaction mode of a player.
type GameMode string

const (
	GameModeSurvival  GameMode = "survival"
	GameModeCreative  GameMode = "creative"
	GameModeAdventure GameMode = "adventure"
	GameModeSpectator GameMode = "spectator"
)

// ParseGameMode accepts the mode name in any case.
func ParseGameMode(raw string) (GameMode, error) {
	switch mode := GameMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case GameModeSurvival, GameModeCreative, GameModeAdventure, GameModeSpectator:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGameMode, raw)
	}
}

// UnmarshalText lets config decoders accept "SURVIVAL" as well as "survival".
func (m *GameMode) UnmarshalText(text []byte) error {
	mode, err := ParseGameMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
