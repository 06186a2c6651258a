package features

import (
	"context"

	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
)

var GameModeInfo = feature.Info{
	Name:        "GameModeFeature",
	Author:      "MiniDigger",
	Version:     "1.0",
	Description: "Simple feature that changes the gamemode of all players in the phase",
}

// GameModeFeature puts every player of the phase into one game mode.
type GameModeFeature struct {
	feature.Base
	Mode domain.GameMode `expose:"mode"`
}

func NewGameModeFeature() *GameModeFeature {
	return &GameModeFeature{Mode: domain.GameModeSurvival}
}

func (*GameModeFeature) Info() feature.Info { return GameModeInfo }

func (f *GameModeFeature) Start(context.Context) error {
	g := f.Game()
	for _, u := range g.Players() {
		u.Player().SetGameMode(f.Mode)
	}
	event.On(g.Bus(), f, func(e *game.JoinEvent) {
		if e.Game.ID() == f.Game().ID() {
			e.User.Player().SetGameMode(f.Mode)
		}
	})
	return nil
}

// SetGameMode changes the mode applied to future joiners.
func (f *GameModeFeature) SetGameMode(mode domain.GameMode) {
	f.Mode = mode
}
