package features

import (
	"context"
	"fmt"

	"github.com/voxelgameslib/voxelgameslib/pkg/event"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"github.com/voxelgameslib/voxelgameslib/pkg/scoreboard"
)

var ScoreboardInfo = feature.Info{
	Name:        "ScoreboardFeature",
	Author:      "VoxelGamesLib",
	Version:     "1.0",
	Description: "Shows a scoreboard with the game state to every player",
}

// ScoreboardFeature shows one scoreboard to all players of the phase.
type ScoreboardFeature struct {
	feature.Base
	Title string `expose:"title"`

	handler *scoreboard.Handler
	board   *scoreboard.Scoreboard
}

func NewScoreboardFeature(h *scoreboard.Handler) *ScoreboardFeature {
	return &ScoreboardFeature{handler: h}
}

func (*ScoreboardFeature) Info() feature.Info { return ScoreboardInfo }

func (f *ScoreboardFeature) Start(context.Context) error {
	g := f.Game()
	title := f.Title
	if title == "" {
		title = g.Mode()
	}
	f.board = f.handler.CreateScoreboard(title)
	f.board.SetLine("phase", "Phase: "+f.Phase().Name(), 2)
	for _, u := range g.Players() {
		f.board.AddViewer(u)
	}
	f.updatePlayers()

	event.OnGame(g.Bus(), f, g.ID(), func(e *game.JoinEvent) {
		f.board.AddViewer(e.User)
		f.updatePlayers()
	})
	event.OnGame(g.Bus(), f, g.ID(), func(e *game.LeaveEvent) {
		f.board.RemoveViewer(e.User)
		f.updatePlayers()
	})
	return nil
}

func (f *ScoreboardFeature) Stop(context.Context) error {
	if f.board != nil {
		f.handler.Remove(f.board)
		f.board = nil
	}
	return nil
}

// Scoreboard returns the live scoreboard, nil outside of the phase.
func (f *ScoreboardFeature) Scoreboard() *scoreboard.Scoreboard { return f.board }

func (f *ScoreboardFeature) updatePlayers() {
	f.board.SetLine("players", fmt.Sprintf("Players: %d", len(f.Game().Players())), 1)
}
