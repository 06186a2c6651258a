package features

import (
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/scoreboard"
)

// Deps are the services builtin features need.
type Deps struct {
	Scoreboards *scoreboard.Handler
	MapDir      string
}

// Register adds every builtin feature to r.
func Register(r *feature.Registry, deps Deps) error {
	if deps.Scoreboards == nil {
		deps.Scoreboards = scoreboard.NewHandler()
	}
	builtins := []struct {
		info feature.Info
		ctor feature.Constructor
	}{
		{HealInfo, func() feature.Feature { return NewHealFeature() }},
		{GameModeInfo, func() feature.Feature { return NewGameModeFeature() }},
		{DurationInfo, func() feature.Feature { return NewDurationFeature() }},
		{MapInfo, func() feature.Feature { return NewMapFeature(deps.MapDir) }},
		{SpawnInfo, func() feature.Feature { return NewSpawnFeature() }},
		{ScoreboardInfo, func() feature.Feature { return NewScoreboardFeature(deps.Scoreboards) }},
	}
	for _, b := range builtins {
		if err := r.Register(b.info, b.ctor); err != nil {
			return err
		}
	}
	return nil
}
