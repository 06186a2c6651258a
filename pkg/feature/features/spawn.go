package features

import (
	"context"
	"fmt"

	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"github.com/voxelgameslib/voxelgameslib/pkg/gamemap"
)

var SpawnInfo = feature.Info{
	Name:        "SpawnFeature",
	Author:      "VoxelGamesLib",
	Version:     "1.0",
	Description: "Teleports players to the spawn markers of the map",
}

// SpawnFeature spreads players over the map markers named Marker.
type SpawnFeature struct {
	feature.Base
	Marker string `expose:"marker"`

	spawns []gamemap.Marker
	next   int
}

func NewSpawnFeature() *SpawnFeature {
	return &SpawnFeature{Marker: "spawn"}
}

func (*SpawnFeature) Info() feature.Info { return SpawnInfo }

func (*SpawnFeature) Dependencies() []string { return []string{MapInfo.Name} }

func (f *SpawnFeature) Start(context.Context) error {
	mf, ok := game.FeatureOf[*MapFeature](f.Phase())
	if !ok || mf.Map() == nil {
		return fmt.Errorf("%s: map is not loaded", SpawnInfo.Name)
	}
	f.spawns = mf.Map().MarkersWithData(f.Marker)
	if len(f.spawns) == 0 {
		return fmt.Errorf("%s: map %s has no %q markers", SpawnInfo.Name, mf.Map().Name, f.Marker)
	}
	f.next = 0

	g := f.Game()
	for _, u := range g.Players() {
		f.Spawn(u)
	}
	event.OnGame(g.Bus(), f, g.ID(), func(e *game.JoinEvent) {
		f.Spawn(e.User)
	})
	return nil
}

// Spawn teleports u to the next spawn marker.
func (f *SpawnFeature) Spawn(u *domain.User) {
	if len(f.spawns) == 0 {
		return
	}
	m := f.spawns[f.next%len(f.spawns)]
	f.next++
	u.Player().Teleport(m.Loc())
}
