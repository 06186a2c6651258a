package features

import (
	"context"

	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
)

var HealInfo = feature.Info{
	Name:        "HealFeature",
	Author:      "MiniDigger",
	Version:     "1.0",
	Description: "Small feature that heals and feeds players on join",
}

// HealFeature heals and feeds every player when the phase starts and every joiner.
type HealFeature struct {
	feature.Base
	Heal bool `expose:"heal"`
	Feed bool `expose:"feed"`
}

func NewHealFeature() *HealFeature {
	return &HealFeature{Heal: true, Feed: true}
}

func (*HealFeature) Info() feature.Info { return HealInfo }

func (f *HealFeature) Start(context.Context) error {
	g := f.Game()
	for _, u := range g.Players() {
		f.HealUser(u)
	}
	event.OnGame(g.Bus(), f, g.ID(), func(e *game.JoinEvent) {
		f.HealUser(e.User)
	})
	return nil
}

// HealUser applies the configured heal and feed to one user.
func (f *HealFeature) HealUser(u *domain.User) {
	if f.Heal {
		u.Player().SetHealth(domain.MaxHealth)
	}
	if f.Feed {
		u.Player().SetSaturation(domain.MaxSaturation)
	}
}
