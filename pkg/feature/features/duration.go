package features

import (
	"context"
	"time"

	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
)

var DurationInfo = feature.Info{
	Name:        "DurationFeature",
	Author:      "VoxelGamesLib",
	Version:     "1.0",
	Description: "Ends the phase after a fixed time",
}

// DurationFeature ends its phase once Duration elapsed. Zero disables it.
type DurationFeature struct {
	feature.Base
	Duration time.Duration `expose:"duration"`
}

func NewDurationFeature() *DurationFeature {
	return &DurationFeature{Duration: 30 * time.Second}
}

func (*DurationFeature) Info() feature.Info { return DurationInfo }

func (f *DurationFeature) Start(context.Context) error {
	if f.Duration > 0 {
		f.Game().Broadcast("Phase " + f.Phase().Name() + " ends in " + f.Duration.String())
	}
	return nil
}

func (f *DurationFeature) Tick() {
	if f.Duration > 0 && f.Phase().Elapsed() >= f.Duration {
		f.Logger().Debug("Phase duration reached", "phase", f.Phase().Name())
		f.Phase().End()
	}
}

// Remaining is the time left before the phase ends.
func (f *DurationFeature) Remaining() time.Duration {
	left := f.Duration - f.Phase().Elapsed()
	if left < 0 {
		return 0
	}
	return left
}
