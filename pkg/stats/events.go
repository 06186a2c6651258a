package stats

import (
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
)

// PlayerIncrementStatEvent is fired before a stat is incremented.
// Handlers may change NewVal or cancel the change.
type PlayerIncrementStatEvent struct {
	event.Cancel
	User     *domain.User
	StatType Trackable
	OldVal   float64
	NewVal   float64
	Delta    float64
}

func (*PlayerIncrementStatEvent) Name() string { return "PlayerIncrementStatEvent" }

// PlayerDecrementStatEvent is fired before a stat is decremented.
type PlayerDecrementStatEvent struct {
	event.Cancel
	User     *domain.User
	StatType Trackable
	OldVal   float64
	NewVal   float64
	Delta    float64
}

func (*PlayerDecrementStatEvent) Name() string { return "PlayerDecrementStatEvent" }
