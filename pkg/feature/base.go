package feature

import (
	"context"
	"log/slog"

	"github.com/voxelgameslib/voxelgameslib/internal/logging"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
)

// Base is embedded by features. It stores the phase and provides no-op hooks.
type Base struct {
	phase *game.Phase
}

func (b *Base) Phase() *game.Phase          { return b.phase }
func (b *Base) SetPhase(p *game.Phase)      { b.phase = p }
func (b *Base) Init(context.Context) error  { return nil }
func (b *Base) Start(context.Context) error { return nil }
func (b *Base) Tick()                       {}
func (b *Base) Stop(context.Context) error  { return nil }
func (b *Base) Dependencies() []string      { return nil }

// Game returns the game of the phase, or nil when detached.
func (b *Base) Game() *game.Game {
	if b.phase == nil {
		return nil
	}
	return b.phase.Game()
}

// Bus returns the event bus of the game.
func (b *Base) Bus() *event.Bus {
	if g := b.Game(); g != nil {
		return g.Bus()
	}
	return nil
}

// Logger returns the game logger.
func (b *Base) Logger() *slog.Logger {
	if g := b.Game(); g != nil {
		return g.Logger()
	}
	return logging.NewNop()
}
