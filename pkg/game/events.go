package game

import (
	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
)

// JoinRequestEvent is fired before a user joins. Cancelling it denies the join.
type JoinRequestEvent struct {
	event.Cancel
	Game *Game
	User *domain.User
}

func (*JoinRequestEvent) Name() string        { return "GameJoinRequestEvent" }
func (e *JoinRequestEvent) GameID() uuid.UUID { return e.Game.ID() }

// JoinEvent is fired after a user joined a game.
type JoinEvent struct {
	Game *Game
	User *domain.User
}

func (*JoinEvent) Name() string        { return "GameJoinEvent" }
func (e *JoinEvent) GameID() uuid.UUID { return e.Game.ID() }

// LeaveEvent is fired after a user left a game.
type LeaveEvent struct {
	Game *Game
	User *domain.User
}

func (*LeaveEvent) Name() string        { return "GameLeaveEvent" }
func (e *LeaveEvent) GameID() uuid.UUID { return e.Game.ID() }

// StartEvent is fired once the first phase of a game started.
type StartEvent struct {
	Game *Game
}

func (*StartEvent) Name() string        { return "GameStartEvent" }
func (e *StartEvent) GameID() uuid.UUID { return e.Game.ID() }

// EndEvent is fired when a game ended, either after its last phase or forcibly.
type EndEvent struct {
	Game *Game
}

func (*EndEvent) Name() string        { return "GameEndEvent" }
func (e *EndEvent) GameID() uuid.UUID { return e.Game.ID() }

// PhaseStartEvent is fired after all features of a phase started.
type PhaseStartEvent struct {
	Phase *Phase
}

func (*PhaseStartEvent) Name() string        { return "PhaseStartEvent" }
func (e *PhaseStartEvent) GameID() uuid.UUID { return e.Phase.Game().ID() }

// PhaseEndEvent is fired after all features of a phase stopped.
type PhaseEndEvent struct {
	Phase *Phase
}

func (*PhaseEndEvent) Name() string        { return "PhaseEndEvent" }
func (e *PhaseEndEvent) GameID() uuid.UUID { return e.Phase.Game().ID() }
