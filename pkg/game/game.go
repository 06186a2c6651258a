package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/internal/logging"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
)

// State is the lifecycle state of a game.
type State string

const (
	StateCreated State = "created"
	StateRunning State = "running"
	StateEnded   State = "ended"
)

// Game is a running instance of a game mode.
// It is not safe for concurrent use; Handler serialises access.
type Game struct {
	id         uuid.UUID
	mode       string
	maxPlayers int
	bus        *event.Bus
	logger     *slog.Logger
	clock      func() time.Time

	phases  []*Phase
	current int
	state   State

	players    []*domain.User
	spectators []*domain.User
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the game logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithMaxPlayers limits the number of players. Zero means unlimited.
func WithMaxPlayers(n int) Option {
	return func(g *Game) {
		g.maxPlayers = n
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(g *Game) {
		g.clock = clock
	}
}

// WithID sets a fixed game id instead of a random one.
func WithID(id uuid.UUID) Option {
	return func(g *Game) {
		g.id = id
	}
}

// New creates a game for the given mode.
func New(mode string, bus *event.Bus, opts ...Option) *Game {
	g := &Game{
		id:     uuid.New(),
		mode:   mode,
		bus:    bus,
		logger: logging.NewNop(),
		clock:  time.Now,
		state:  StateCreated,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("game", g.id.String(), "mode", mode)
	return g
}

func (g *Game) ID() uuid.UUID        { return g.id }
func (g *Game) Mode() string         { return g.mode }
func (g *Game) MaxPlayers() int      { return g.maxPlayers }
func (g *Game) State() State         { return g.state }
func (g *Game) Bus() *event.Bus      { return g.bus }
func (g *Game) Logger() *slog.Logger { return g.logger }

func (g *Game) now() time.Time { return g.clock() }

// AddPhase appends a phase. Phases run in the order they were added.
func (g *Game) AddPhase(p *Phase) {
	p.game = g
	g.phases = append(g.phases, p)
}

func (g *Game) Phases() []*Phase {
	out := make([]*Phase, len(g.phases))
	copy(out, g.phases)
	return out
}

// CurrentPhase returns the active phase or nil if the game is not running.
func (g *Game) CurrentPhase() *Phase {
	if g.state != StateRunning {
		return nil
	}
	return g.phases[g.current]
}

// Start initialises and starts the first phase.
func (g *Game) Start(ctx context.Context) error {
	if g.state != StateCreated {
		return ErrAlreadyStarted
	}
	if len(g.phases) == 0 {
		return ErrNoPhases
	}
	g.current = 0
	if err := g.startPhase(ctx, g.phases[0]); err != nil {
		g.state = StateEnded
		return err
	}
	g.state = StateRunning
	g.logger.Info("Game started", "phase", g.phases[0].Name())
	g.bus.Call(&StartEvent{Game: g})
	return nil
}

func (g *Game) startPhase(ctx context.Context, p *Phase) error {
	if err := p.Init(ctx); err != nil {
		return err
	}
	return p.Start(ctx)
}

// Tick ticks the current phase and advances to the next one once it ended.
// It reports whether the game is still running.
func (g *Game) Tick(ctx context.Context) (bool, error) {
	if g.state != StateRunning {
		return false, nil
	}
	p := g.phases[g.current]
	p.Tick()
	if !p.Ended() {
		return true, nil
	}
	return g.advance(ctx)
}

func (g *Game) advance(ctx context.Context) (bool, error) {
	var errs []error
	for g.state == StateRunning {
		if err := g.phases[g.current].Stop(ctx); err != nil {
			errs = append(errs, err)
		}
		if g.current+1 >= len(g.phases) {
			g.finish()
			break
		}
		g.current++
		next := g.phases[g.current]
		g.logger.Info("Advancing phase", "phase", next.Name())
		if err := g.startPhase(ctx, next); err != nil {
			errs = append(errs, err)
			g.finish()
			break
		}
		if !next.Ended() {
			break
		}
	}
	return g.state == StateRunning, errors.Join(errs...)
}

// End stops the current phase and ends the game immediately.
func (g *Game) End(ctx context.Context) error {
	if g.state != StateRunning {
		g.state = StateEnded
		return nil
	}
	err := g.phases[g.current].Stop(ctx)
	g.finish()
	return err
}

func (g *Game) finish() {
	g.state = StateEnded
	g.logger.Info("Game ended")
	g.bus.Call(&EndEvent{Game: g})
}

// Join adds user as a player. A cancelled JoinRequestEvent returns ErrJoinDenied.
func (g *Game) Join(user *domain.User) error {
	if g.state == StateEnded {
		return ErrGameEnded
	}
	if g.IsPlaying(user.UUID) {
		return ErrAlreadyJoined
	}
	if g.maxPlayers > 0 && len(g.players) >= g.maxPlayers {
		return ErrGameFull
	}
	if !g.bus.Call(&JoinRequestEvent{Game: g, User: user}) {
		return ErrJoinDenied
	}
	g.players = append(g.players, user)
	g.logger.Debug("Player joined", "user", user.DisplayName)
	g.bus.Call(&JoinEvent{Game: g, User: user})
	return nil
}

// Leave removes user from the players and spectators.
func (g *Game) Leave(user *domain.User) error {
	var found bool
	g.players, found = remove(g.players, user.UUID)
	if !found {
		var spectating bool
		g.spectators, spectating = remove(g.spectators, user.UUID)
		if !spectating {
			return ErrNotJoined
		}
		return nil
	}
	g.logger.Debug("Player left", "user", user.DisplayName)
	g.bus.Call(&LeaveEvent{Game: g, User: user})
	return nil
}

// Spectate adds user to the spectators of a running game.
func (g *Game) Spectate(user *domain.User) error {
	if g.state == StateEnded {
		return ErrGameEnded
	}
	if g.IsPlaying(user.UUID) || g.IsSpectating(user.UUID) {
		return ErrAlreadyJoined
	}
	g.spectators = append(g.spectators, user)
	return nil
}

func (g *Game) IsPlaying(id uuid.UUID) bool    { return index(g.players, id) >= 0 }
func (g *Game) IsSpectating(id uuid.UUID) bool { return index(g.spectators, id) >= 0 }

// Players returns a copy of the current players in join order.
func (g *Game) Players() []*domain.User {
	out := make([]*domain.User, len(g.players))
	copy(out, g.players)
	return out
}

func (g *Game) Spectators() []*domain.User {
	out := make([]*domain.User, len(g.spectators))
	copy(out, g.spectators)
	return out
}

// Broadcast sends a chat line to all players and spectators.
func (g *Game) Broadcast(text string) {
	for _, u := range g.players {
		u.SendMessage(text)
	}
	for _, u := range g.spectators {
		u.SendMessage(text)
	}
}

// Info is a read-only snapshot used by the admin surfaces.
func (g *Game) Info() Snapshot {
	s := Snapshot{
		ID:         g.id.String(),
		Mode:       g.mode,
		State:      g.state,
		MaxPlayers: g.maxPlayers,
		Players:    make([]string, 0, len(g.players)),
	}
	if p := g.CurrentPhase(); p != nil {
		s.Phase = p.Name()
		s.Ticks = p.Ticks()
		for _, f := range p.Features() {
			s.Features = append(s.Features, f.Info().Name)
		}
	}
	for _, u := range g.players {
		s.Players = append(s.Players, u.DisplayName)
	}
	return s
}

// Snapshot describes a game at one point in time.
type Snapshot struct {
	ID         string   `json:"id"`
	Mode       string   `json:"mode"`
	State      State    `json:"state"`
	Phase      string   `json:"phase,omitempty"`
	Ticks      int64    `json:"ticks"`
	Features   []string `json:"features,omitempty"`
	Players    []string `json:"players"`
	MaxPlayers int      `json:"max_players"`
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%s [%s] %s phase=%s players=%d", s.Mode, s.ID, s.State, s.Phase, len(s.Players))
}

func index(users []*domain.User, id uuid.UUID) int {
	for i, u := range users {
		if u.UUID == id {
			return i
		}
	}
	return -1
}

func remove(users []*domain.User, id uuid.UUID) ([]*domain.User, bool) {
	i := index(users, id)
	if i < 0 {
		return users, false
	}
	return append(users[:i], users[i+1:]...), true
}
