package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/internal/logging"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
)

// DefaultTickRate matches the 20 ticks per second of voxel servers.
const DefaultTickRate = 50 * time.Millisecond

// Hooks are optional callbacks fired by the Handler, used for metrics.
type Hooks struct {
	OnGameStart func(g *Game)
	OnGameEnd   func(g *Game)
	OnJoin      func(g *Game, u *domain.User)
	OnTick      func(d time.Duration)
}

// Handler owns all running games and drives them from a single tick loop.
// Every method takes the handler mutex so features never run concurrently.
type Handler struct {
	mu       sync.Mutex
	bus      *event.Bus
	factory  Factory
	logger   *slog.Logger
	hooks    Hooks
	tickRate time.Duration
	clock    func() time.Time

	defs  map[string]Definition
	games map[uuid.UUID]*Game
	order []uuid.UUID
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

func WithHooks(hooks Hooks) HandlerOption {
	return func(h *Handler) {
		h.hooks = hooks
	}
}

func WithTickRate(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.tickRate = d
		}
	}
}

func WithHandlerClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler creates a game handler building features with factory.
func NewHandler(bus *event.Bus, factory Factory, opts ...HandlerOption) *Handler {
	h := &Handler{
		bus:      bus,
		factory:  factory,
		logger:   logging.NewNop(),
		tickRate: DefaultTickRate,
		clock:    time.Now,
		defs:     make(map[string]Definition),
		games:    make(map[uuid.UUID]*Game),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start implements the framework handler lifecycle. Games are started lazily.
func (h *Handler) Start() error {
	h.logger.Debug("Game handler started", "modes", len(h.defs))
	return nil
}

// Stop ends every running game.
func (h *Handler) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	ctx := context.Background()
	for _, id := range h.order {
		g := h.games[id]
		if err := g.End(ctx); err != nil {
			h.logger.Error("Failed to end game", "game", id, "error", err)
		}
		h.fireEnd(g)
	}
	h.games = make(map[uuid.UUID]*Game)
	h.order = nil
	return nil
}

// Register adds a game mode definition.
func (h *Handler) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.defs[def.Name] = def
	return nil
}

// Definitions returns the registered modes sorted by name.
func (h *Handler) Definitions() []Definition {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Definition, 0, len(h.defs))
	for _, d := range h.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Create builds and starts a new game of the given mode.
func (h *Handler) Create(ctx context.Context, mode string) (Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	def, ok := h.defs[mode]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	g := New(def.Name, h.bus,
		WithLogger(h.logger),
		WithMaxPlayers(def.MaxPlayers),
		WithClock(h.clock),
	)
	if err := def.Build(h.factory, g); err != nil {
		return Snapshot{}, err
	}
	if err := g.Start(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("start %s: %w", mode, err)
	}
	h.games[g.ID()] = g
	h.order = append(h.order, g.ID())
	if h.hooks.OnGameStart != nil {
		h.hooks.OnGameStart(g)
	}
	return g.Info(), nil
}

// Do runs fn with exclusive access to the game with the given id.
func (h *Handler) Do(id uuid.UUID, fn func(*Game) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.games[id]
	if !ok {
		return ErrGameNotFound
	}
	return fn(g)
}

// Find returns a snapshot of one game.
func (h *Handler) Find(id uuid.UUID) (Snapshot, error) {
	var s Snapshot
	err := h.Do(id, func(g *Game) error {
		s = g.Info()
		return nil
	})
	return s, err
}

// List returns snapshots of all games in creation order.
func (h *Handler) List() []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Snapshot, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.games[id].Info())
	}
	return out
}

// GamesOf returns the ids of the games the user plays in.
func (h *Handler) GamesOf(user *domain.User) []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ids []uuid.UUID
	for _, id := range h.order {
		if h.games[id].IsPlaying(user.UUID) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Join adds user to the game.
func (h *Handler) Join(id uuid.UUID, user *domain.User) error {
	return h.Do(id, func(g *Game) error {
		if err := g.Join(user); err != nil {
			return err
		}
		if h.hooks.OnJoin != nil {
			h.hooks.OnJoin(g, user)
		}
		return nil
	})
}

// Leave removes user from the game.
func (h *Handler) Leave(id uuid.UUID, user *domain.User) error {
	return h.Do(id, func(g *Game) error {
		return g.Leave(user)
	})
}

// LeaveAll removes user from every game, used on disconnect.
func (h *Handler) LeaveAll(user *domain.User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range h.order {
		g := h.games[id]
		if g.IsPlaying(user.UUID) || g.IsSpectating(user.UUID) {
			_ = g.Leave(user)
		}
	}
}

// End forcibly ends a game.
func (h *Handler) End(ctx context.Context, id uuid.UUID) error {
	return h.Do(id, func(g *Game) error {
		return g.End(ctx)
	})
}

// Tick advances every game by one tick and drops ended games.
func (h *Handler) Tick(ctx context.Context) {
	start := time.Now()
	h.mu.Lock()
	kept := h.order[:0]
	for _, id := range h.order {
		g := h.games[id]
		running, err := g.Tick(ctx)
		if err != nil {
			h.logger.Error("Game tick failed", "game", id, "error", err)
		}
		if !running {
			h.fireEnd(g)
			delete(h.games, id)
			continue
		}
		kept = append(kept, id)
	}
	h.order = kept
	h.mu.Unlock()

	if h.hooks.OnTick != nil {
		h.hooks.OnTick(time.Since(start))
	}
}

func (h *Handler) fireEnd(g *Game) {
	if h.hooks.OnGameEnd != nil {
		h.hooks.OnGameEnd(g)
	}
}

// Run ticks all games at the configured rate until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.tickRate)
	defer ticker.Stop()

	h.logger.Info("Game loop started", "tick_rate", h.tickRate)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Game loop stopped")
			return nil
		case <-ticker.C:
			h.Tick(ctx)
		}
	}
}
