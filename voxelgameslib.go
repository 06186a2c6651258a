package voxelgameslib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	backend "github.com/redis/go-redis/v9"
	"github.com/voxelgameslib/voxelgameslib/internal/config"
	"github.com/voxelgameslib/voxelgameslib/internal/logging"
	"github.com/voxelgameslib/voxelgameslib/pkg/adapters/memory"
	redisstore "github.com/voxelgameslib/voxelgameslib/pkg/adapters/redis"
	"github.com/voxelgameslib/voxelgameslib/pkg/adapters/sqlite"
	"github.com/voxelgameslib/voxelgameslib/pkg/command"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature/features"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"github.com/voxelgameslib/voxelgameslib/pkg/observability"
	"github.com/voxelgameslib/voxelgameslib/pkg/ports"
	"github.com/voxelgameslib/voxelgameslib/pkg/scoreboard"
	"github.com/voxelgameslib/voxelgameslib/pkg/stats"
	"github.com/voxelgameslib/voxelgameslib/pkg/user"
)

// Lib wires the framework handlers together. It is the entry point for
// hosts embedding VoxelGamesLib.
type Lib struct {
	cfg    config.Config
	logger *slog.Logger

	bus         *event.Bus
	features    *feature.Registry
	games       *game.Handler
	stats       *stats.Handler
	scoreboards *scoreboard.Handler
	users       *user.Handler
	commands    *command.Dispatcher
	metrics     *observability.Metrics

	store    ports.StatStore
	locker   ports.DistributedLocker
	closers  []io.Closer
	handlers []ports.Handler

	mu      sync.Mutex
	started int
}

// Option defines a functional option for configuring the Lib.
type Option func(*Lib)

// WithConfig replaces config.Default().
func WithConfig(cfg config.Config) Option {
	return func(l *Lib) {
		l.cfg = cfg
	}
}

// WithLogger sets a custom structured logger for all handlers.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lib) {
		l.logger = logger
	}
}

// WithStore injects a stat store, bypassing the configured backend.
func WithStore(store ports.StatStore) Option {
	return func(l *Lib) {
		l.store = store
	}
}

// WithLocker injects a distributed locker for stat updates.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(l *Lib) {
		l.locker = locker
	}
}

// New builds every handler, registers the builtin features and loads the
// game definitions from the config and its games directory.
func New(ctx context.Context, opts ...Option) (*Lib, error) {
	l := &Lib{
		cfg:    config.Default(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.cfg.Validate(); err != nil {
		return nil, err
	}

	if l.store == nil {
		if err := l.openStore(ctx); err != nil {
			return nil, err
		}
	}

	l.bus = event.NewBus(event.WithLogger(l.logger))
	l.metrics = observability.NewMetrics()
	l.users = user.NewHandler(l.bus, user.WithOperators(l.cfg.Operators...))

	statOpts := []stats.Option{stats.WithLogger(l.logger), stats.WithResolver(l.users.Get)}
	if l.locker != nil {
		statOpts = append(statOpts, stats.WithLocker(l.locker))
	}
	l.stats = stats.NewHandler(l.store, l.bus, statOpts...)
	l.scoreboards = scoreboard.NewHandler()

	l.features = feature.NewRegistry()
	if err := features.Register(l.features, features.Deps{Scoreboards: l.scoreboards, MapDir: l.cfg.MapsDir}); err != nil {
		l.close()
		return nil, err
	}

	l.games = game.NewHandler(l.bus, l.features,
		game.WithHandlerLogger(l.logger),
		game.WithHooks(l.metrics.GameHooks()),
		game.WithTickRate(l.cfg.TickRate),
	)
	if err := l.loadDefinitions(); err != nil {
		l.close()
		return nil, err
	}

	l.commands = command.NewDispatcher(Version,
		command.WithLogger(l.logger),
		command.WithFeatures(l.features),
		command.WithGames(l.games),
		command.WithStats(l.stats),
		command.WithUsers(l.users),
		command.WithObserver(l.metrics.CommandExecuted),
	)

	l.handlers = []ports.Handler{l.stats, l.scoreboards, l.users, l.games}
	l.subscribe()
	return l, nil
}

func (l *Lib) openStore(ctx context.Context) error {
	switch l.cfg.Store {
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, l.cfg.SQLitePath)
		if err != nil {
			return err
		}
		l.store = s
		l.closers = append(l.closers, s)
	case config.StoreRedis:
		s := redisstore.New(l.cfg.RedisAddr, redisstore.WithPrefix(l.cfg.RedisPrefix))
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return fmt.Errorf("connect redis %s: %w", l.cfg.RedisAddr, err)
		}
		l.store = s
		l.closers = append(l.closers, s)
		if l.cfg.RedisLocks && l.locker == nil {
			l.locker = redisstore.NewLocker(s.Client(), l.cfg.RedisPrefix)
		}
	default:
		l.store = memory.NewStatStore()
	}

	if l.cfg.RedisLocks && l.locker == nil {
		client := backend.NewClient(&backend.Options{Addr: l.cfg.RedisAddr})
		l.locker = redisstore.NewLocker(client, l.cfg.RedisPrefix)
		l.closers = append(l.closers, client)
	}
	return nil
}

func (l *Lib) loadDefinitions() error {
	defs := append([]game.Definition(nil), l.cfg.Games...)
	loaded, err := game.LoadDefinitions(l.cfg.GamesDir)
	if err != nil {
		return err
	}
	defs = append(defs, loaded...)
	for _, def := range defs {
		if err := l.games.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// subscribe keeps the builtin stats and metrics current. All listeners run
// at Monitor priority and only observe.
func (l *Lib) subscribe() {
	monitor := event.WithPriority(event.Monitor)

	event.On(l.bus, l, func(e *game.JoinEvent) {
		l.increment(e.User, stats.GamesPlayed, 1)
	}, monitor)
	event.On(l.bus, l, func(e *user.LoginEvent) {
		l.increment(e.User, stats.JoinCount, 1)
	}, monitor)
	event.On(l.bus, l, func(e *user.LogoutEvent) {
		l.games.LeaveAll(e.User)
		l.increment(e.User, stats.PlayTime, e.Online.Seconds())
		if err := l.stats.Unload(context.Background(), e.User.UUID); err != nil {
			l.logger.Error("Failed to unload stats", "user", e.User.DisplayName, "error", err)
		}
	}, monitor)
	event.On(l.bus, l, func(e *stats.PlayerIncrementStatEvent) {
		l.metrics.StatChanged(e.StatType.Name(), "inc")
	}, monitor)
	event.On(l.bus, l, func(e *stats.PlayerDecrementStatEvent) {
		l.metrics.StatChanged(e.StatType.Name(), "dec")
	}, monitor)
}

func (l *Lib) increment(u *domain.User, t stats.Trackable, delta float64) {
	if err := l.stats.Increment(context.Background(), u, t, delta); err != nil {
		l.logger.Error("Failed to update stat", "user", u.DisplayName, "stat", t.Name(), "error", err)
	}
}

// Start starts every handler in order and fires the enable event. When a
// handler fails the ones already started are stopped again.
func (l *Lib) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started > 0 {
		return nil
	}
	for i, h := range l.handlers {
		if err := h.Start(); err != nil {
			l.started = i
			stopErr := l.stopLocked()
			return errors.Join(fmt.Errorf("start %T: %w", h, err), stopErr)
		}
	}
	l.started = len(l.handlers)
	l.bus.Call(event.EnableEvent{Version: Version})
	l.logger.Info("VoxelGamesLib enabled", "version", Version, "store", l.cfg.Store)
	return nil
}

// Run drives the game loop and the periodic stat flush until ctx is done.
func (l *Lib) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = l.games.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		errs[1] = l.stats.Run(ctx, l.cfg.FlushInterval)
	}()
	wg.Wait()
	return errors.Join(errs...)
}

// Stop fires the disable event, stops the handlers in reverse order and
// closes the store.
func (l *Lib) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started == 0 {
		return l.close()
	}
	l.bus.Call(event.DisableEvent{})
	err := l.stopLocked()
	l.logger.Info("VoxelGamesLib disabled")
	return err
}

func (l *Lib) stopLocked() error {
	var errs []error
	for i := l.started - 1; i >= 0; i-- {
		if err := l.handlers[i].Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop %T: %w", l.handlers[i], err))
		}
	}
	l.started = 0
	l.bus.Unsubscribe(l)
	errs = append(errs, l.close())
	return errors.Join(errs...)
}

func (l *Lib) close() error {
	var errs []error
	for i := len(l.closers) - 1; i >= 0; i-- {
		errs = append(errs, l.closers[i].Close())
	}
	l.closers = nil
	return errors.Join(errs...)
}

func (l *Lib) Config() config.Config            { return l.cfg }
func (l *Lib) Logger() *slog.Logger             { return l.logger }
func (l *Lib) Bus() *event.Bus                  { return l.bus }
func (l *Lib) Features() *feature.Registry      { return l.features }
func (l *Lib) Games() *game.Handler             { return l.games }
func (l *Lib) Stats() *stats.Handler            { return l.stats }
func (l *Lib) Scoreboards() *scoreboard.Handler { return l.scoreboards }
func (l *Lib) Users() *user.Handler             { return l.users }
func (l *Lib) Commands() *command.Dispatcher    { return l.commands }
func (l *Lib) Metrics() *observability.Metrics  { return l.metrics }
func (l *Lib) Store() ports.StatStore           { return l.store }
