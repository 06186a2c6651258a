package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/internal/logging"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
	"github.com/voxelgameslib/voxelgameslib/pkg/ports"
)

// lockTTL bounds how long a distributed user lock survives a crashed holder.
const lockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Handler caches StatInstances and persists them through a StatStore.
// Access to one user's stats is serialised with ref-counted locks.
type Handler struct {
	store     ports.StatStore
	bus       *event.Bus
	types     *TrackableRegistry
	converter TrackableConverter
	resolver  UserResolver

	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry

	cacheMu sync.Mutex
	cache   map[uuid.UUID]map[string]*StatInstance

	locker ports.DistributedLocker
	logger *slog.Logger
}

// Option configures the Handler.
type Option func(*Handler)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(h *Handler) {
		h.locker = locker
	}
}

// WithLogger configures a logger for the Handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithResolver sets how loaded stats find their online user.
func WithResolver(resolver UserResolver) Option {
	return func(h *Handler) {
		h.resolver = resolver
	}
}

// WithTrackables replaces the builtin stat type registry.
func WithTrackables(types *TrackableRegistry) Option {
	return func(h *Handler) {
		h.types = types
	}
}

// NewHandler creates a stats handler on top of store.
func NewHandler(store ports.StatStore, bus *event.Bus, opts ...Option) *Handler {
	h := &Handler{
		store:  store,
		bus:    bus,
		types:  NewTrackableRegistry(),
		locks:  make(map[uuid.UUID]*lockEntry),
		cache:  make(map[uuid.UUID]map[string]*StatInstance),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.converter = NewTrackableConverter(h.types)
	return h
}

func (h *Handler) Trackables() *TrackableRegistry { return h.types }
func (h *Handler) Converter() TrackableConverter  { return h.converter }

func (h *Handler) Start() error { return nil }

// Stop flushes every dirty instance.
func (h *Handler) Stop() error {
	return h.Flush(context.Background())
}

func (h *Handler) acquire(id uuid.UUID) *lockEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, exists := h.locks[id]
	if !exists {
		entry = &lockEntry{}
		h.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (h *Handler) release(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, exists := h.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(h.locks, id)
	}
}

// WithLock executes fn while holding the lock for the user.
func (h *Handler) WithLock(ctx context.Context, id uuid.UUID, fn func(context.Context) error) error {
	entry := h.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		h.release(id)
	}()

	if h.locker != nil {
		unlock, err := h.locker.Lock(ctx, "stats:"+id.String(), lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				h.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"user", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Get returns the instance of statType for user, loading it or creating it
// with the default value.
func (h *Handler) Get(ctx context.Context, user *domain.User, statType Trackable) (*StatInstance, error) {
	var inst *StatInstance
	err := h.WithLock(ctx, user.UUID, func(ctx context.Context) error {
		var err error
		inst, err = h.getLocked(ctx, user, statType)
		return err
	})
	return inst, err
}

// Increment loads the stat and increments it while holding the user lock.
// Stat event handlers must not call back into the Handler for the same user.
func (h *Handler) Increment(ctx context.Context, user *domain.User, statType Trackable, delta float64) error {
	return h.WithLock(ctx, user.UUID, func(ctx context.Context) error {
		inst, err := h.getLocked(ctx, user, statType)
		if err != nil {
			return err
		}
		inst.IncrementBy(delta)
		return nil
	})
}

func (h *Handler) getLocked(ctx context.Context, user *domain.User, statType Trackable) (*StatInstance, error) {
	if cached := h.cached(user.UUID, statType.Name()); cached != nil {
		return cached, nil
	}

	var inst *StatInstance
	row, err := h.store.Load(ctx, user.UUID, h.converter.ToColumn(statType))
	switch {
	case err == nil:
		inst = fromRow(row, statType, h.bus, h.resolver)
		inst.user = user
	case errors.Is(err, domain.ErrStatNotFound):
		inst = NewStatInstance(user, statType, statType.DefaultValue(), h.bus)
	default:
		return nil, fmt.Errorf("load %s: %w", statType.Name(), err)
	}
	h.put(inst)
	return inst, nil
}

func (h *Handler) cached(id uuid.UUID, name string) *StatInstance {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	return h.cache[id][name]
}

func (h *Handler) put(inst *StatInstance) {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	byType, ok := h.cache[inst.UUID()]
	if !ok {
		byType = make(map[string]*StatInstance)
		h.cache[inst.UUID()] = byType
	}
	byType[inst.StatType().Name()] = inst
}

func (h *Handler) cachedUsers() []uuid.UUID {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	ids := make([]uuid.UUID, 0, len(h.cache))
	for id := range h.cache {
		ids = append(ids, id)
	}
	return ids
}

func (h *Handler) instancesOf(id uuid.UUID) []*StatInstance {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	out := make([]*StatInstance, 0, len(h.cache[id]))
	for _, inst := range h.cache[id] {
		out = append(out, inst)
	}
	return out
}

// FlushUser saves the dirty instances of one user.
func (h *Handler) FlushUser(ctx context.Context, id uuid.UUID) error {
	return h.WithLock(ctx, id, func(ctx context.Context) error {
		return h.flushLocked(ctx, id)
	})
}

func (h *Handler) flushLocked(ctx context.Context, id uuid.UUID) error {
	var (
		dirty    []*StatInstance
		rows     []*domain.StatRow
		versions []uint64
	)
	for _, inst := range h.instancesOf(id) {
		if !inst.Dirty() {
			continue
		}
		row, version := inst.snapshot(h.converter)
		dirty = append(dirty, inst)
		rows = append(rows, &row)
		versions = append(versions, version)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := h.store.Save(ctx, rows...); err != nil {
		return fmt.Errorf("save stats of %s: %w", id, err)
	}
	for i, inst := range dirty {
		inst.setID(rows[i].ID)
		inst.markCleanIf(versions[i])
	}
	h.logger.Debug("Stats flushed", "user", id, "rows", len(rows))
	return nil
}

// Flush saves every dirty instance.
func (h *Handler) Flush(ctx context.Context) error {
	var errs []error
	for _, id := range h.cachedUsers() {
		if err := h.FlushUser(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Unload flushes a user's stats and drops them from the cache, used on logout.
func (h *Handler) Unload(ctx context.Context, id uuid.UUID) error {
	return h.WithLock(ctx, id, func(ctx context.Context) error {
		if err := h.flushLocked(ctx, id); err != nil {
			return err
		}
		h.cacheMu.Lock()
		delete(h.cache, id)
		h.cacheMu.Unlock()
		return nil
	})
}

// List returns the persisted stats of a user after flushing pending changes.
func (h *Handler) List(ctx context.Context, id uuid.UUID) ([]domain.StatRow, error) {
	if err := h.FlushUser(ctx, id); err != nil {
		return nil, err
	}
	return h.store.ListByUser(ctx, id)
}

// Top returns the leaderboard of one stat type.
func (h *Handler) Top(ctx context.Context, statType Trackable, limit int) ([]domain.StatRow, error) {
	if err := h.Flush(ctx); err != nil {
		return nil, err
	}
	return h.store.Top(ctx, h.converter.ToColumn(statType), limit)
}

// Run flushes periodically until ctx is cancelled, then flushes one last time.
func (h *Handler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return h.Flush(context.WithoutCancel(ctx))
		case <-ticker.C:
			if err := h.Flush(ctx); err != nil {
				h.logger.Error("Periodic stat flush failed", "error", err)
			}
		}
	}
}
