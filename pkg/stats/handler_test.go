package stats_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelgameslib/voxelgameslib/pkg/adapters/memory"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
	"github.com/voxelgameslib/voxelgameslib/pkg/ports"
	"github.com/voxelgameslib/voxelgameslib/pkg/stats"
)

// countingLocker records lock usage.
type countingLocker struct {
	mu    sync.Mutex
	locks int
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.locks++
	l.mu.Unlock()
	return func(context.Context) error { return nil }, nil
}

func TestHandler_GetCreatesWithDefault(t *testing.T) {
	store := memory.NewStatStore()
	h := stats.NewHandler(store, event.NewBus())
	ctx := context.Background()
	u := newUser("alice")

	inst, err := h.Get(ctx, u, stats.Kills)
	require.NoError(t, err)
	assert.Equal(t, 0.0, inst.Val())
	assert.Zero(t, inst.ID())

	again, err := h.Get(ctx, u, stats.Kills)
	require.NoError(t, err)
	assert.Same(t, inst, again)

	_, err = store.Load(ctx, u.UUID, "kills")
	assert.ErrorIs(t, err, domain.ErrStatNotFound, "nothing is saved before a change")
}

func TestHandler_FlushPersistsDirty(t *testing.T) {
	store := memory.NewStatStore()
	h := stats.NewHandler(store, event.NewBus())
	ctx := context.Background()
	u := newUser("alice")

	require.NoError(t, h.Increment(ctx, u, stats.Kills, 2))
	deaths, err := h.Get(ctx, u, stats.Deaths)
	require.NoError(t, err)

	require.NoError(t, h.Flush(ctx))
	row, err := store.Load(ctx, u.UUID, "kills")
	require.NoError(t, err)
	assert.Equal(t, 2.0, row.Val)

	_, err = store.Load(ctx, u.UUID, "deaths")
	assert.ErrorIs(t, err, domain.ErrStatNotFound, "clean instances are not written")
	assert.False(t, deaths.Dirty())

	kills, err := h.Get(ctx, u, stats.Kills)
	require.NoError(t, err)
	assert.Equal(t, row.ID, kills.ID())
	assert.False(t, kills.Dirty())
}

func TestHandler_UnloadThenReload(t *testing.T) {
	store := memory.NewStatStore()
	u := newUser("alice")
	resolved := 0
	h := stats.NewHandler(store, event.NewBus(), stats.WithResolver(func(id uuid.UUID) *domain.User {
		resolved++
		return u
	}))
	ctx := context.Background()

	require.NoError(t, h.Increment(ctx, u, stats.Wins, 1))
	require.NoError(t, h.Unload(ctx, u.UUID))

	inst, err := h.Get(ctx, u, stats.Wins)
	require.NoError(t, err)
	assert.Equal(t, 1.0, inst.Val())
	assert.Same(t, u, inst.User())
	assert.Zero(t, resolved, "online users do not need resolving")
}

func TestHandler_ListAndTop(t *testing.T) {
	store := memory.NewStatStore()
	h := stats.NewHandler(store, event.NewBus())
	ctx := context.Background()
	a, b := newUser("a"), newUser("b")

	require.NoError(t, h.Increment(ctx, a, stats.Kills, 5))
	require.NoError(t, h.Increment(ctx, a, stats.Deaths, 1))
	require.NoError(t, h.Increment(ctx, b, stats.Kills, 9))

	rows, err := h.List(ctx, a.UUID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "deaths", rows[0].StatType)

	top, err := h.Top(ctx, stats.Kills, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, b.UUID, top[0].UUID)
}

func TestHandler_ConcurrentIncrements(t *testing.T) {
	locker := &countingLocker{}
	h := stats.NewHandler(memory.NewStatStore(), event.NewBus(), stats.WithLocker(locker))
	ctx := context.Background()
	u := newUser("alice")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.Increment(ctx, u, stats.Kills, 1))
		}()
	}
	wg.Wait()

	inst, err := h.Get(ctx, u, stats.Kills)
	require.NoError(t, err)
	assert.Equal(t, 20.0, inst.Val())
	assert.Equal(t, 21, locker.locks)
}

func TestHandler_RunFlushesOnCancel(t *testing.T) {
	store := memory.NewStatStore()
	h := stats.NewHandler(store, event.NewBus())
	u := newUser("alice")
	require.NoError(t, h.Increment(context.Background(), u, stats.JoinCount, 1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, time.Hour) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	row, err := store.Load(context.Background(), u.UUID, "join_count")
	require.NoError(t, err)
	assert.Equal(t, 1.0, row.Val)
}

// racingStore runs onSave before delegating, simulating writes during a save.
type racingStore struct {
	ports.StatStore
	onSave func()
}

func (s *racingStore) Save(ctx context.Context, rows ...*domain.StatRow) error {
	if s.onSave != nil {
		fn := s.onSave
		s.onSave = nil
		fn()
	}
	return s.StatStore.Save(ctx, rows...)
}

func TestHandler_FlushKeepsChangesMadeDuringSave(t *testing.T) {
	mem := memory.NewStatStore()
	store := &racingStore{StatStore: mem}
	h := stats.NewHandler(store, event.NewBus())
	ctx := context.Background()
	u := newUser("alice")

	inst, err := h.Get(ctx, u, stats.Kills)
	require.NoError(t, err)
	inst.Increment()
	store.onSave = inst.Increment

	require.NoError(t, h.Flush(ctx))
	assert.Equal(t, 2.0, inst.Val())
	assert.True(t, inst.Dirty(), "the change made during the save is still pending")

	require.NoError(t, h.Flush(ctx))
	assert.False(t, inst.Dirty())
	row, err := mem.Load(ctx, u.UUID, "kills")
	require.NoError(t, err)
	assert.Equal(t, 2.0, row.Val)
}
