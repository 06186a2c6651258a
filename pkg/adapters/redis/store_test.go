package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelgameslib/voxelgameslib/pkg/adapters/redis"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/ports"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStatStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunStatStoreContract(t, store)
}

func TestRedisStatStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	id := uuid.New()

	err := store.Save(ctx, &domain.StatRow{UUID: id, StatType: "kills", Val: 2})
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:stats:"+id.String()), "Expected hash with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:top:kills"), "Expected leaderboard with custom prefix to exist")
	require.NoError(t, store.Ping(ctx))
}

func TestRedisLocker(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "vgl:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "user", time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"vgl:lock:user"}, mr.Keys())

	busyCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(busyCtx, "user", time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
	unlock, err = locker.Lock(ctx, "user", time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
}
