package voxelgameslib_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelgameslib/voxelgameslib"
	"github.com/voxelgameslib/voxelgameslib/internal/config"
	"github.com/voxelgameslib/voxelgameslib/pkg/adapters/memory"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"github.com/voxelgameslib/voxelgameslib/pkg/stats"
)

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.GamesDir = t.TempDir()
	cfg.MapsDir = t.TempDir()
	cfg.Games = []game.Definition{{
		Name:       "duel",
		MaxPlayers: 2,
		Phases: []game.PhaseDefinition{{
			Name: "fight",
			Features: []game.FeatureDefinition{
				{Name: "HealFeature"},
				{Name: "DurationFeature", Config: map[string]any{"duration": "10m"}},
			},
		}},
	}}
	return cfg
}

func newLib(t *testing.T) (*voxelgameslib.Lib, *memory.StatStore) {
	t.Helper()
	store := memory.NewStatStore()
	lib, err := voxelgameslib.New(context.Background(),
		voxelgameslib.WithConfig(testConfig(t)),
		voxelgameslib.WithStore(store),
	)
	require.NoError(t, err)
	require.NoError(t, lib.Start())
	return lib, store
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, voxelgameslib.Version)
	assert.Equal(t, strings.TrimSpace(voxelgameslib.Version), voxelgameslib.Version)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Store = "mongo"
	_, err := voxelgameslib.New(context.Background(), voxelgameslib.WithConfig(cfg))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNew_SQLiteStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store = config.StoreSQLite
	cfg.SQLitePath = t.TempDir() + "/stats.db"

	lib, err := voxelgameslib.New(context.Background(), voxelgameslib.WithConfig(cfg))
	require.NoError(t, err)
	require.NoError(t, lib.Start())
	assert.NoError(t, lib.Stop())
}

func TestNew_RedisLocksUseConfiguredPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Store = config.StoreRedis
	cfg.RedisAddr = mr.Addr()
	cfg.RedisLocks = true

	lib, err := voxelgameslib.New(context.Background(), voxelgameslib.WithConfig(cfg))
	require.NoError(t, err)
	require.NoError(t, lib.Start())
	defer lib.Stop()

	var held []string
	event.On(lib.Bus(), t, func(e *stats.PlayerIncrementStatEvent) {
		if held == nil {
			held = mr.Keys()
		}
	})
	u, err := lib.Users().Login("alice")
	require.NoError(t, err)

	assert.Contains(t, held, "vgl:lock:stats:"+u.UUID.String())
	for _, k := range held {
		assert.NotContains(t, k, "lock:lock:")
	}
}

func TestLib_EnableAndDisableEvents(t *testing.T) {
	store := memory.NewStatStore()
	lib, err := voxelgameslib.New(context.Background(),
		voxelgameslib.WithConfig(testConfig(t)),
		voxelgameslib.WithStore(store),
	)
	require.NoError(t, err)

	var enabled, disabled int
	event.On(lib.Bus(), t, func(e event.EnableEvent) {
		enabled++
		assert.Equal(t, voxelgameslib.Version, e.Version)
	})
	event.On(lib.Bus(), t, func(event.DisableEvent) { disabled++ })

	require.NoError(t, lib.Start())
	require.NoError(t, lib.Start(), "second start is a no-op")
	require.NoError(t, lib.Stop())

	assert.Equal(t, 1, enabled)
	assert.Equal(t, 1, disabled)
}

func TestLib_PlayerLifecycleTracksStats(t *testing.T) {
	lib, store := newLib(t)
	ctx := context.Background()

	u, err := lib.Users().Login("Alice")
	require.NoError(t, err)

	joins, err := lib.Stats().Get(ctx, u, stats.JoinCount)
	require.NoError(t, err)
	assert.Equal(t, 1.0, joins.Val())

	snap, err := lib.Games().Create(ctx, "duel")
	require.NoError(t, err)
	id := uuid.MustParse(snap.ID)
	require.NoError(t, lib.Games().Join(id, u))

	played, err := lib.Stats().Get(ctx, u, stats.GamesPlayed)
	require.NoError(t, err)
	assert.Equal(t, 1.0, played.Val())

	require.NoError(t, lib.Users().Logout(u.UUID))

	found, err := lib.Games().Find(id)
	require.NoError(t, err)
	assert.Empty(t, found.Players, "logout leaves every game")

	row, err := store.Load(ctx, u.UUID, "join_count")
	require.NoError(t, err, "logout flushes stats")
	assert.Equal(t, 1.0, row.Val)
	_, err = store.Load(ctx, u.UUID, "play_time")
	assert.NoError(t, err)

	require.NoError(t, lib.Stop())
}

func TestLib_MetricsFollowGames(t *testing.T) {
	lib, _ := newLib(t)
	ctx := context.Background()
	defer lib.Stop()

	u, err := lib.Users().Login("Bob")
	require.NoError(t, err)
	snap, err := lib.Games().Create(ctx, "duel")
	require.NoError(t, err)
	require.NoError(t, lib.Games().Join(uuid.MustParse(snap.ID), u))

	var cmd bytes.Buffer
	require.NoError(t, lib.Commands().Execute(ctx, voxelgameslib.NewConsoleSender(&cmd), "vgl version"))

	rec := scrape(t, lib)
	assert.Contains(t, rec, "vgl_games_started_total 1")
	assert.Contains(t, rec, "vgl_players_joined_total 1")
	assert.Contains(t, rec, `vgl_stat_changes_total{dir="inc",stat="games_played"} 1`)
	assert.Contains(t, rec, `vgl_commands_total{command="vgl version"} 1`)
}

func TestLib_RunStopsWithContext(t *testing.T) {
	lib, _ := newLib(t)
	defer lib.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	_, err := lib.Games().Create(ctx, "duel")
	require.NoError(t, err)

	assert.NoError(t, lib.Run(ctx))
}

func TestRunner_ExecutesConsoleCommands(t *testing.T) {
	lib, _ := newLib(t)
	defer lib.Stop()

	var out bytes.Buffer
	r := voxelgameslib.NewRunner(strings.NewReader("vgl version\n\nreload\nstop\nvgl version\n"), &out)
	r.Headless = true
	require.NoError(t, r.Run(context.Background(), lib))

	got := out.String()
	assert.Equal(t, 1, strings.Count(got, "You are using VoxelGamesLib version "+voxelgameslib.Version))
	assert.Contains(t, got, "This command has been disabled by VoxelGamesLib")
	assert.NotContains(t, got, "§", "console output has no color codes")
}

func TestRunner_RequiresIO(t *testing.T) {
	lib, _ := newLib(t)
	defer lib.Stop()
	assert.Error(t, (&voxelgameslib.Runner{}).Run(context.Background(), lib))
}

func TestStripColors(t *testing.T) {
	assert.Equal(t, "red text", voxelgameslib.StripColors("§cred §ltext"))
	assert.Equal(t, "plain", voxelgameslib.StripColors("plain"))
}
