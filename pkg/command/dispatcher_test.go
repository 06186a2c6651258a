package command_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelgameslib/voxelgameslib/pkg/adapters/memory"
	"github.com/voxelgameslib/voxelgameslib/pkg/command"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature/features"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"github.com/voxelgameslib/voxelgameslib/pkg/stats"
)

// chatUser records the chat lines a user receives.
func chatUser(name string) (*domain.User, *[]string) {
	u := domain.NewUser(domain.OfflineUUID(name), name)
	u.Grant(domain.PermissionUser)
	var lines []string
	u.Player().Attach(func(m domain.Message) {
		if m.Type == domain.MessageChat {
			lines = append(lines, m.Data.(string))
		}
	})
	return u, &lines
}

func TestVersionCommand(t *testing.T) {
	var observed []string
	d := command.NewDispatcher("2.0.0", command.WithObserver(func(c string) { observed = append(observed, c) }))
	u, lines := chatUser("alice")

	require.NoError(t, d.Execute(context.Background(), u, "/vgl version"))
	require.NoError(t, d.Execute(context.Background(), u, "voxelgameslib version"))
	assert.Equal(t, []string{
		"You are using VoxelGamesLib version 2.0.0",
		"You are using VoxelGamesLib version 2.0.0",
	}, *lines)
	assert.Equal(t, []string{"vgl version", "vgl version"}, observed)
}

func TestReloadIsDisabled(t *testing.T) {
	d := command.NewDispatcher("2.0.0")

	admin, lines := chatUser("admin")
	admin.Grant("bukkit.command.reload")
	require.NoError(t, d.Execute(context.Background(), admin, "/rl"))
	require.NoError(t, d.Execute(context.Background(), admin, "/reload confirm"))
	assert.Equal(t, []string{
		command.Red + command.DisabledReloadMessage,
		command.Red + command.DisabledReloadMessage,
	}, *lines)

	u, userLines := chatUser("alice")
	err := d.Execute(context.Background(), u, "/reload")
	assert.ErrorIs(t, err, command.ErrNoPermission)
	require.Len(t, *userLines, 1)
	assert.Contains(t, (*userLines)[0], "do not have permission")
}

func TestUnknownCommand(t *testing.T) {
	d := command.NewDispatcher("2.0.0")
	u, lines := chatUser("alice")

	assert.ErrorIs(t, d.Execute(context.Background(), u, "/nope"), command.ErrUnknownCommand)
	assert.ErrorIs(t, d.Execute(context.Background(), u, "   "), command.ErrUnknownCommand)
	assert.Len(t, *lines, 1)
}

func TestFeaturesCommand(t *testing.T) {
	r := feature.NewRegistry()
	require.NoError(t, features.Register(r, features.Deps{}))
	d := command.NewDispatcher("2.0.0", command.WithFeatures(r))

	console := &command.Console{}
	require.NoError(t, d.Execute(context.Background(), console, "/vgl features"))
	out := console.Lines()
	require.Len(t, out, 6)
	assert.Equal(t, "DurationFeature v1.0 by VoxelGamesLib: Ends the phase after a fixed time", out[0])
	assert.Contains(t, out[2], "HealFeature v1.0 by MiniDigger")
}

func TestStatsCommand(t *testing.T) {
	h := stats.NewHandler(memory.NewStatStore(), event.NewBus())
	d := command.NewDispatcher("2.0.0", command.WithStats(h))
	ctx := context.Background()

	u, lines := chatUser("alice")
	require.NoError(t, d.Execute(ctx, u, "/vgl stats"))
	assert.Equal(t, []string{"alice has no stats yet"}, *lines)

	require.NoError(t, h.Increment(ctx, u, stats.Kills, 3))
	require.NoError(t, h.Increment(ctx, u, stats.PlayTime, 120))

	console := &command.Console{}
	require.NoError(t, d.Execute(ctx, console, "/vgl stats alice"))
	assert.Equal(t, []string{"Stats of alice:", "  Kills: 3", "  Play time: 2m0s"}, console.Lines())

	assert.Error(t, d.Execute(ctx, &command.Console{}, "/vgl stats"))
}

func TestGameCommands(t *testing.T) {
	r := feature.NewRegistry()
	require.NoError(t, features.Register(r, features.Deps{}))
	games := game.NewHandler(event.NewBus(), r)
	require.NoError(t, games.Register(game.Definition{
		Name:   "lobby",
		Phases: []game.PhaseDefinition{{Name: "wait", Features: []game.FeatureDefinition{{Name: "HealFeature"}}}},
	}))
	d := command.NewDispatcher("2.0.0", command.WithGames(games))
	ctx := context.Background()

	console := &command.Console{}
	require.NoError(t, d.Execute(ctx, console, "/vgl games"))
	require.NoError(t, d.Execute(ctx, console, "/vgl modes"))
	require.NoError(t, d.Execute(ctx, console, "/vgl create lobby"))
	assert.Equal(t, "No games are running", console.Lines()[0])
	assert.Equal(t, "Game modes: lobby", console.Lines()[1])

	snap := games.List()[0]
	u, _ := chatUser("alice")
	require.NoError(t, d.Execute(ctx, u, "/vgl join "+snap.ID))
	assert.Len(t, games.GamesOf(u), 1)
	require.NoError(t, d.Execute(ctx, u, "/vgl leave"))
	assert.Empty(t, games.GamesOf(u))

	notAllowed, _ := chatUser("bob")
	assert.ErrorIs(t, d.Execute(ctx, notAllowed, "/vgl create lobby"), command.ErrNoPermission)
}
