package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelgameslib/voxelgameslib"
	"github.com/voxelgameslib/voxelgameslib/internal/config"
	"github.com/voxelgameslib/voxelgameslib/pkg/adapters/memory"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"github.com/voxelgameslib/voxelgameslib/pkg/stats"
)

func newServer(t *testing.T) (*Server, *voxelgameslib.Lib) {
	t.Helper()
	cfg := config.Default()
	cfg.GamesDir = t.TempDir()
	cfg.Games = []game.Definition{{
		Name:   "lobby",
		Phases: []game.PhaseDefinition{{Name: "wait", Features: []game.FeatureDefinition{{Name: "HealFeature"}}}},
	}}
	lib, err := voxelgameslib.New(context.Background(),
		voxelgameslib.WithConfig(cfg),
		voxelgameslib.WithStore(memory.NewStatStore()),
	)
	require.NoError(t, err)
	require.NoError(t, lib.Start())
	t.Cleanup(func() { lib.Stop() })
	return NewServer(lib), lib
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "text content expected, got %T", res.Content[0])
	return tc.Text
}

func TestListGames(t *testing.T) {
	s, lib := newServer(t)
	snap, err := lib.Games().Create(context.Background(), "lobby")
	require.NoError(t, err)

	res, err := s.handleListGames(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	var games []game.Snapshot
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &games))
	require.Len(t, games, 1)
	assert.Equal(t, snap.ID, games[0].ID)
}

func TestListFeatures(t *testing.T) {
	s, _ := newServer(t)
	res, err := s.handleListFeatures(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	var infos []feature.Info
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &infos))
	names := make([]string, 0, len(infos))
	for _, i := range infos {
		names = append(names, i.Name)
	}
	assert.Contains(t, names, "HealFeature")
}

func TestGetStats(t *testing.T) {
	s, lib := newServer(t)
	ctx := context.Background()
	u, err := lib.Users().Login("Alice")
	require.NoError(t, err)
	require.NoError(t, lib.Stats().Increment(ctx, u, stats.PlayTime, 90))

	byName, err := s.handleGetStats(ctx, mcp.CallToolRequest{}, StatsArgs{Player: "Alice"})
	require.NoError(t, err)
	byUUID, err := s.handleGetStats(ctx, mcp.CallToolRequest{}, StatsArgs{Player: u.UUID.String()})
	require.NoError(t, err)
	assert.Equal(t, byName, byUUID)

	assert.Equal(t, u.UUID.String(), byName.UUID)
	require.Len(t, byName.Stats, 2)
	assert.Equal(t, "join_count", byName.Stats[0].StatType)
	assert.Equal(t, StatEntry{StatType: "play_time", DisplayName: "Play time", Val: 90, Formatted: "1m30s"}, byName.Stats[1])

	_, err = s.handleGetStats(ctx, mcp.CallToolRequest{}, StatsArgs{Player: " "})
	assert.Error(t, err)
}

func TestResolvePlayer(t *testing.T) {
	id := uuid.New()
	got, err := resolvePlayer(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = resolvePlayer("MiniDigger")
	require.NoError(t, err)
	assert.Equal(t, domain.OfflineUUID("MiniDigger"), got)
}

func TestJSONResource(t *testing.T) {
	contents, err := jsonResource(GamesURI, []string{"a"})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	rc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, GamesURI, rc.URI)
	assert.Equal(t, `["a"]`, rc.Text)
}
