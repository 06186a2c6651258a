package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelgameslib/voxelgameslib"
	"github.com/voxelgameslib/voxelgameslib/internal/config"
	vglhttp "github.com/voxelgameslib/voxelgameslib/pkg/adapters/http"
	"github.com/voxelgameslib/voxelgameslib/pkg/adapters/memory"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"github.com/voxelgameslib/voxelgameslib/pkg/stats"
)

func newLib(t *testing.T) *voxelgameslib.Lib {
	t.Helper()
	cfg := config.Default()
	cfg.GamesDir = t.TempDir()
	cfg.Games = []game.Definition{{
		Name:       "duel",
		MaxPlayers: 2,
		Phases: []game.PhaseDefinition{{
			Name:     "fight",
			Features: []game.FeatureDefinition{{Name: "HealFeature"}},
		}},
	}}
	lib, err := voxelgameslib.New(context.Background(),
		voxelgameslib.WithConfig(cfg),
		voxelgameslib.WithStore(memory.NewStatStore()),
	)
	require.NoError(t, err)
	require.NoError(t, lib.Start())
	t.Cleanup(func() { lib.Stop() })
	return lib
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestHealthAndInfo(t *testing.T) {
	h := vglhttp.NewHandler(newLib(t))

	var health map[string]string
	assert.Equal(t, http.StatusOK, get(t, h, "/health", &health))
	assert.Equal(t, "ok", health["status"])

	var info map[string]any
	assert.Equal(t, http.StatusOK, get(t, h, "/api/info", &info))
	assert.Equal(t, voxelgameslib.Version, info["version"])
	assert.Equal(t, 0.0, info["games"])
}

func TestCORS(t *testing.T) {
	h := vglhttp.NewHandler(newLib(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/api/games", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGames(t *testing.T) {
	lib := newLib(t)
	h := vglhttp.NewHandler(lib)
	snap, err := lib.Games().Create(context.Background(), "duel")
	require.NoError(t, err)

	var games []game.Snapshot
	assert.Equal(t, http.StatusOK, get(t, h, "/api/games", &games))
	require.Len(t, games, 1)
	assert.Equal(t, snap.ID, games[0].ID)

	var one game.Snapshot
	assert.Equal(t, http.StatusOK, get(t, h, "/api/games/"+snap.ID, &one))
	assert.Equal(t, "duel", one.Mode)
	assert.Equal(t, "fight", one.Phase)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/games/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/games/nope", nil))

	var modes []game.Definition
	assert.Equal(t, http.StatusOK, get(t, h, "/api/modes", &modes))
	require.Len(t, modes, 1)
	assert.Equal(t, "duel", modes[0].Name)
}

func TestFeatures(t *testing.T) {
	h := vglhttp.NewHandler(newLib(t))
	var infos []map[string]any
	assert.Equal(t, http.StatusOK, get(t, h, "/api/features", &infos))
	assert.NotEmpty(t, infos)
	assert.Contains(t, rawBody(t, h, "/api/features"), "HealFeature")
}

func TestStats(t *testing.T) {
	lib := newLib(t)
	h := vglhttp.NewHandler(lib)
	ctx := context.Background()

	alice, err := lib.Users().Login("Alice")
	require.NoError(t, err)
	bob, err := lib.Users().Login("Bob")
	require.NoError(t, err)
	require.NoError(t, lib.Stats().Increment(ctx, alice, stats.Kills, 3))
	require.NoError(t, lib.Stats().Increment(ctx, bob, stats.Kills, 5))

	var own []vglhttp.StatView
	assert.Equal(t, http.StatusOK, get(t, h, "/api/stats/"+alice.UUID.String(), &own))
	views := map[string]vglhttp.StatView{}
	for _, v := range own {
		views[v.StatType] = v
	}
	assert.Equal(t, 3.0, views["kills"].Val)
	assert.Equal(t, "Kills", views["kills"].DisplayName)
	assert.Equal(t, 1.0, views["join_count"].Val)

	var top []vglhttp.StatView
	assert.Equal(t, http.StatusOK, get(t, h, "/api/stats/top/kills?limit=1", &top))
	require.Len(t, top, 1)
	assert.Equal(t, bob.UUID, top[0].UUID)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/stats/top/nope", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/stats/top/kills?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/stats/xyz", nil))
}

func TestMetricsEndpoint(t *testing.T) {
	lib := newLib(t)
	h := vglhttp.NewHandler(lib)
	_, err := lib.Games().Create(context.Background(), "duel")
	require.NoError(t, err)
	assert.Contains(t, rawBody(t, h, "/metrics"), "vgl_games_started_total 1")
}

func rawBody(t *testing.T, h http.Handler, path string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec.Body.String()
}

// -- websocket --

func dial(t *testing.T, lib *voxelgameslib.Lib) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(vglhttp.NewHandler(lib))
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(vglhttp.ClientMessage{Type: typ, Data: raw}))
}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// readUntil skips messages until one with the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ {
			return msg
		}
	}
}

func TestWebSocket_LoginAndCommand(t *testing.T) {
	lib := newLib(t)
	conn := dial(t, lib)

	send(t, conn, vglhttp.MsgTypeLogin, vglhttp.LoginData{Name: "Alice"})
	var welcome vglhttp.WelcomeData
	require.NoError(t, json.Unmarshal(readUntil(t, conn, vglhttp.MsgTypeWelcome).Data, &welcome))
	assert.Equal(t, "Alice", welcome.Name)
	assert.Equal(t, voxelgameslib.Version, welcome.Version)

	send(t, conn, vglhttp.MsgTypeChat, vglhttp.ChatData{Text: "/vgl version"})
	var line string
	require.NoError(t, json.Unmarshal(readUntil(t, conn, "message").Data, &line))
	assert.Equal(t, "You are using VoxelGamesLib version "+voxelgameslib.Version, line)

	send(t, conn, vglhttp.MsgTypeChat, vglhttp.ChatData{Text: "hello"})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, "message").Data, &line))
	assert.Equal(t, "<Alice> hello", line)
}

func TestWebSocket_RequiresLogin(t *testing.T) {
	conn := dial(t, newLib(t))

	send(t, conn, vglhttp.MsgTypeJoin, vglhttp.GameData{Game: "duel"})
	var msg string
	require.NoError(t, json.Unmarshal(readUntil(t, conn, vglhttp.MsgTypeError).Data, &msg))
	assert.Equal(t, "login first", msg)

	send(t, conn, "dance", nil)
	require.NoError(t, json.Unmarshal(readUntil(t, conn, vglhttp.MsgTypeError).Data, &msg))
	assert.Contains(t, msg, "unknown message type")

	send(t, conn, vglhttp.MsgTypeLogin, vglhttp.LoginData{Name: "x"})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, vglhttp.MsgTypeError).Data, &msg))
	assert.Equal(t, "invalid player name", msg)
}

func TestWebSocket_JoinByModeAndDisconnect(t *testing.T) {
	lib := newLib(t)
	conn := dial(t, lib)

	send(t, conn, vglhttp.MsgTypeLogin, vglhttp.LoginData{Name: "Alice"})
	readUntil(t, conn, vglhttp.MsgTypeWelcome)

	send(t, conn, vglhttp.MsgTypeJoin, vglhttp.GameData{Game: "duel"})
	var snap game.Snapshot
	for snap.Mode == "" {
		msg := readUntil(t, conn, "state")
		_ = json.Unmarshal(msg.Data, &snap)
	}
	assert.Equal(t, "duel", snap.Mode)
	assert.Equal(t, []string{"Alice"}, snap.Players)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return len(lib.Users().Online()) == 0
	}, 2*time.Second, 10*time.Millisecond, "disconnect logs the user out")

	found, err := lib.Games().Find(uuid.MustParse(snap.ID))
	require.NoError(t, err)
	assert.Empty(t, found.Players)
}

func TestWebSocket_LeaveWithoutDataLeavesEveryGame(t *testing.T) {
	lib := newLib(t)
	conn := dial(t, lib)

	send(t, conn, vglhttp.MsgTypeLogin, vglhttp.LoginData{Name: "Alice"})
	readUntil(t, conn, vglhttp.MsgTypeWelcome)
	send(t, conn, vglhttp.MsgTypeJoin, vglhttp.GameData{Game: "duel"})
	var snap game.Snapshot
	for snap.Mode == "" {
		_ = json.Unmarshal(readUntil(t, conn, "state").Data, &snap)
	}
	require.Equal(t, []string{"Alice"}, snap.Players)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"leave"}`)))
	assert.Eventually(t, func() bool {
		found, err := lib.Games().Find(uuid.MustParse(snap.ID))
		return err == nil && len(found.Players) == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, lib.Users().Online(), 1)
}
