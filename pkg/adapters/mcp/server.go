package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/voxelgameslib/voxelgameslib"
	"github.com/voxelgameslib/voxelgameslib/internal/logging"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"github.com/voxelgameslib/voxelgameslib/pkg/stats"
)

const (
	GamesURI = "vgl://games"
	ModesURI = "vgl://modes"
)

// Backend is the part of voxelgameslib.Lib the MCP server reads from.
type Backend interface {
	Games() *game.Handler
	Features() *feature.Registry
	Stats() *stats.Handler
}

// StatsArgs are the arguments of the get_stats tool.
type StatsArgs struct {
	Player string `json:"player" jsonschema_description:"Player name or uuid"`
}

type StatEntry struct {
	StatType    string  `json:"stat_type"`
	DisplayName string  `json:"display_name"`
	Val         float64 `json:"val"`
	Formatted   string  `json:"formatted"`
}

// StatsResponse is the structured result of get_stats.
type StatsResponse struct {
	UUID  string      `json:"uuid" jsonschema_description:"The player uuid"`
	Stats []StatEntry `json:"stats" jsonschema_description:"Persisted stats sorted by type"`
}

// Server exposes a VoxelGamesLib server for inspection over MCP.
type Server struct {
	backend   Backend
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(backend Backend, opts ...Option) *Server {
	s := &Server{
		backend:   backend,
		mcpServer: server.NewMCPServer("voxelgames-mcp", voxelgameslib.Version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_games",
		mcp.WithDescription("List the running games with their phase and players."),
	), s.handleListGames)

	s.mcpServer.AddTool(mcp.NewTool("list_features",
		mcp.WithDescription("List the registered features with author, version and description."),
	), s.handleListFeatures)

	statsTool := mcp.NewTool("get_stats",
		mcp.WithDescription("Get the persisted stats of a player."),
		mcp.WithString("player", mcp.Required(), mcp.Description("Player name or uuid")),
		mcp.WithOutputSchema[StatsResponse](),
	)
	s.mcpServer.AddTool(statsTool, mcp.NewStructuredToolHandler(s.handleGetStats))
}

func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(s.backend.Games().List())
}

func (s *Server) handleListFeatures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(s.backend.Features().Infos())
}

// resolvePlayer accepts a uuid or an offline-mode player name.
func resolvePlayer(player string) (uuid.UUID, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return uuid.Nil, errors.New("player is required")
	}
	if id, err := uuid.Parse(player); err == nil {
		return id, nil
	}
	return domain.OfflineUUID(player), nil
}

func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest, args StatsArgs) (StatsResponse, error) {
	id, err := resolvePlayer(args.Player)
	if err != nil {
		return StatsResponse{}, err
	}
	rows, err := s.backend.Stats().List(ctx, id)
	if err != nil {
		return StatsResponse{}, fmt.Errorf("load stats: %w", err)
	}

	resp := StatsResponse{UUID: id.String(), Stats: make([]StatEntry, 0, len(rows))}
	conv := s.backend.Stats().Converter()
	for _, row := range rows {
		entry := StatEntry{StatType: row.StatType, DisplayName: row.StatType, Val: row.Val}
		if t, err := conv.FromColumn(row.StatType); err == nil {
			entry.DisplayName = t.DisplayName()
			entry.Formatted = t.Format(row.Val)
		}
		resp.Stats = append(resp.Stats, entry)
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GamesURI, "Running games",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(GamesURI, s.backend.Games().List())
	})

	s.mcpServer.AddResource(mcp.NewResource(ModesURI, "Game mode definitions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(ModesURI, s.backend.Games().Definitions())
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
