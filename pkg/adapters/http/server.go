package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib"
	"github.com/voxelgameslib/voxelgameslib/internal/logging"
	"github.com/voxelgameslib/voxelgameslib/pkg/command"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"github.com/voxelgameslib/voxelgameslib/pkg/observability"
	"github.com/voxelgameslib/voxelgameslib/pkg/stats"
	"github.com/voxelgameslib/voxelgameslib/pkg/user"
)

// DefaultTopLimit is the leaderboard size when no limit is requested.
const DefaultTopLimit = 10

// Backend is the part of voxelgameslib.Lib the HTTP adapter uses.
type Backend interface {
	Games() *game.Handler
	Features() *feature.Registry
	Stats() *stats.Handler
	Users() *user.Handler
	Commands() *command.Dispatcher
	Metrics() *observability.Metrics
}

// Server serves the admin API, the metrics endpoint and the player gateway.
type Server struct {
	Backend Backend
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for a server backend.
func NewHandler(backend Backend, opts ...Option) http.Handler {
	server := &Server{Backend: backend, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/metrics", backend.Metrics().Handler().ServeHTTP)
	r.Get("/ws", server.HandleWebSocket)
	r.Route("/api", func(r chi.Router) {
		r.Get("/info", server.GetInfo)
		r.Get("/modes", server.ListModes)
		r.Get("/games", server.ListGames)
		r.Get("/games/{id}", server.GetGame)
		r.Get("/features", server.ListFeatures)
		r.Get("/stats/top/{stat}", server.TopStats)
		r.Get("/stats/{uuid}", server.GetStats)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /api/info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":      "voxelgames",
		"version":  voxelgameslib.Version,
		"games":    len(s.Backend.Games().List()),
		"online":   len(s.Backend.Users().Online()),
		"features": len(s.Backend.Features().Infos()),
	})
}

func (s *Server) ListModes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Backend.Games().Definitions())
}

func (s *Server) ListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Backend.Games().List())
}

// GetGame handles GET /api/games/{id}.
func (s *Server) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	snap, err := s.Backend.Games().Find(id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) ListFeatures(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Backend.Features().Infos())
}

// StatView is a persisted stat with its display form.
type StatView struct {
	UUID        uuid.UUID `json:"uuid"`
	StatType    string    `json:"stat_type"`
	DisplayName string    `json:"display_name"`
	Val         float64   `json:"val"`
	Formatted   string    `json:"formatted"`
}

func (s *Server) view(row domain.StatRow) StatView {
	v := StatView{UUID: row.UUID, StatType: row.StatType, DisplayName: row.StatType, Val: row.Val}
	if t, err := s.Backend.Stats().Converter().FromColumn(row.StatType); err == nil {
		v.DisplayName = t.DisplayName()
		v.Formatted = t.Format(row.Val)
	} else {
		v.Formatted = strconv.FormatFloat(row.Val, 'f', -1, 64)
	}
	return v
}

// GetStats handles GET /api/stats/{uuid}.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid uuid")
		return
	}
	rows, err := s.Backend.Stats().List(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	out := make([]StatView, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.view(row))
	}
	s.writeJSON(w, http.StatusOK, out)
}

// TopStats handles GET /api/stats/top/{stat}?limit=n.
func (s *Server) TopStats(w http.ResponseWriter, r *http.Request) {
	t, ok := s.Backend.Stats().Trackables().Get(chi.URLParam(r, "stat"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown stat type")
		return
	}
	limit := DefaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}
	rows, err := s.Backend.Stats().Top(r.Context(), t, limit)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	out := make([]StatView, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.view(row))
	}
	s.writeJSON(w, http.StatusOK, out)
}

// -- Helpers --

func statusOf(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, game.ErrUnknownMode),
		errors.Is(err, stats.ErrUnknownTrackable), errors.Is(err, domain.ErrStatNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrGameFull), errors.Is(err, game.ErrGameEnded),
		errors.Is(err, game.ErrAlreadyJoined), errors.Is(err, game.ErrJoinDenied):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}
