package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
)

// Metrics holds the Prometheus collectors of one server. They live on a
// private registry so several servers (or tests) can coexist in a process.
type Metrics struct {
	registry *prometheus.Registry

	GamesStarted  prometheus.Counter
	GamesEnded    prometheus.Counter
	PlayersJoined prometheus.Counter
	StatChanges   *prometheus.CounterVec
	TickDuration  prometheus.Histogram
	Commands      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vgl_games_started_total",
			Help: "Total number of started games",
		}),
		GamesEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vgl_games_ended_total",
			Help: "Total number of ended games",
		}),
		PlayersJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vgl_players_joined_total",
			Help: "Total number of game joins",
		}),
		StatChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vgl_stat_changes_total",
				Help: "Stat increments and decrements by stat type",
			},
			[]string{"stat", "dir"},
		),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vgl_tick_duration_seconds",
			Help:    "Duration of one game handler tick",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vgl_commands_total",
				Help: "Executed chat commands",
			},
			[]string{"command"},
		),
	}
	m.registry.MustRegister(
		m.GamesStarted,
		m.GamesEnded,
		m.PlayersJoined,
		m.StatChanges,
		m.TickDuration,
		m.Commands,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GameHooks records game lifecycle metrics.
func (m *Metrics) GameHooks() game.Hooks {
	return game.Hooks{
		OnGameStart: func(*game.Game) { m.GamesStarted.Inc() },
		OnGameEnd:   func(*game.Game) { m.GamesEnded.Inc() },
		OnJoin:      func(*game.Game, *domain.User) { m.PlayersJoined.Inc() },
		OnTick:      func(d time.Duration) { m.TickDuration.Observe(d.Seconds()) },
	}
}

// StatChanged counts a stat change; dir is "inc" or "dec".
func (m *Metrics) StatChanged(stat, dir string) {
	m.StatChanges.WithLabelValues(stat, dir).Inc()
}

func (m *Metrics) CommandExecuted(command string) {
	m.Commands.WithLabelValues(command).Inc()
}
