package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/voxelgameslib/voxelgameslib/internal/logging"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the runtime configuration of a VoxelGamesLib server.
type Config struct {
	Addr          string            `yaml:"addr" json:"addr"`
	LogLevel      string            `yaml:"log_level" json:"log_level"`
	Store         string            `yaml:"store" json:"store"`
	SQLitePath    string            `yaml:"sqlite_path" json:"sqlite_path"`
	RedisAddr     string            `yaml:"redis_addr" json:"redis_addr"`
	RedisPrefix   string            `yaml:"redis_prefix" json:"redis_prefix"`
	RedisLocks    bool              `yaml:"redis_locks" json:"redis_locks"`
	TickRate      time.Duration     `yaml:"tick_rate" json:"tick_rate"`
	FlushInterval time.Duration     `yaml:"flush_interval" json:"flush_interval"`
	GamesDir      string            `yaml:"games_dir" json:"games_dir"`
	MapsDir       string            `yaml:"maps_dir" json:"maps_dir"`
	WorldDir      string            `yaml:"world_dir" json:"world_dir"`
	Operators     []string          `yaml:"operators" json:"operators"`
	Games         []game.Definition `yaml:"games" json:"games"`
}

// envConfig holds the raw environment overrides.
type envConfig struct {
	Addr          string        `env:"VGL_ADDR"`
	LogLevel      string        `env:"VGL_LOG_LEVEL"`
	Store         string        `env:"VGL_STORE"`
	SQLitePath    string        `env:"VGL_SQLITE_PATH"`
	RedisAddr     string        `env:"VGL_REDIS_ADDR"`
	RedisPrefix   string        `env:"VGL_REDIS_PREFIX"`
	RedisLocks    *bool         `env:"VGL_REDIS_LOCKS"`
	TickRate      time.Duration `env:"VGL_TICK_RATE"`
	FlushInterval time.Duration `env:"VGL_FLUSH_INTERVAL"`
	GamesDir      string        `env:"VGL_GAMES_DIR"`
	MapsDir       string        `env:"VGL_MAPS_DIR"`
	WorldDir      string        `env:"VGL_WORLD_DIR"`
	Operators     []string      `env:"VGL_OPERATORS" envSeparator:","`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:          ":8080",
		LogLevel:      "info",
		Store:         StoreMemory,
		SQLitePath:    "voxelgames.db",
		RedisAddr:     "localhost:6379",
		RedisPrefix:   "vgl:",
		TickRate:      game.DefaultTickRate,
		FlushInterval: 30 * time.Second,
		GamesDir:      "games",
		MapsDir:       "maps",
		WorldDir:      "worlds",
	}
}

// Load reads the config file at path (YAML, or JSON by extension), applies
// VGL_* environment overrides and validates the result. A missing file is
// not an error when path is empty or the file does not exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString(&cfg.Addr, e.Addr)
	setString(&cfg.LogLevel, e.LogLevel)
	setString(&cfg.Store, e.Store)
	setString(&cfg.SQLitePath, e.SQLitePath)
	setString(&cfg.RedisAddr, e.RedisAddr)
	setString(&cfg.RedisPrefix, e.RedisPrefix)
	setString(&cfg.GamesDir, e.GamesDir)
	setString(&cfg.MapsDir, e.MapsDir)
	setString(&cfg.WorldDir, e.WorldDir)
	if e.RedisLocks != nil {
		cfg.RedisLocks = *e.RedisLocks
	}
	if e.TickRate > 0 {
		cfg.TickRate = e.TickRate
	}
	if e.FlushInterval > 0 {
		cfg.FlushInterval = e.FlushInterval
	}
	if len(e.Operators) > 0 {
		cfg.Operators = e.Operators
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Validate checks the store backend, durations, log level and inline game definitions.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite store", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	if c.RedisLocks && c.RedisAddr == "" {
		return fmt.Errorf("%w: redis_locks needs redis_addr", ErrInvalidConfig)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalidConfig)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("%w: flush_interval must be positive", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for _, def := range c.Games {
		if err := def.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
