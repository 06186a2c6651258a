package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/voxelgameslib/voxelgameslib"
	"github.com/voxelgameslib/voxelgameslib/internal/config"
	"github.com/voxelgameslib/voxelgameslib/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "voxelgames",
	Short:         "VoxelGamesLib game server",
	Long:          `VoxelGamesLib runs multiplayer minigames built from features, phases and game definitions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "voxelgames.yml", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, cfg.Validate()
}

func newLib(cmd *cobra.Command, cfg config.Config) (*voxelgameslib.Lib, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return voxelgameslib.New(cmd.Context(),
		voxelgameslib.WithConfig(cfg),
		voxelgameslib.WithLogger(logging.New(level)),
	)
}
