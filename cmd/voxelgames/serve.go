package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/voxelgameslib/voxelgameslib"
	"github.com/voxelgameslib/voxelgameslib/internal/presentation/tui"
	vglhttp "github.com/voxelgameslib/voxelgameslib/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the game server",
	Long: `Starts the game loop, the player websocket gateway and the admin API.
Console commands are read from stdin unless --no-console is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		noBanner, _ := cmd.Flags().GetBool("no-banner")
		noConsole, _ := cmd.Flags().GetBool("no-console")

		lib, err := newLib(cmd, cfg)
		if err != nil {
			return err
		}
		if err := lib.Start(); err != nil {
			return err
		}
		defer lib.Stop()

		if !noBanner {
			tui.PrintBanner(cmd.OutOrStdout(), voxelgameslib.Version)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           vglhttp.NewHandler(lib, vglhttp.WithLogger(lib.Logger())),
			ReadHeaderTimeout: 10 * time.Second,
		}
		serverErrors := make(chan error, 1)
		go func() {
			lib.Logger().Info("Server listening", "address", cfg.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		loopDone := make(chan error, 1)
		go func() { loopDone <- lib.Run(ctx) }()

		if !noConsole {
			go func() {
				runner := voxelgameslib.NewRunner(os.Stdin, cmd.OutOrStdout())
				if err := runner.Run(ctx, lib); err != nil {
					lib.Logger().Error("Console failed", "error", err)
				}
				stop()
			}()
		}

		var runErr error
		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				runErr = err
			}
			stop()
		case <-ctx.Done():
		}

		lib.Logger().Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lib.Logger().Warn("Graceful shutdown did not complete", "error", err)
			srv.Close()
		}
		return errors.Join(runErr, <-loopDone)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	serveCmd.Flags().Bool("no-banner", false, "Do not print the startup banner")
	serveCmd.Flags().Bool("no-console", false, "Do not read console commands from stdin")
}
