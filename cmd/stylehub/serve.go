package main

import (
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/app"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/config"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP API (configured through environment variables)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]string{}
			if port > 0 {
				overrides["HTTP_PORT"] = strconv.Itoa(port)
			}

			// Load configuration from environment variables.
			cfg, err := config.LoadWith(overrides)
			if err != nil {
				return err
			}

			// Initialize structured logger.
			log := logger.New(app.ServiceName, cfg.LogLevel)
			log.Info("starting stylehub",
				slog.String("environment", cfg.Environment),
				slog.String("version", app.Version),
				slog.Int("http_port", cfg.HTTPPort),
				slog.String("catalog_source", cfg.CatalogSource),
				slog.String("storage_backend", cfg.StorageBackend),
			)

			// Create the application with all dependencies wired.
			application, err := app.NewApp(cfg, log)
			if err != nil {
				log.Error("failed to initialize application", slog.String("error", err.Error()))
				return err
			}

			// Create a context that is cancelled on SIGINT or SIGTERM.
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			// Run the application. This blocks until shutdown.
			if err := application.Run(ctx); err != nil {
				log.Error("application error", slog.String("error", err.Error()))
				return err
			}

			log.Info("stylehub stopped")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port, overriding HTTP_PORT")
	return cmd
}
