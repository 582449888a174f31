package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vicinitylabs/vicinity"
	httpAdapter "github.com/vicinitylabs/vicinity/internal/adapters/http"
	"github.com/vicinitylabs/vicinity/internal/config"
	"github.com/vicinitylabs/vicinity/internal/logging"
	"github.com/vicinitylabs/vicinity/pkg/adapters/postgres"
	redisAdapter "github.com/vicinitylabs/vicinity/pkg/adapters/redis"
	"github.com/vicinitylabs/vicinity/pkg/persistence/middleware"
	"github.com/vicinitylabs/vicinity/pkg/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the onboarding wizard and directory API over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		listen, _ := cmd.Flags().GetString("listen")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if listen != "" {
			cfg.Listen = listen
		}

		logger := logging.New(logging.ParseLevel(cfg.Log.Level))
		if cfg.Log.Format == "json" {
			logger = logging.NewJSON(logging.ParseLevel(cfg.Log.Level))
		}

		appOpts := []vicinity.Option{vicinity.WithLogger(logger)}

		// Session backend.
		if cfg.Session.Backend == "redis" {
			store := redisAdapter.New(
				cfg.Session.Redis.Address,
				cfg.Session.Redis.Password,
				cfg.Session.Redis.DB,
				redisAdapter.WithTTL(cfg.Session.TTL),
			)
			defer store.Close()

			if cfg.Session.EncryptionKey != "" {
				key, err := cfg.ActiveEncryptionKey()
				if err != nil {
					return err
				}
				fallbacks, err := cfg.FallbackEncryptionKeys()
				if err != nil {
					return err
				}
				appOpts = append(appOpts, vicinity.WithSessionStore(middleware.Chain(store,
					middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
						ActiveKey:    key,
						FallbackKeys: fallbacks,
					}),
				)))
			} else {
				appOpts = append(appOpts, vicinity.WithSessionStore(store))
			}

			if cfg.Session.Redis.DistributedLock {
				locker := redisAdapter.NewLocker(store.Client(), "vicinity:session:")
				appOpts = append(appOpts, vicinity.WithLocker(locker))
			}
		}

		// Listing backend.
		if cfg.Storage.Backend == "postgres" {
			store, err := postgres.Open(cmd.Context(), cfg.Storage.Postgres.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			if cfg.Storage.Postgres.Migrate {
				if err := postgres.Migrate(store.DB()); err != nil {
					return err
				}
				logger.Info("database migrations applied")
			}
			appOpts = append(appOpts, vicinity.WithListingStore(store))
		}

		// Telemetry.
		hooks := telemetry.NewLogHooks(logger)
		var registry *prometheus.Registry
		if cfg.Metrics.Enabled {
			registry = prometheus.NewRegistry()
			metrics := telemetry.NewMetrics(registry)
			hooks = telemetry.Merge(hooks, metrics.Hooks())
		}
		appOpts = append(appOpts, vicinity.WithTelemetryHooks(*hooks))

		app := vicinity.New(appOpts...)

		serverOpts := []httpAdapter.ServerOption{
			httpAdapter.WithServerLogger(logger),
			httpAdapter.WithVersion(vicinity.Version),
		}
		if registry != nil {
			serverOpts = append(serverOpts, httpAdapter.WithMetricsGatherer(registry))
		}
		server := httpAdapter.NewServer(app.Wizard, app.Sessions, app.Directory, app.Moderation, serverOpts...)

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: server.Handler(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("server listening",
				"address", srv.Addr,
				"session_backend", cfg.Session.Backend,
				"storage_backend", cfg.Storage.Backend,
			)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
			}
			logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (overrides config)")
}
