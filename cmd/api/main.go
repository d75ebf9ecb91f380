package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adrian-inthe/events7/internal/app"
	"github.com/adrian-inthe/events7/internal/config"
	"github.com/adrian-inthe/events7/internal/permission"
	"github.com/adrian-inthe/events7/internal/storage/memory"
	"github.com/adrian-inthe/events7/internal/storage/postgres"
	transporthttp "github.com/adrian-inthe/events7/internal/transport/http"
	"github.com/adrian-inthe/events7/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const startupTimeout = 5 * time.Second

func main() {
	rootCmd := cobra.Command{
		Use:          "events7",
		Short:        "events7 event management API",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		startServerCommand(),
		migrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func startServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return startServer(conf, logger)
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), startupTimeout)
			defer cancel()

			pool, err := connectPostgres(ctx, conf.Storage.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := migrations.Apply(ctx, pool)
			if err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("migrations applied", zap.Strings("applied", applied))
			return nil
		},
	}
}

// bootstrap exports .env before reading config, then reports how that went
// through the configured logger.
func bootstrap() (config.Config, *zap.Logger, error) {
	envPath, envErr := config.LoadDotEnv()
	if envErr != nil {
		envErr = fmt.Errorf("load %s: %w", envPath, envErr)
	}

	conf, err := config.Load()
	if err != nil {
		return config.Config{}, nil, errors.Join(err, envErr)
	}
	logger, err := config.NewLogger(conf.Log)
	if err != nil {
		return config.Config{}, nil, errors.Join(err, envErr)
	}

	switch {
	case envErr != nil:
		logger.Warn("couldn't load .env file", zap.Error(envErr))
	case envPath != "":
		logger.Info("loaded .env file", zap.String("path", envPath))
	}
	return conf, logger, nil
}

func startServer(conf config.Config, logger *zap.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	repo, closeRepo, err := openEventRepository(startupCtx, conf, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if conf.Permission.APIKey == "" || conf.Permission.APISecret == "" {
		logger.Warn("partner credentials not set, ads permission checks will be denied")
	}
	outbound := &http.Client{Timeout: conf.Permission.Timeout}
	resolver := permission.NewResolver(
		permission.NewGeolocationClient(conf.Permission.GeolocationURL, outbound),
		permission.NewPartnerClient(conf.Permission.PartnerURL, conf.Permission.APIKey, conf.Permission.APISecret, outbound),
		permission.WithLookupTimeout(conf.Permission.Timeout),
		permission.WithLogger(logger.Named("permission")),
		permission.WithMetrics(permission.NewMetrics(registry)),
	)
	svc := app.NewEventService(repo, resolver)

	trustedProxies, err := conf.Server.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	var callerOverride string
	if conf.IsDevelopment() {
		callerOverride = conf.Permission.DevCallerAddress
		logger.Info("development mode, geolocating all requests as", zap.String("caller_address", callerOverride))
	}

	server := &http.Server{
		Addr: conf.Server.ListenString(),
		Handler: transporthttp.NewRouter(transporthttp.RouterConfig{
			Events:        svc,
			Permissions:   svc,
			CallerAddress: transporthttp.NewCallerAddressFunc(callerOverride, trustedProxies),
			CORSOrigins:   conf.Server.CORSOrigins,
			Logger:        logger.Named("http"),
			Registry:      registry,
		}),
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
	}

	logger.Info("api listening",
		zap.String("addr", server.Addr),
		zap.String("storage", conf.Storage.Driver),
		zap.String("app_env", conf.AppEnv),
	)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
	return nil
}

func openEventRepository(ctx context.Context, conf config.Config, logger *zap.Logger) (app.EventRepository, func(), error) {
	if conf.Storage.Driver != config.StoragePostgres {
		return memory.NewEventRepository(memory.SeedEvents()...), func() {}, nil
	}

	pool, err := connectPostgres(ctx, conf.Storage.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	applied, err := migrations.Apply(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", zap.Strings("applied", applied))
	}
	return postgres.NewEventRepository(pool), pool.Close, nil
}

func connectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}
