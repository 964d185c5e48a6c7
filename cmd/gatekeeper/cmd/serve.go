package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bitvelocity/gatekeeper/auth"
	"github.com/bitvelocity/gatekeeper/health"
	"github.com/bitvelocity/gatekeeper/internal/config"
	"github.com/bitvelocity/gatekeeper/internal/server"
	"github.com/bitvelocity/gatekeeper/observe"
	"github.com/bitvelocity/gatekeeper/product"
	"github.com/bitvelocity/gatekeeper/resilience"
	"github.com/bitvelocity/gatekeeper/secret"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gatekeeper API server",
	Long:  `Starts the HTTP server with the product catalog, health and metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	obsCfg := cfg.Observe()
	obsCfg.Version = version
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("configure telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()
	logger := obs.Logger()

	resolver, err := secret.DefaultRegistry.Resolver(true)
	if err != nil {
		return fmt.Errorf("configure secret resolver: %w", err)
	}
	key, err := cfg.VerificationKey(ctx, resolver)
	if err != nil {
		return err
	}
	keys, err := auth.NewStaticKeyProvider(key)
	if err != nil {
		return err
	}

	authMetrics, err := observe.AuthMetricsFromObserver(obs)
	if err != nil {
		return fmt.Errorf("configure auth metrics: %w", err)
	}
	authOpts := []auth.Option{auth.WithLogger(logger), auth.WithAuthMetrics(authMetrics)}

	validator, err := auth.NewValidator(cfg.Validator(), keys)
	if err != nil {
		return fmt.Errorf("configure token validator: %w", err)
	}
	gate, err := auth.NewGate(validator, append(authOpts, auth.WithCORS(cfg.CORSPolicy()))...)
	if err != nil {
		return fmt.Errorf("configure authentication gate: %w", err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	agg := health.NewAggregator()
	agg.Register(health.NewKeyChecker(keys, auth.MinHMACKeyLength))
	agg.Register(health.NewPingChecker("product_store", repo))

	telemetry, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fmt.Errorf("configure request telemetry: %w", err)
	}

	var metricsHandler http.Handler
	if cfg.MetricsExporter == "prometheus" {
		metricsHandler = promhttp.Handler()
	}

	router := server.NewRouter(server.RouterOptions{
		BasePath:       cfg.BasePath,
		Gate:           gate,
		Policy:         policy,
		Products:       product.NewService(repo, product.WithLogger(logger)),
		Health:         agg,
		Telemetry:      telemetry,
		MetricsHandler: metricsHandler,
		Logger:         logger,
		AuthOptions:    authOpts,
	})

	logger.Info(ctx, "starting gatekeeper",
		observe.F("version", version),
		observe.F("addr", cfg.ServerAddr),
		observe.F("base_path", cfg.BasePath),
		observe.F("rules", len(policy.Rules())),
	)
	return server.NewServer(cfg.ServerAddr, router, cfg.ShutdownTimeout, logger).Run(ctx)
}

// openRepository selects PostgreSQL when DATABASE_URL is set and the
// in-memory store otherwise. The database is retried until reachable.
func openRepository(ctx context.Context, cfg *config.Config, logger observe.Logger) (product.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn(ctx, "DATABASE_URL not set, using in-memory product store")
		return product.NewMemoryRepository(), func() {}, nil
	}

	db, err := product.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	repo := product.NewPostgresRepository(db)

	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  8,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Jitter:       true,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Warn(ctx, "database not ready",
				observe.F("attempt", attempt),
				observe.F("retry_in", delay.String()),
				observe.F("error", err),
			)
		},
	})
	if err := retry.Do(ctx, repo.Ping); err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := repo.Migrate(ctx); err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("migrate product schema: %w", err)
	}
	logger.Info(ctx, "connected to database")

	return repo, func() { _ = repo.Close() }, nil
}
