package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/cryptotax/internal/adapter/http"
	"github.com/iho/cryptotax/internal/adapter/http/handler"
	"github.com/iho/cryptotax/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/cryptotax/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cryptotax/internal/adapter/repository/redis"
	"github.com/iho/cryptotax/internal/infrastructure/config"
	"github.com/iho/cryptotax/internal/infrastructure/logger"
	"github.com/iho/cryptotax/internal/infrastructure/metrics"
	"github.com/iho/cryptotax/internal/infrastructure/postgres"
	"github.com/iho/cryptotax/internal/infrastructure/redis"
	"github.com/iho/cryptotax/internal/usecase"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterIdleTimeout     = time.Hour
)

func main() {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Install(appLogger)

	if err := cfg.RegisterAssets(); err != nil {
		log.Fatal().Err(err).Msg("failed to register asset table")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	reportRepo := postgresRepo.NewReportRepository(pool)
	retrier := postgresRepo.NewRetrier(appLogger)
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	runMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Initialize use cases
	taxUC := usecase.NewTaxUseCase(txManager, reportRepo, cache, retrier, idGen, runMetrics, appLogger, cfg.LedgerConfig())
	reportUC := usecase.NewReportUseCase(reportRepo, cache, appLogger)

	// Initialize handlers
	reportHandler := handler.NewReportHandler(taxUC, reportUC, cfg.LedgerConfig(), cfg.HTTPMaxBodyBytes)
	healthHandler := handler.NewHealthHandler(
		handler.Dependency{Name: "postgres", Ping: pool.Ping},
		handler.Dependency{Name: "redis", Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rateLimiter.RunCleanup(ctx, limiterCleanupInterval, limiterIdleTimeout)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ReportHandler:    reportHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Logger:           appLogger,
	})

	return serve(ctx, newHTTPServer(cfg, router), cfg.HTTPShutdownTimeout, appLogger)
}

func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

// serve runs server until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, appLogger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info().Msg("server stopped")
	return nil
}
