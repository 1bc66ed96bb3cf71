// Copyright (c) 2026 Herdcount. All rights reserved.

// Command api is the entry point for the Herdcount HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and .env).
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when REDIS_URL is set.
//  5. Run database migrations (idempotent).
//  6. Wire services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/herdcount/herdcount/internal/api"
	"github.com/herdcount/herdcount/internal/auth"
	"github.com/herdcount/herdcount/internal/count"
	"github.com/herdcount/herdcount/internal/device"
	"github.com/herdcount/herdcount/internal/platform/clock"
	"github.com/herdcount/herdcount/internal/platform/config"
	"github.com/herdcount/herdcount/internal/platform/constants"
	"github.com/herdcount/herdcount/internal/platform/metrics"
	"github.com/herdcount/herdcount/internal/platform/middleware"
	"github.com/herdcount/herdcount/internal/platform/migration"
	pgstore "github.com/herdcount/herdcount/internal/platform/postgres"
	redisstore "github.com/herdcount/herdcount/internal/platform/redis"
	"github.com/herdcount/herdcount/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("timezone", cfg.Location().String()),
	)

	// Root context for startup. A deadline surfaces misconfiguration quickly.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
	} else {
		log.Warn("redis_disabled", slog.String("reason", "REDIS_URL is empty, login throttle off"))
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	clk := clock.Real()
	m := metrics.New()

	tokens, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer, cfg.TokenTTL, clk)
	must(log, err, "initialize token service")

	throttle := auth.ThrottleConfig{}
	if rdb != nil {
		throttle = auth.ThrottleConfig{
			Store:       auth.NewAttemptStore(rdb),
			MaxAttempts: cfg.LoginMaxAttempts,
			Window:      cfg.LoginAttemptWindow,
		}
	}

	authService := auth.NewService(auth.NewUserRepository(pool), tokens, throttle, clk, m)
	deviceService := device.NewService(device.NewRepository(pool), clk, cfg.DeviceStaleAfter, m)
	countService := count.NewService(count.NewRepository(pool), clk, cfg.Location(), m)

	health := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		Clock:         clk,
	}
	if rdb != nil {
		health.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	limiter := middleware.NewRateLimiter(constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst, cfg.Proxies())
	go limiter.Run(rootCtx)

	server := api.NewServer(cfg, log,
		api.Dependencies{Verifier: authService, RateLimiter: limiter, Metrics: m},
		api.Handlers{
			Health: api.NewHealthHandlers(health),
			Domains: []api.RouteRegistrar{
				auth.NewHandler(authService),
				device.NewHandler(deviceService),
				count.NewHandler(countService),
			},
		},
	)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
