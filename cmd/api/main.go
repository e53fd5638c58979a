package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside/platform/internal/app"
	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/guard"
	"github.com/courtside/platform/internal/infra"
	"github.com/courtside/platform/internal/projection"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Migrations
	if cfg.AutoMigrate {
		dir := cfg.MigrationsDir
		if dir == "" {
			dir = infra.FindMigrationDir()
		}
		if err := infra.RunMigrations(cfg.DSN(), dir, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	// Redis backs the slot projection and token revocation when configured.
	var (
		slotStore   projection.Store     = projection.NewInMemoryStore()
		revocations auth.RevocationStore = auth.NewMemoryRevocationStore()
	)
	redisClient, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		slotStore = projection.NewRedisStore(redisClient)
		revocations = auth.NewRedisRevocationStore(redisClient)
		logger.Info("connected to redis")
	} else {
		logger.Warn("REDIS_URL not set, using in-process slot cache and revocation list")
	}

	// Event publisher
	publisher, err := infra.NewEventPublisher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer publisher.Close()

	repos := app.PostgresRepositories()
	poller := infra.NewOutboxPoller(pool, repos.Outbox, publisher, cfg, logger)

	bookingLimit := guard.NewRateLimiter(cfg.BookingRateLimit, cfg.BookingRateWindow)
	loginLimit := guard.NewRateLimiter(cfg.LoginRateLimit, time.Minute)

	router := app.NewRouter(app.RouterDeps{
		Pool:         pool,
		Repos:        repos,
		Health:       func(ctx context.Context) error { return infra.HealthCheck(ctx, pool) },
		Config:       cfg,
		JWTMgr:       auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry),
		Revocations:  revocations,
		SlotStore:    slotStore,
		BookingLimit: bookingLimit,
		LoginLimit:   loginLimit,
		Logger:       logger,
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api server starting", "addr", addr, "event_broker", cfg.EventBroker)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return poller.Run(gctx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				bookingLimit.Sweep()
				loginLimit.Sweep()
			}
		}
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
