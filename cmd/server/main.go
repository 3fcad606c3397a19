package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	advicebot "github.com/soothe-labs/advicebot"
	"github.com/soothe-labs/advicebot/internal/assistant"
	"github.com/soothe-labs/advicebot/internal/config"
	"github.com/soothe-labs/advicebot/internal/handler"
	"github.com/soothe-labs/advicebot/internal/middleware"
	"github.com/soothe-labs/advicebot/internal/repository"
	"github.com/soothe-labs/advicebot/internal/service"
	"github.com/soothe-labs/advicebot/internal/threadstore"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Select the thread binding backend once, at startup
	store, cleanup := selectThreadStore(ctx, cfg)
	defer cleanup()

	// Initialize the orchestration core
	client := assistant.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	advisor := service.NewAdvisor(client, store, logger, service.AdvisorConfig{})

	// Setup HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.Logging())

	h := handler.New(handler.Deps{Advisor: advisor, Cfg: cfg})
	h.Register(e)

	go func() {
		slog.Info("starting server", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	slog.Info("server stopped gracefully")
}

// selectThreadStore probes the configured backends in order of
// preference: Redis, then Postgres, then process memory. The choice is
// made once and injected; call sites never branch on backend identity.
func selectThreadStore(ctx context.Context, cfg *config.Config) (threadstore.Store, func()) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Warn("invalid redis url, trying next backend", "error", err)
		} else {
			client := redis.NewClient(opts)
			if err := client.Ping(ctx).Err(); err != nil {
				slog.Warn("redis unreachable, trying next backend", "error", err)
				_ = client.Close()
			} else {
				slog.Info("using redis for thread bindings")
				return threadstore.NewRedis(client), func() { _ = client.Close() }
			}
		}
	}

	if cfg.DatabaseURL != "" {
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}

		migrationsFS, err := fs.Sub(advicebot.MigrationsFS, "migrations")
		if err != nil {
			slog.Error("failed to load embedded migrations", "error", err)
			os.Exit(1)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		slog.Info("using postgres for thread bindings")
		return threadstore.NewPostgres(pool), pool.Close
	}

	slog.Warn("no binding backend configured, bindings will not survive restarts")
	return threadstore.NewMemory(), func() {}
}
