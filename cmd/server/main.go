package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mister-vinster/ml-movies/internal/cache"
	"github.com/mister-vinster/ml-movies/internal/catalog"
	"github.com/mister-vinster/ml-movies/internal/config"
	"github.com/mister-vinster/ml-movies/internal/domain"
	"github.com/mister-vinster/ml-movies/internal/logging"
	"github.com/mister-vinster/ml-movies/internal/redis"
	"github.com/mister-vinster/ml-movies/internal/server"
	"github.com/mister-vinster/ml-movies/internal/vote"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupStore picks the counter store: Redis when configured, otherwise the
// in-memory store for local development.
func setupStore(cfg *config.Config) (domain.CounterStore, func()) {
	if cfg.RedisURL == "" {
		slog.Warn("REDIS_URL not set, votes are held in memory and lost on restart")
		return vote.NewMemoryStore(), func() {}
	}

	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Failed to ping Redis", "error", err)
		os.Exit(1)
	}

	return redis.NewCounterStore(client), func() { _ = client.Close() }
}

func runGracefulShutdown(srv *server.Server, stopEviction func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		stopEviction()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "post_id", cfg.PostID)

	store, closeStore := setupStore(cfg)
	defer closeStore()

	keys := domain.Keys{PostID: cfg.PostID}

	engine := vote.NewEngine(store, keys, cfg.CacheTTL, clock)
	stopEviction := engine.StartCacheEviction(cfg.CacheEvictionInterval)

	snapshots := cache.New[*catalog.Snapshot]("configs", cfg.CacheTTL, clock)
	cat := catalog.NewService(store, keys, snapshots)

	srv := server.NewServer(cfg, engine, cat, store, clock)

	done := runGracefulShutdown(srv, stopEviction)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
