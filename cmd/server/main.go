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

	goredislib "github.com/redis/go-redis/v9"

	"github.com/mmynk/duet/internal/auth"
	"github.com/mmynk/duet/internal/config"
	"github.com/mmynk/duet/internal/ledger"
	"github.com/mmynk/duet/internal/lock"
	"github.com/mmynk/duet/internal/metrics"
	"github.com/mmynk/duet/internal/server"
	"github.com/mmynk/duet/internal/storage/sqlite"
	"github.com/mmynk/duet/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if cfg.GeneratedSecret {
		logger.Warn("JWT_SECRET not set, using a random secret; sessions end on restart")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	locker, closeLocker, err := newLocker(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	handler := server.NewHandler(server.Deps{
		Store:           store,
		Ledger:          ledger.New(store, locker, logger),
		JWTManager:      auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Metrics:         metrics.New(),
		Logger:          logger,
		SecretGenerated: cfg.GeneratedSecret,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newLocker picks the Redis lock when REDIS_ADDR is set.
func newLocker(cfg *config.Config, logger *slog.Logger) (ledger.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		return lock.Noop{}, func() {}, nil
	}

	client := goredislib.NewClient(&goredislib.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("Settlement lock enabled", "redis", cfg.RedisAddr)
	return lock.NewRedis(client, lock.DefaultOptions(), logger), func() { client.Close() }, nil
}
