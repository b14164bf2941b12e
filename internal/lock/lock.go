// Package lock provides named locks for serialising settle-ups.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"

	"github.com/mmynk/duet/internal/ledger"
)

var (
	// ErrEmptyKey is returned when an empty lock key is provided.
	ErrEmptyKey = errors.New("lock key cannot be empty")
	// ErrNilFn is returned when a nil function is passed to WithLock.
	ErrNilFn = errors.New("lock function is nil")
)

var (
	_ ledger.Locker = Noop{}
	_ ledger.Locker = (*Redis)(nil)
)

// Noop runs fn without locking. Used when Redis is not configured.
type Noop struct{}

// WithLock calls fn directly.
func (Noop) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if err := checkArgs(key, fn); err != nil {
		return err
	}
	return fn(ctx)
}

// Options configures lock acquisition.
type Options struct {
	// Expiry is how long the lock is held before auto-expiring.
	Expiry time.Duration
	// Tries is the number of acquisition attempts.
	Tries int
	// RetryDelay is the delay between attempts.
	RetryDelay time.Duration
}

// DefaultOptions suits settle-ups: a handful of queries under the lock.
func DefaultOptions() Options {
	return Options{
		Expiry:     10 * time.Second,
		Tries:      20,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Redis is a distributed lock backed by redsync.
//
// Thread-safe: Yes - multiple goroutines can share one Redis instance.
type Redis struct {
	rs     *redsync.Redsync
	opts   Options
	logger *slog.Logger
}

// NewRedis creates a Redis locker over client.
func NewRedis(client goredislib.UniversalClient, opts Options, logger *slog.Logger) *Redis {
	return &Redis{
		rs:     redsync.New(goredis.NewPool(client)),
		opts:   opts,
		logger: logger,
	}
}

// WithLock acquires key, runs fn, and releases the lock even if fn fails.
func (r *Redis) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if err := checkArgs(key, fn); err != nil {
		return err
	}

	mutex := r.rs.NewMutex(key,
		redsync.WithExpiry(r.opts.Expiry),
		redsync.WithTries(r.opts.Tries),
		redsync.WithRetryDelay(r.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	r.logger.Debug("Lock acquired", "key", key)

	defer func() {
		// Release even if the caller has gone away.
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			r.logger.Error("Failed to release lock", "key", key, "unlock_ok", ok, "error", err)
		}
	}()

	return fn(ctx)
}

func checkArgs(key string, fn func(context.Context) error) error {
	if fn == nil {
		return ErrNilFn
	}
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
