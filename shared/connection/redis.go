package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	cfg "carenest/shared"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

type RedisManager struct {
	client *redis.Client
	config *cfg.RedisConfig
	logger *slog.Logger
	mu     sync.RWMutex
}

func NewRedisManager(cfg *cfg.RedisConfig, logger *slog.Logger) *RedisManager {
	return &RedisManager{config: cfg, logger: logger.With(slog.String("component", "redis"))}
}

// Connect dials Redis and pings it, retrying with exponential backoff so the
// portal survives Redis starting a few seconds after it.
func (r *RedisManager) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		if err := r.client.Ping(ctx).Err(); err == nil {
			r.logger.Debug("Redis connection already established")
			return nil
		}
		_ = r.client.Close()
		r.client = nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", r.config.Host, r.config.Port),
		Password:     r.config.Password,
		DB:           r.config.DB,
		PoolSize:     r.config.PoolSize,
		MinIdleConns: r.config.MinIdleConns,
		DialTimeout:  r.config.DialTimeout,
		ReadTimeout:  r.config.ReadTimeout,
		WriteTimeout: r.config.WriteTimeout,
	})

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("Redis ping failed, retrying", "error", err, "wait", wait)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	r.client = client
	r.logger.Info("Successfully connected to Redis", "addr", client.Options().Addr)
	return nil
}

func (r *RedisManager) Disconnect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to disconnect Redis: %w", err)
	}
	r.client = nil
	r.logger.Info("Redis connection closed")
	return nil
}

func (r *RedisManager) HealthCheck(ctx context.Context) error {
	r.mu.RLock()
	client := r.client
	r.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return client.Ping(ctx).Err()
}

func (r *RedisManager) GetClient() *redis.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}
