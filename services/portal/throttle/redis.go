package throttle

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares counters between portal instances.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, max: max, window: window}
}

func (l *RedisLimiter) Check(ctx context.Context, email string) (bool, time.Duration, error) {
	k := key(email)

	count, err := l.client.Get(ctx, k).Int()
	if errors.Is(err, redis.Nil) {
		return true, 0, nil // first attempt
	}
	if err != nil {
		return false, 0, err
	}

	if count >= l.max {
		ttl, err := l.client.TTL(ctx, k).Result()
		if err != nil {
			return false, 0, err
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

func (l *RedisLimiter) Fail(ctx context.Context, email string) error {
	k := key(email)

	pipe := l.client.Pipeline()
	pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)

	_, err := pipe.Exec(ctx)
	return err
}

func (l *RedisLimiter) Reset(ctx context.Context, email string) error {
	return l.client.Del(ctx, key(email)).Err()
}
