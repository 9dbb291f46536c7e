package redis

import (
	"context"
	"fmt"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Options selects the Redis server
type Options struct {
	Addr     string
	Password string
	DB       int
}

// RedisInternal wraps the Redis client shared by sessions, the snapshot
// cache, the rate limiter and the refresh lock
type RedisInternal struct {
	Redis  *redis.Client
	locker *redislock.Client
}

// NewRedisInternal connects to opts.Addr, falling back to localhost:6379
// when the configured host does not answer
func NewRedisInternal(ctx context.Context, opts Options) (*RedisInternal, error) {
	addr := opts.Addr
	if addr == "" {
		addr = "redis:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		if addr == "localhost:6379" {
			return nil, fmt.Errorf("connecting to Redis: %w", err)
		}

		rdb = redis.NewClient(&redis.Options{
			Addr:     "localhost:6379",
			Password: opts.Password,
			DB:       opts.DB,
		})

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connecting to Redis: %w", err)
		}
	}

	return &RedisInternal{
		Redis:  rdb,
		locker: redislock.New(rdb),
	}, nil
}

// Ping checks the connection
func (r *RedisInternal) Ping(ctx context.Context) error {
	return r.Redis.Ping(ctx).Err()
}

// Close releases the connection pool
func (r *RedisInternal) Close() error {
	return r.Redis.Close()
}
