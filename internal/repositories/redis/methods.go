package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned by TryLock when another holder owns the key
var ErrLocked = errors.New("redis: lock held elsewhere")

// Expire is a function that sets a key expiration time
func (r *RedisInternal) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	return r.Redis.Expire(ctx, key, expiration)
}

// TTL is a function that returns the time to live of a key
func (r *RedisInternal) TTL(ctx context.Context, key string) *redis.DurationCmd {
	return r.Redis.TTL(ctx, key)
}

// Incr is a function that increments a key
func (r *RedisInternal) Incr(ctx context.Context, key string) *redis.IntCmd {
	return r.Redis.Incr(ctx, key)
}

// GetBytes returns the raw value of key; found is false for a missing key
func (r *RedisInternal) GetBytes(ctx context.Context, key string) (value []byte, found bool, err error) {
	value, err = r.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// SetBytes stores value under key with a TTL
func (r *RedisInternal) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.Redis.Set(ctx, key, value, ttl).Err()
}

// Delete removes key
func (r *RedisInternal) Delete(ctx context.Context, key string) error {
	return r.Redis.Del(ctx, key).Err()
}

// TryLock obtains a short lived lock on key. The returned release func
// must be called once the guarded work is done.
func (r *RedisInternal) TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error) {
	lock, err := r.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, err
	}
	return lock.Release, nil
}
