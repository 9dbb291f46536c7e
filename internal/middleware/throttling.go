package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"viksitkanpur/internal/models/dto"
	redisInternal "viksitkanpur/internal/repositories/redis"
	"viksitkanpur/pkg/logger"
)

// Counter counts hits of a key inside a fixed window.
type Counter interface {
	// Hit increments key and returns the new count and the time left in the
	// window.
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RedisCounter counts with INCR and EXPIRE.
type RedisCounter struct {
	redis *redisInternal.RedisInternal
}

// NewRedisCounter returns a Counter shared by every replica.
func NewRedisCounter(r *redisInternal.RedisInternal) *RedisCounter {
	return &RedisCounter{redis: r}
}

func (rc *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := rc.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := rc.redis.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}
	ttl, err := rc.redis.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// key lost its expiry; restart the window
		_ = rc.redis.Expire(ctx, key, window).Err()
		ttl = window
	}
	return count, ttl, nil
}

// MemoryCounter is a per-process Counter.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	count int64
	reset time.Time
}

// NewMemoryCounter returns an empty MemoryCounter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: map[string]memoryWindow{}, now: time.Now}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.reset) {
		w = memoryWindow{reset: now.Add(window)}
	}
	w.count++
	m.windows[key] = w
	return w.count, w.reset.Sub(now), nil
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	counter     Counter
	maxRequests int
	window      time.Duration
	log         logger.Logger
}

// NewRateLimiter returns a limiter allowing maxRequests per window and client IP.
func NewRateLimiter(counter Counter, maxRequests int, window time.Duration, log logger.Logger) *RateLimiter {
	if log == nil {
		log = logger.Discard{}
	}
	return &RateLimiter{
		counter:     counter,
		maxRequests: maxRequests,
		window:      window,
		log:         log,
	}
}

// Middleware returns the gin handler. Counter failures let the request
// through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()

		count, ttl, err := rl.counter.Hit(c.Request.Context(), key, rl.window)
		if err != nil {
			rl.log.Warn("Rate limiter unavailable", map[string]interface{}{"error": err.Error()})
			c.Next()
			return
		}

		remaining := rl.maxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > int64(rl.maxRequests) {
			retry := int(ttl.Round(time.Second) / time.Second)
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewRateLimitErrorResponse(c,
				fmt.Sprintf("%ds", retry), rl.maxRequests, 0, time.Now().Add(ttl).UTC()))
			return
		}

		c.Next()
	}
}

// Concurrency caps in-flight requests at max.
func Concurrency(max int64) gin.HandlerFunc {
	sema := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sema.TryAcquire(1) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(c, http.StatusTooManyRequests,
				"too_many_requests", "Server is busy, retry shortly", nil))
			return
		}
		defer sema.Release(1)
		c.Next()
	}
}
