package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prepstack/prepstack-backend/internal/config"
	"github.com/prepstack/prepstack-backend/internal/response"
	"github.com/redis/go-redis/v9"
)

// RateLimiter decides whether a client identified by key may proceed.
// It is injected rather than held as package state so multi-instance
// deployments can share a Redis-backed limiter while single-instance
// setups keep the in-process one.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit returns a Gin middleware that rate-limits requests by client IP.
// A nil limiter disables limiting. Limiter errors fail open: an outage in
// the limiter store must not take request handling down with it.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}
		if !allowed {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}

		c.Next()
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Redis fixed-window limiter (shared across instances)
// ────────────────────────────────────────────────────────────────────────────

// RedisRateLimiter counts requests per client in fixed windows using a
// shared Redis store.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRedisRateLimiter creates a limiter allowing `limit` requests per window.
func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow increments the client's counter for the current window and
// reports whether it is still within the limit.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := time.Now().Unix() / int64(l.window.Seconds())
	redisKey := config.CacheKey.RateLimitKey(key, window)

	pipe := l.rdb.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	// Expire two windows out so straggling counters clean themselves up.
	pipe.Expire(ctx, redisKey, 2*l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= int64(l.limit), nil
}

// ────────────────────────────────────────────────────────────────────────────
// In-process token bucket limiter (single instance)
// ────────────────────────────────────────────────────────────────────────────

// MemoryRateLimiter implements a per-client token bucket held in process
// memory. Suitable only for single-instance deployments.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // Tokens per interval
	interval time.Duration // Refill interval
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewMemoryRateLimiter creates a MemoryRateLimiter (e.g., 60 requests per minute).
func NewMemoryRateLimiter(rate int, interval time.Duration) *MemoryRateLimiter {
	rl := &MemoryRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
	}

	// Cleanup stale visitors every minute.
	go func() {
		for range time.Tick(time.Minute) {
			rl.cleanup()
		}
	}()

	return rl
}

// Allow consumes one token for the client, refilling based on elapsed time.
func (rl *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{tokens: rl.rate, lastSeen: time.Now()}
		rl.visitors[key] = v
	}

	// Refill tokens based on elapsed time.
	elapsed := time.Since(v.lastSeen)
	refill := int(elapsed/rl.interval) * rl.rate
	if refill > 0 {
		v.tokens += refill
		if v.tokens > rl.rate {
			v.tokens = rl.rate
		}
		v.lastSeen = time.Now()
	}

	if v.tokens <= 0 {
		return false, nil
	}

	v.tokens--
	return true, nil
}

func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if time.Since(v.lastSeen) > 3*time.Minute {
			delete(rl.visitors, key)
		}
	}
}
