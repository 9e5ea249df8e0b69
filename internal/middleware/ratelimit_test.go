package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisRateLimiter_AllowsUpToLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	limiter := NewRedisRateLimiter(rdb, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow error: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("Allow error: %v", err)
	}
	if allowed {
		t.Error("request over the limit should be denied")
	}
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	limiter := NewRedisRateLimiter(rdb, 1, time.Minute)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "a"); !allowed {
		t.Fatal("first request for key a should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "a"); allowed {
		t.Fatal("second request for key a should be denied")
	}
	if allowed, _ := limiter.Allow(ctx, "b"); !allowed {
		t.Error("key b must not share key a's budget")
	}
}

func TestMemoryRateLimiter(t *testing.T) {
	limiter := NewMemoryRateLimiter(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "client")
		if err != nil {
			t.Fatalf("Allow error: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if allowed, _ := limiter.Allow(ctx, "client"); allowed {
		t.Error("request over the limit should be denied")
	}
	if allowed, _ := limiter.Allow(ctx, "other"); !allowed {
		t.Error("a fresh client should be allowed")
	}
}
