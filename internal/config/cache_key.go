package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TestPayloadKey returns the cache key for a test's canonical payload.
func (r *CacheKeyStruct) TestPayloadKey(testID string) string {
	return fmt.Sprintf("test:%s:payload", testID)
}

// AnalyticsSnapshotKey returns the cache key for a test's analytics snapshot.
func (r *CacheKeyStruct) AnalyticsSnapshotKey(testID string) string {
	return fmt.Sprintf("test:%s:analytics", testID)
}

// LeaderboardChannel returns the Redis PubSub channel for leaderboard updates.
func (r *CacheKeyStruct) LeaderboardChannel(testID string) string {
	return fmt.Sprintf("test:%s:leaderboard", testID)
}

// RateLimitKey returns the fixed-window rate limit counter key for a client.
func (r *CacheKeyStruct) RateLimitKey(clientID string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%d", clientID, window)
}

var CacheKey = NewCacheKeyStruct()
