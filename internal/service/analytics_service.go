package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-backend/internal/config"
	"github.com/prepstack/prepstack-backend/internal/engine"
	"github.com/prepstack/prepstack-backend/internal/model"
	"github.com/prepstack/prepstack-backend/internal/repository"
)

// AnalyticsService computes test-level aggregates and per-user standing.
// Aggregates are always derived from a full scan of attempts; the Redis
// snapshot is a cache of that scan, never an incrementally-maintained
// counter.
type AnalyticsService struct {
	cfg      *config.Config
	attempts *repository.AttemptRepository
	rdb      *redis.Client
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(cfg *config.Config, attempts *repository.AttemptRepository, rdb *redis.Client) *AnalyticsService {
	return &AnalyticsService{cfg: cfg, attempts: attempts, rdb: rdb}
}

// GetTestAnalytics returns aggregate analytics for a test, serving the
// Redis snapshot when one exists and recomputing otherwise.
func (s *AnalyticsService) GetTestAnalytics(ctx context.Context, testID uuid.UUID) (*engine.TestAnalytics, error) {
	key := config.CacheKey.AnalyticsSnapshotKey(testID.String())

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var analytics engine.TestAnalytics
		if jsonErr := json.Unmarshal([]byte(cached), &analytics); jsonErr == nil {
			return &analytics, nil
		}
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("test_id", testID.String()).Msg("analytics snapshot read failed")
	}

	return s.Recompute(ctx, testID)
}

// GetLeaderboard returns the ranked top attempts for a test.
func (s *AnalyticsService) GetLeaderboard(ctx context.Context, testID uuid.UUID) ([]engine.RankedAttempt, error) {
	analytics, err := s.GetTestAnalytics(ctx, testID)
	if err != nil {
		return nil, err
	}
	return analytics.TopPerformers, nil
}

// GetUserStats computes the caller's standing on a test: best attempt,
// rank, percentile, and score trend. Always computed live so a fresh
// submission is reflected immediately.
func (s *AnalyticsService) GetUserStats(ctx context.Context, testID uuid.UUID, userID int) (*engine.UserTestStats, error) {
	all, err := s.attempts.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	var mine []model.Attempt
	for _, a := range all {
		if a.UserID == userID {
			mine = append(mine, a)
		}
	}

	return engine.ComputeUserStats(mine, all), nil
}

// Recompute performs the full scan, stores the snapshot with the
// configured TTL, and returns the fresh analytics.
func (s *AnalyticsService) Recompute(ctx context.Context, testID uuid.UUID) (*engine.TestAnalytics, error) {
	attempts, err := s.attempts.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	analytics := engine.ComputeTestAnalytics(attempts, s.cfg.LeaderboardSize)

	payload, err := json.Marshal(analytics)
	if err != nil {
		return nil, fmt.Errorf("marshal analytics: %w", err)
	}

	key := config.CacheKey.AnalyticsSnapshotKey(testID.String())
	if err := s.rdb.Set(ctx, key, payload, s.cfg.AnalyticsSnapshotTTL).Err(); err != nil {
		log.Warn().Err(err).Str("test_id", testID.String()).Msg("analytics snapshot write failed")
	}

	return analytics, nil
}

// PublishLeaderboard broadcasts the current leaderboard to live
// WebSocket subscribers via Redis pub/sub.
func (s *AnalyticsService) PublishLeaderboard(ctx context.Context, testID uuid.UUID, analytics *engine.TestAnalytics) error {
	payload, err := json.Marshal(analytics.TopPerformers)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}

	channel := config.CacheKey.LeaderboardChannel(testID.String())
	return s.rdb.Publish(ctx, channel, payload).Err()
}
