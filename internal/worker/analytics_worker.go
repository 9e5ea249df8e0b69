package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepstack/prepstack-backend/internal/config"
	"github.com/prepstack/prepstack-backend/internal/service"
)

const (
	RefreshBatchSize    = 50
	RefreshBatchTimeout = 2 * time.Second
	RefreshPollTimeout  = 1 * time.Second
)

// AnalyticsWorker drains the refresh queue, recomputes analytics
// snapshots, and broadcasts fresh leaderboards. Test IDs are deduped
// per batch so a burst of submissions to the same test triggers a
// single recompute.
type AnalyticsWorker struct {
	analytics *service.AnalyticsService
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewAnalyticsWorker creates a new AnalyticsWorker.
func NewAnalyticsWorker(analytics *service.AnalyticsService, rdb *redis.Client, log zerolog.Logger) *AnalyticsWorker {
	return &AnalyticsWorker{
		analytics: analytics,
		rdb:       rdb,
		log:       log.With().Str("component", "analytics_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AnalyticsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AnalyticsWorker started")

	batch := make([]string, 0, RefreshBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= RefreshBatchSize || time.Since(lastFlush) >= RefreshBatchTimeout) {

			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flush(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, RefreshPollTimeout, config.WorkerKey.AnalyticsRefreshQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			batch = append(batch, item[1])
		}
	}
}

func (w *AnalyticsWorker) flush(ctx context.Context, batch []string) {
	if len(batch) == 0 {
		return
	}

	for _, testID := range dedupe(batch) {
		if err := w.refresh(ctx, testID); err != nil {
			w.log.Error().Err(err).Str("test_id", testID.String()).Msg("analytics refresh failed, requeueing")
			w.rdb.RPush(ctx, config.WorkerKey.AnalyticsRefreshQueue, testID.String())
		}
	}
}

func (w *AnalyticsWorker) refresh(ctx context.Context, testID uuid.UUID) error {
	analytics, err := w.analytics.Recompute(ctx, testID)
	if err != nil {
		return err
	}

	if err := w.analytics.PublishLeaderboard(ctx, testID, analytics); err != nil {
		// Subscribers will catch up on the next refresh; the snapshot
		// itself is already stored.
		w.log.Warn().Err(err).Str("test_id", testID.String()).Msg("leaderboard publish failed")
	}

	w.log.Debug().
		Str("test_id", testID.String()).
		Int("total_attempts", analytics.TotalAttempts).
		Msg("analytics snapshot refreshed")
	return nil
}

func dedupe(ids []string) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
