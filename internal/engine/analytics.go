package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prepstack/prepstack-backend/internal/model"
)

const (
	// DefaultLeaderboardSize caps the top-performers list.
	DefaultLeaderboardSize = 10

	scoreBucketCount = 10
	timeBucketCount  = 5

	passThreshold       = 60.0
	excellenceThreshold = 90.0
)

// RankedAttempt is a leaderboard entry.
type RankedAttempt struct {
	Rank             int       `json:"rank"`
	AttemptID        uuid.UUID `json:"attempt_id"`
	UserID           int       `json:"user_id"`
	Score            float64   `json:"score"`
	Percentage       float64   `json:"percentage"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
	CompletedAt      time.Time `json:"completed_at"`
}

// DistributionBucket is one fixed-width histogram cell.
type DistributionBucket struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TestAnalytics aggregates every completed attempt for one test.
type TestAnalytics struct {
	TotalAttempts      int                  `json:"total_attempts"`
	AverageScore       float64              `json:"average_score"`
	AveragePercentage  float64              `json:"average_percentage"`
	AverageTimeSpent   float64              `json:"average_time_spent"`
	TopPerformers      []RankedAttempt      `json:"top_performers"`
	ScoreDistribution  []DistributionBucket `json:"score_distribution"`
	TimeDistribution   []DistributionBucket `json:"time_distribution"`
	PassRate           float64              `json:"pass_rate"`
	ExcellenceRate     float64              `json:"excellence_rate"`
	FastestTimeMinutes int                  `json:"fastest_time_minutes"`
	SlowestTimeMinutes int                  `json:"slowest_time_minutes"`
}

// UserTestStats summarizes one user's standing on a test relative to the
// full attempt population.
type UserTestStats struct {
	AttemptCount   int       `json:"attempt_count"`
	BestAttemptID  uuid.UUID `json:"best_attempt_id"`
	BestScore      float64   `json:"best_score"`
	BestPercentage float64   `json:"best_percentage"`
	Rank           int       `json:"rank"`
	Percentile     int       `json:"percentile"`
	// ImprovementTrend is most-recent score minus second-most-recent
	// score; 0 with fewer than two attempts.
	ImprovementTrend float64 `json:"improvement_trend"`
}

// ComputeTestAnalytics recomputes the full aggregate view from scratch
// over every completed attempt for a test. leaderboardSize <= 0 falls
// back to DefaultLeaderboardSize.
func ComputeTestAnalytics(attempts []model.Attempt, leaderboardSize int) *TestAnalytics {
	a := &TestAnalytics{
		TotalAttempts:     len(attempts),
		TopPerformers:     []RankedAttempt{},
		ScoreDistribution: emptyScoreBuckets(),
		TimeDistribution:  emptyTimeBuckets(1),
	}
	if len(attempts) == 0 {
		return a
	}
	if leaderboardSize <= 0 {
		leaderboardSize = DefaultLeaderboardSize
	}

	var scoreSum, pctSum float64
	var timeSum, passed, excellent int
	fastest, slowest := attempts[0].TimeSpentMinutes, attempts[0].TimeSpentMinutes

	for _, at := range attempts {
		scoreSum += at.Score
		pctSum += at.Percentage
		timeSum += at.TimeSpentMinutes
		if at.Percentage >= passThreshold {
			passed++
		}
		if at.Percentage >= excellenceThreshold {
			excellent++
		}
		if at.TimeSpentMinutes < fastest {
			fastest = at.TimeSpentMinutes
		}
		if at.TimeSpentMinutes > slowest {
			slowest = at.TimeSpentMinutes
		}
	}

	n := float64(len(attempts))
	a.AverageScore = round2(scoreSum / n)
	a.AveragePercentage = round2(pctSum / n)
	a.AverageTimeSpent = round2(float64(timeSum) / n)
	a.PassRate = round2(float64(passed) / n * 100)
	a.ExcellenceRate = round2(float64(excellent) / n * 100)
	a.FastestTimeMinutes = fastest
	a.SlowestTimeMinutes = slowest

	ranked := rankAttempts(attempts)
	if len(ranked) > leaderboardSize {
		ranked = ranked[:leaderboardSize]
	}
	a.TopPerformers = ranked

	a.ScoreDistribution = scoreDistribution(attempts)
	a.TimeDistribution = timeDistribution(attempts, slowest)

	return a
}

// rankAttempts orders every attempt by score descending with ties broken
// by ascending time spent (faster wins), annotating 1-based ranks.
func rankAttempts(attempts []model.Attempt) []RankedAttempt {
	sorted := make([]model.Attempt, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].TimeSpentMinutes < sorted[j].TimeSpentMinutes
	})

	ranked := make([]RankedAttempt, len(sorted))
	for i, at := range sorted {
		ranked[i] = RankedAttempt{
			Rank:             i + 1,
			AttemptID:        at.ID,
			UserID:           at.UserID,
			Score:            at.Score,
			Percentage:       at.Percentage,
			TimeSpentMinutes: at.TimeSpentMinutes,
			CompletedAt:      at.CompletedAt,
		}
	}
	return ranked
}

// scoreDistribution buckets attempt percentages into ten 10%-wide cells.
// A percentage of exactly 100 lands in the last bucket.
func scoreDistribution(attempts []model.Attempt) []DistributionBucket {
	buckets := emptyScoreBuckets()
	for _, at := range attempts {
		idx := int(at.Percentage / 10)
		if idx > scoreBucketCount-1 {
			idx = scoreBucketCount - 1
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Count++
	}
	total := float64(len(attempts))
	for i := range buckets {
		if total > 0 {
			buckets[i].Percentage = round2(float64(buckets[i].Count) / total * 100)
		}
	}
	return buckets
}

// timeDistribution buckets time spent into five cells sized by
// ceil(maxTime/5), clamping overflow into the last cell.
func timeDistribution(attempts []model.Attempt, maxTime int) []DistributionBucket {
	size := (maxTime + timeBucketCount - 1) / timeBucketCount
	if size < 1 {
		size = 1
	}

	buckets := emptyTimeBuckets(size)
	for _, at := range attempts {
		idx := at.TimeSpentMinutes / size
		if idx > timeBucketCount-1 {
			idx = timeBucketCount - 1
		}
		buckets[idx].Count++
	}
	total := float64(len(attempts))
	for i := range buckets {
		if total > 0 {
			buckets[i].Percentage = round2(float64(buckets[i].Count) / total * 100)
		}
	}
	return buckets
}

func emptyScoreBuckets() []DistributionBucket {
	buckets := make([]DistributionBucket, scoreBucketCount)
	for i := range buckets {
		buckets[i].Label = fmt.Sprintf("%d-%d%%", i*10, (i+1)*10)
	}
	return buckets
}

func emptyTimeBuckets(size int) []DistributionBucket {
	buckets := make([]DistributionBucket, timeBucketCount)
	for i := range buckets {
		buckets[i].Label = fmt.Sprintf("%d-%d min", i*size, (i+1)*size)
	}
	return buckets
}

// CalculatePercentile returns the share of allScores strictly below the
// given score, rounded to a whole number. This is deliberately a
// "percent of attempts scoring below me" statistic, not a rank-based
// percentile: ties with the given score do not count toward it.
func CalculatePercentile(score float64, allScores []float64) int {
	if len(allScores) == 0 {
		return 0
	}
	below := 0
	for _, s := range allScores {
		if s < score {
			below++
		}
	}
	return int(math.Round(float64(below) / float64(len(allScores)) * 100))
}

// ComputeUserStats derives one user's standing from their own attempts
// and the full attempt population for the test. Returns nil when the
// user has no attempts.
func ComputeUserStats(userAttempts, allAttempts []model.Attempt) *UserTestStats {
	if len(userAttempts) == 0 {
		return nil
	}

	best := userAttempts[0]
	for _, at := range userAttempts[1:] {
		if at.Score > best.Score ||
			(at.Score == best.Score && at.TimeSpentMinutes < best.TimeSpentMinutes) {
			best = at
		}
	}

	stats := &UserTestStats{
		AttemptCount:   len(userAttempts),
		BestAttemptID:  best.ID,
		BestScore:      best.Score,
		BestPercentage: best.Percentage,
	}

	// Rank under the same ordering the leaderboard uses.
	for _, r := range rankAttempts(allAttempts) {
		if r.AttemptID == best.ID {
			stats.Rank = r.Rank
			break
		}
	}

	scores := make([]float64, len(allAttempts))
	for i, at := range allAttempts {
		scores[i] = at.Score
	}
	stats.Percentile = CalculatePercentile(best.Score, scores)

	if len(userAttempts) >= 2 {
		recent := make([]model.Attempt, len(userAttempts))
		copy(recent, userAttempts)
		sort.SliceStable(recent, func(i, j int) bool {
			return recent[i].CompletedAt.After(recent[j].CompletedAt)
		})
		stats.ImprovementTrend = recent[0].Score - recent[1].Score
	}

	return stats
}
