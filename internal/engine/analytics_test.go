package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prepstack/prepstack-backend/internal/model"
)

func makeAttempt(userID int, score, percentage float64, timeSpent int, completedAt time.Time) model.Attempt {
	return model.Attempt{
		ID:               uuid.New(),
		TestID:           uuid.Nil,
		UserID:           userID,
		Score:            score,
		TotalMarks:       100,
		Percentage:       percentage,
		TimeSpentMinutes: timeSpent,
		CompletedAt:      completedAt,
	}
}

func TestComputeTestAnalytics_Averages(t *testing.T) {
	now := time.Now()
	attempts := []model.Attempt{
		makeAttempt(1, 80, 80, 30, now),
		makeAttempt(2, 60, 60, 40, now),
		makeAttempt(3, 70, 70, 50, now),
	}

	a := ComputeTestAnalytics(attempts, 10)

	if a.TotalAttempts != 3 {
		t.Errorf("TotalAttempts = %d", a.TotalAttempts)
	}
	if a.AverageScore != 70 {
		t.Errorf("AverageScore = %v, want 70", a.AverageScore)
	}
	if a.AveragePercentage != 70 {
		t.Errorf("AveragePercentage = %v, want 70", a.AveragePercentage)
	}
	if a.AverageTimeSpent != 40 {
		t.Errorf("AverageTimeSpent = %v, want 40", a.AverageTimeSpent)
	}
	if a.FastestTimeMinutes != 30 || a.SlowestTimeMinutes != 50 {
		t.Errorf("fastest/slowest = %d/%d, want 30/50", a.FastestTimeMinutes, a.SlowestTimeMinutes)
	}
}

func TestComputeTestAnalytics_AveragesRoundToTwoDecimals(t *testing.T) {
	now := time.Now()
	attempts := []model.Attempt{
		makeAttempt(1, 1, 1, 1, now),
		makeAttempt(2, 2, 2, 2, now),
		makeAttempt(3, 2, 2, 2, now),
	}

	a := ComputeTestAnalytics(attempts, 10)

	// 5/3 = 1.666... → 1.67
	if a.AverageScore != 1.67 {
		t.Errorf("AverageScore = %v, want 1.67", a.AverageScore)
	}
}

func TestComputeTestAnalytics_LeaderboardTieBreak(t *testing.T) {
	now := time.Now()
	slow := makeAttempt(1, 90, 90, 50, now)
	fast := makeAttempt(2, 90, 90, 20, now)
	low := makeAttempt(3, 40, 40, 10, now)

	a := ComputeTestAnalytics([]model.Attempt{slow, fast, low}, 10)

	if len(a.TopPerformers) != 3 {
		t.Fatalf("expected 3 top performers, got %d", len(a.TopPerformers))
	}
	if a.TopPerformers[0].AttemptID != fast.ID {
		t.Errorf("faster attempt must rank first on equal score")
	}
	if a.TopPerformers[0].Rank != 1 || a.TopPerformers[1].Rank != 2 || a.TopPerformers[2].Rank != 3 {
		t.Errorf("ranks not 1-based sequential: %+v", a.TopPerformers)
	}
	if a.TopPerformers[2].AttemptID != low.ID {
		t.Errorf("lowest score must rank last")
	}
}

func TestComputeTestAnalytics_LeaderboardLimit(t *testing.T) {
	now := time.Now()
	var attempts []model.Attempt
	for i := 0; i < 15; i++ {
		attempts = append(attempts, makeAttempt(i, float64(i), float64(i), 10, now))
	}

	a := ComputeTestAnalytics(attempts, 10)

	if len(a.TopPerformers) != 10 {
		t.Errorf("leaderboard must cap at 10, got %d", len(a.TopPerformers))
	}
	if a.TopPerformers[0].Score != 14 {
		t.Errorf("top entry score = %v, want 14", a.TopPerformers[0].Score)
	}
}

func TestComputeTestAnalytics_ScoreDistributionClampsFullMarks(t *testing.T) {
	now := time.Now()
	attempts := []model.Attempt{
		makeAttempt(1, 100, 100, 10, now), // exactly 100% → bucket index 9
		makeAttempt(2, 5, 5, 10, now),     // bucket 0
		makeAttempt(3, 95, 95, 10, now),   // bucket 9
	}

	a := ComputeTestAnalytics(attempts, 10)

	if len(a.ScoreDistribution) != 10 {
		t.Fatalf("expected 10 score buckets, got %d", len(a.ScoreDistribution))
	}
	if a.ScoreDistribution[9].Count != 2 {
		t.Errorf("last bucket count = %d, want 2", a.ScoreDistribution[9].Count)
	}
	if a.ScoreDistribution[0].Count != 1 {
		t.Errorf("first bucket count = %d, want 1", a.ScoreDistribution[0].Count)
	}
	if a.ScoreDistribution[9].Label != "90-100%" {
		t.Errorf("last bucket label = %q", a.ScoreDistribution[9].Label)
	}
}

func TestComputeTestAnalytics_TimeDistribution(t *testing.T) {
	now := time.Now()
	attempts := []model.Attempt{
		makeAttempt(1, 50, 50, 3, now),
		makeAttempt(2, 50, 50, 11, now),
		makeAttempt(3, 50, 50, 22, now), // max 22 → bucket size ceil(22/5)=5
	}

	a := ComputeTestAnalytics(attempts, 10)

	if len(a.TimeDistribution) != 5 {
		t.Fatalf("expected 5 time buckets, got %d", len(a.TimeDistribution))
	}
	// size 5: 3→bucket 0, 11→bucket 2, 22→bucket 4 (clamped)
	if a.TimeDistribution[0].Count != 1 {
		t.Errorf("bucket 0 count = %d, want 1", a.TimeDistribution[0].Count)
	}
	if a.TimeDistribution[2].Count != 1 {
		t.Errorf("bucket 2 count = %d, want 1", a.TimeDistribution[2].Count)
	}
	if a.TimeDistribution[4].Count != 1 {
		t.Errorf("bucket 4 count = %d, want 1", a.TimeDistribution[4].Count)
	}
}

func TestComputeTestAnalytics_PassAndExcellenceRates(t *testing.T) {
	now := time.Now()
	attempts := []model.Attempt{
		makeAttempt(1, 95, 95, 10, now), // pass + excellent
		makeAttempt(2, 60, 60, 10, now), // pass (boundary)
		makeAttempt(3, 59, 59, 10, now), // fail
		makeAttempt(4, 30, 30, 10, now), // fail
	}

	a := ComputeTestAnalytics(attempts, 10)

	if a.PassRate != 50 {
		t.Errorf("PassRate = %v, want 50", a.PassRate)
	}
	if a.ExcellenceRate != 25 {
		t.Errorf("ExcellenceRate = %v, want 25", a.ExcellenceRate)
	}
}

func TestComputeTestAnalytics_Empty(t *testing.T) {
	a := ComputeTestAnalytics(nil, 10)

	if a.TotalAttempts != 0 {
		t.Errorf("TotalAttempts = %d", a.TotalAttempts)
	}
	if len(a.TopPerformers) != 0 {
		t.Errorf("expected empty leaderboard")
	}
	if len(a.ScoreDistribution) != 10 || len(a.TimeDistribution) != 5 {
		t.Errorf("empty analytics must still carry full bucket layouts")
	}
}

func TestCalculatePercentile(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		scores []float64
		want   int
	}{
		{"no scores", 50, nil, 0},
		{"all below", 100, []float64{10, 20, 30}, 100},
		{"none below", 10, []float64{10, 20, 30}, 0},
		{"half below", 25, []float64{10, 20, 30, 40}, 50},
		{"ties excluded", 20, []float64{10, 20, 20, 30}, 25},
		{"rounding", 50, []float64{10, 20, 60}, 67},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculatePercentile(tc.score, tc.scores)
			if got != tc.want {
				t.Errorf("CalculatePercentile(%v) = %d, want %d", tc.score, got, tc.want)
			}
		})
	}
}

func TestCalculatePercentile_Bounds(t *testing.T) {
	scores := []float64{-5, 0, 13.5, 50, 99, 100, 250}
	for _, s := range append(scores, -100, 1000) {
		p := CalculatePercentile(s, scores)
		if p < 0 || p > 100 {
			t.Errorf("percentile for %v out of bounds: %d", s, p)
		}
	}
}

func TestComputeUserStats(t *testing.T) {
	now := time.Now()
	first := makeAttempt(1, 50, 50, 30, now.Add(-2*time.Hour))
	second := makeAttempt(1, 80, 80, 25, now.Add(-1*time.Hour))
	third := makeAttempt(1, 70, 70, 20, now)
	other := makeAttempt(2, 90, 90, 15, now)

	all := []model.Attempt{first, second, third, other}
	mine := []model.Attempt{first, second, third}

	stats := ComputeUserStats(mine, all)
	if stats == nil {
		t.Fatal("expected stats for user with attempts")
	}

	if stats.AttemptCount != 3 {
		t.Errorf("AttemptCount = %d", stats.AttemptCount)
	}
	if stats.BestScore != 80 || stats.BestAttemptID != second.ID {
		t.Errorf("best attempt wrong: %+v", stats)
	}
	if stats.Rank != 2 {
		t.Errorf("Rank = %d, want 2 (behind the 90)", stats.Rank)
	}
	// Scores below 80 among all 4: 50 and 70 → 2/4 = 50.
	if stats.Percentile != 50 {
		t.Errorf("Percentile = %d, want 50", stats.Percentile)
	}
	// Most recent 70 minus previous 80.
	if stats.ImprovementTrend != -10 {
		t.Errorf("ImprovementTrend = %v, want -10", stats.ImprovementTrend)
	}
}

func TestComputeUserStats_SingleAttemptHasZeroTrend(t *testing.T) {
	a := makeAttempt(1, 60, 60, 10, time.Now())

	stats := ComputeUserStats([]model.Attempt{a}, []model.Attempt{a})
	if stats == nil {
		t.Fatal("expected stats")
	}
	if stats.ImprovementTrend != 0 {
		t.Errorf("ImprovementTrend = %v, want 0", stats.ImprovementTrend)
	}
	if stats.Rank != 1 {
		t.Errorf("Rank = %d, want 1", stats.Rank)
	}
}

func TestComputeUserStats_NoAttempts(t *testing.T) {
	if stats := ComputeUserStats(nil, nil); stats != nil {
		t.Errorf("expected nil stats, got %+v", stats)
	}
}
