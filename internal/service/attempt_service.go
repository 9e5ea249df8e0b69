package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-backend/internal/config"
	"github.com/prepstack/prepstack-backend/internal/engine"
	"github.com/prepstack/prepstack-backend/internal/model"
	"github.com/prepstack/prepstack-backend/internal/repository"
)

// Domain errors surfaced by attempt operations.
var (
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrNotOwner        = errors.New("attempt belongs to another user")
)

// InvalidTimingError carries the human-readable reason a submission's
// timestamps were rejected.
type InvalidTimingError struct {
	Reason string
}

func (e *InvalidTimingError) Error() string {
	return "invalid timing: " + e.Reason
}

// SubmissionResult is the immediate feedback returned on submit.
type SubmissionResult struct {
	AttemptID         uuid.UUID            `json:"attempt_id"`
	Score             float64              `json:"score"`
	TotalMarks        float64              `json:"total_marks"`
	Percentage        float64              `json:"percentage"`
	TimeSpentMinutes  int                  `json:"time_spent_minutes"`
	SectionWiseScores []model.SectionScore `json:"section_wise_scores"`
	Insights          engine.Insights      `json:"insights"`
}

// AttemptService handles attempt submission and retrieval.
type AttemptService struct {
	cfg      *config.Config
	attempts *repository.AttemptRepository
	tests    *TestService
	rdb      *redis.Client
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(cfg *config.Config, attempts *repository.AttemptRepository, tests *TestService, rdb *redis.Client) *AttemptService {
	return &AttemptService{cfg: cfg, attempts: attempts, tests: tests, rdb: rdb}
}

// Submit validates timing against the test's duration, scores the
// answers server-side, persists the attempt, and enqueues an analytics
// refresh for the test.
func (s *AttemptService) Submit(ctx context.Context, testID uuid.UUID, userID int, role model.Role, req *model.SubmitAttemptRequest) (*SubmissionResult, error) {
	test, err := s.tests.Get(ctx, testID)
	if err != nil {
		return nil, err
	}

	if !test.IsActive {
		return nil, ErrTestNotActive
	}
	if err := s.tests.CheckAccess(ctx, test, userID, role); err != nil {
		return nil, err
	}

	timing := engine.ValidateTestTiming(req.StartTime, req.EndTime, test.DurationMinutes, s.cfg.SubmitBufferMinutes)
	if !timing.IsValid {
		return nil, &InvalidTimingError{Reason: timing.Error}
	}

	result := engine.CalculateTestScore(test, req.Answers)

	attempt := &model.Attempt{
		ID:               uuid.New(),
		TestID:           test.ID,
		UserID:           userID,
		Answers:          req.Answers,
		ProcessedAnswers: result.ProcessedAnswers,
		Score:            result.Score,
		TotalMarks:       result.TotalMarks,
		Percentage:       result.Percentage,
		SectionScores:    result.SectionScores,
		TimeSpentMinutes: timing.ActualDuration,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("persist attempt: %w", err)
	}

	s.enqueueAnalyticsRefresh(ctx, test.ID)

	return &SubmissionResult{
		AttemptID:         attempt.ID,
		Score:             result.Score,
		TotalMarks:        result.TotalMarks,
		Percentage:        result.Percentage,
		TimeSpentMinutes:  timing.ActualDuration,
		SectionWiseScores: result.SectionScores,
		Insights:          engine.BuildInsights(result, timing, test.DurationMinutes),
	}, nil
}

// Get retrieves an attempt. Students may only read their own attempts;
// admins may read any.
func (s *AttemptService) Get(ctx context.Context, attemptID uuid.UUID, userID int, role model.Role) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	if attempt.UserID != userID && role != model.RoleAdmin {
		return nil, ErrNotOwner
	}
	return attempt, nil
}

// ListMine retrieves the caller's attempts for a test, most recent first.
func (s *AttemptService) ListMine(ctx context.Context, testID uuid.UUID, userID int) ([]model.Attempt, error) {
	return s.attempts.ListByTestAndUser(ctx, testID, userID)
}

// ListSummaries retrieves paginated attempt summaries for a test. Admin use.
func (s *AttemptService) ListSummaries(ctx context.Context, testID uuid.UUID, page, perPage int) ([]repository.AttemptSummary, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return s.attempts.ListSummariesByTest(ctx, testID, perPage, (page-1)*perPage)
}

// enqueueAnalyticsRefresh pushes the test onto the worker queue.
// Enqueue failures are logged, not surfaced; analytics falls back to
// an on-demand full scan when no snapshot exists.
func (s *AttemptService) enqueueAnalyticsRefresh(ctx context.Context, testID uuid.UUID) {
	if err := s.rdb.RPush(ctx, config.WorkerKey.AnalyticsRefreshQueue, testID.String()).Err(); err != nil {
		log.Error().Err(err).Str("test_id", testID.String()).Msg("failed to enqueue analytics refresh")
	}
}
