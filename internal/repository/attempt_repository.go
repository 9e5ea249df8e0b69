package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepstack/prepstack-backend/internal/model"
)

// AttemptSummary is the compact row used for admin result listings,
// joining the attempting user's identity.
type AttemptSummary struct {
	AttemptID        uuid.UUID `json:"attempt_id"`
	UserID           int       `json:"user_id"`
	UserName         string    `json:"user_name"`
	Score            float64   `json:"score"`
	TotalMarks       float64   `json:"total_marks"`
	Percentage       float64   `json:"percentage"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
	CompletedAt      time.Time `json:"completed_at"`
}

// AttemptRepository handles attempt data access. Attempts are append-only;
// there is no update path by design.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a fully-scored attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	processed, err := json.Marshal(a.ProcessedAnswers)
	if err != nil {
		return fmt.Errorf("marshal processed answers: %w", err)
	}
	sectionScores, err := json.Marshal(a.SectionScores)
	if err != nil {
		return fmt.Errorf("marshal section scores: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts
		   (id, test_id, user_id, answers, processed_answers, score, total_marks,
		    percentage, section_scores, time_spent_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING completed_at`,
		a.ID, a.TestID, a.UserID, answers, processed, a.Score, a.TotalMarks,
		a.Percentage, sectionScores, a.TimeSpentMinutes,
	).Scan(&a.CompletedAt)
}

// GetByID retrieves a single attempt including its full breakdown.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	var answers, processed, sectionScores []byte

	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, user_id, answers, processed_answers, score, total_marks,
		        percentage, section_scores, time_spent_minutes, completed_at
		 FROM attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.TestID, &a.UserID, &answers, &processed, &a.Score, &a.TotalMarks,
		&a.Percentage, &sectionScores, &a.TimeSpentMinutes, &a.CompletedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalAttemptDocs(a, answers, processed, sectionScores); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByTest retrieves every completed attempt for a test. Analytics
// recomputes from this full scan on purpose: attempts are the single
// source of truth and the aggregate is never incrementally maintained.
func (r *AttemptRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, user_id, answers, processed_answers, score, total_marks,
		        percentage, section_scores, time_spent_minutes, completed_at
		 FROM attempts
		 WHERE test_id = $1
		 ORDER BY completed_at ASC`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// ListByTestAndUser retrieves one user's attempts for a test, most recent first.
func (r *AttemptRepository) ListByTestAndUser(ctx context.Context, testID uuid.UUID, userID int) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, user_id, answers, processed_answers, score, total_marks,
		        percentage, section_scores, time_spent_minutes, completed_at
		 FROM attempts
		 WHERE test_id = $1 AND user_id = $2
		 ORDER BY completed_at DESC`, testID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// ListSummariesByTest retrieves paginated attempt summaries for admin
// result views, joined with user names.
func (r *AttemptRepository) ListSummariesByTest(ctx context.Context, testID uuid.UUID, limit, offset int) ([]AttemptSummary, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE test_id = $1`, testID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.user_id, u.name, a.score, a.total_marks, a.percentage,
		        a.time_spent_minutes, a.completed_at
		 FROM attempts a
		 JOIN users u ON a.user_id = u.id
		 WHERE a.test_id = $1
		 ORDER BY a.score DESC, a.time_spent_minutes ASC
		 LIMIT $2 OFFSET $3`, testID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var summaries []AttemptSummary
	for rows.Next() {
		var s AttemptSummary
		if err := rows.Scan(&s.AttemptID, &s.UserID, &s.UserName, &s.Score, &s.TotalMarks,
			&s.Percentage, &s.TimeSpentMinutes, &s.CompletedAt); err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, s)
	}
	return summaries, total, rows.Err()
}

type attemptRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAttempts(rows attemptRows) ([]model.Attempt, error) {
	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var answers, processed, sectionScores []byte
		if err := rows.Scan(&a.ID, &a.TestID, &a.UserID, &answers, &processed, &a.Score,
			&a.TotalMarks, &a.Percentage, &sectionScores, &a.TimeSpentMinutes, &a.CompletedAt); err != nil {
			return nil, err
		}
		if err := unmarshalAttemptDocs(&a, answers, processed, sectionScores); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func unmarshalAttemptDocs(a *model.Attempt, answers, processed, sectionScores []byte) error {
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(processed, &a.ProcessedAnswers); err != nil {
		return fmt.Errorf("unmarshal processed answers: %w", err)
	}
	if err := json.Unmarshal(sectionScores, &a.SectionScores); err != nil {
		return fmt.Errorf("unmarshal section scores: %w", err)
	}
	return nil
}
