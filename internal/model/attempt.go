package model

import (
	"time"

	"github.com/google/uuid"
)

// UnansweredOption is the sentinel recorded when a question was not answered.
const UnansweredOption = -1

// SubmittedAnswer is one (question, selected option) pair as sent by the client.
type SubmittedAnswer struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedOption int       `json:"selected_option" binding:"min=0"`
}

// ProcessedAnswer is the server-derived verdict for one question. It is
// always recomputed from the canonical test; client-reported correctness
// is never trusted.
type ProcessedAnswer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption int       `json:"selected_option"`
	IsCorrect      bool      `json:"is_correct"`
	MarksAwarded   float64   `json:"marks_awarded"`
}

// SectionScore is the per-section scoring breakdown.
type SectionScore struct {
	Title         string  `json:"title"`
	Score         float64 `json:"score"`
	TotalMarks    float64 `json:"total_marks"`
	Percentage    float64 `json:"percentage"`
	CorrectCount  int     `json:"correct_count"`
	QuestionCount int     `json:"question_count"`
}

// Attempt records one user's completed try at a test. Attempts are
// append-only: a retake is a new attempt, never an edit.
type Attempt struct {
	ID               uuid.UUID         `json:"id"`
	TestID           uuid.UUID         `json:"test_id"`
	UserID           int               `json:"user_id"`
	Answers          []SubmittedAnswer `json:"answers"`
	ProcessedAnswers []ProcessedAnswer `json:"processed_answers"`
	Score            float64           `json:"score"`
	TotalMarks       float64           `json:"total_marks"`
	Percentage       float64           `json:"percentage"`
	SectionScores    []SectionScore    `json:"section_scores"`
	TimeSpentMinutes int               `json:"time_spent_minutes"`
	CompletedAt      time.Time         `json:"completed_at"`
}

// SubmitAttemptRequest is the submission payload. Timestamps are RFC3339;
// the server derives the authoritative time spent from them.
type SubmitAttemptRequest struct {
	Answers   []SubmittedAnswer `json:"answers" binding:"required,dive"`
	StartTime string            `json:"start_time" binding:"required"`
	EndTime   string            `json:"end_time" binding:"required"`
}
