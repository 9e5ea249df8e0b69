package engine

import (
	"math"

	"github.com/google/uuid"
	"github.com/prepstack/prepstack-backend/internal/model"
)

// ScoringResult is the complete outcome of grading one submission.
type ScoringResult struct {
	ProcessedAnswers []model.ProcessedAnswer `json:"processed_answers"`
	Score            float64                 `json:"score"`
	TotalMarks       float64                 `json:"total_marks"`
	Percentage       float64                 `json:"percentage"`
	SectionScores    []model.SectionScore    `json:"section_scores"`
	CorrectCount     int                     `json:"correct_count"`
	QuestionCount    int                     `json:"question_count"`
}

// CalculateTestScore grades a submission against the canonical test.
// Every question in every section is scored: answered questions earn
// full marks when the selected option matches the canonical correct
// index (no partial credit, no negative marking), and unanswered
// questions record the sentinel selected option with zero marks.
// Partial submissions are valid and never an error.
//
// The result is fully deterministic for a given (test, answers) pair.
func CalculateTestScore(test *model.Test, answers []model.SubmittedAnswer) ScoringResult {
	selected := make(map[uuid.UUID]int, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedOption
	}

	result := ScoringResult{
		ProcessedAnswers: make([]model.ProcessedAnswer, 0, test.QuestionCount()),
		SectionScores:    make([]model.SectionScore, 0, len(test.Sections)),
	}

	for _, section := range test.Sections {
		sectionScore := model.SectionScore{
			Title:         section.Title,
			TotalMarks:    section.TotalMarks(),
			QuestionCount: len(section.Questions),
		}

		for _, q := range section.Questions {
			processed := model.ProcessedAnswer{
				QuestionID:     q.ID,
				SelectedOption: model.UnansweredOption,
			}

			if opt, ok := selected[q.ID]; ok {
				processed.SelectedOption = opt
				processed.IsCorrect = opt == q.CorrectAnswer
				if processed.IsCorrect {
					processed.MarksAwarded = q.Marks
				}
			}

			if processed.IsCorrect {
				sectionScore.Score += processed.MarksAwarded
				sectionScore.CorrectCount++
			}

			result.ProcessedAnswers = append(result.ProcessedAnswers, processed)
		}

		sectionScore.Percentage = percentage(sectionScore.Score, sectionScore.TotalMarks)

		result.Score += sectionScore.Score
		result.TotalMarks += sectionScore.TotalMarks
		result.CorrectCount += sectionScore.CorrectCount
		result.QuestionCount += sectionScore.QuestionCount
		result.SectionScores = append(result.SectionScores, sectionScore)
	}

	result.Percentage = percentage(result.Score, result.TotalMarks)
	return result
}

// percentage returns score/total*100 rounded to 2 decimal places,
// or 0 when total is 0.
func percentage(score, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round2(score / total * 100)
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
