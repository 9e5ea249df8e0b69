package engine

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/prepstack/prepstack-backend/internal/model"
)

func buildTwoQuestionTest() *model.Test {
	return &model.Test{
		ID:              uuid.New(),
		Title:           "Sample",
		DurationMinutes: 30,
		IsActive:        true,
		Sections: []model.Section{
			{
				Title: "General",
				Questions: []model.Question{
					{ID: uuid.New(), Text: "Q1", Options: []string{"a", "b", "c"}, CorrectAnswer: 0, Marks: 1},
					{ID: uuid.New(), Text: "Q2", Options: []string{"a", "b", "c"}, CorrectAnswer: 1, Marks: 1},
				},
			},
		},
	}
}

func TestCalculateTestScore_HalfCorrect(t *testing.T) {
	test := buildTwoQuestionTest()
	q1 := test.Sections[0].Questions[0].ID
	q2 := test.Sections[0].Questions[1].ID

	result := CalculateTestScore(test, []model.SubmittedAnswer{
		{QuestionID: q1, SelectedOption: 0},
		{QuestionID: q2, SelectedOption: 0},
	})

	if result.Score != 1 {
		t.Errorf("expected score 1, got %v", result.Score)
	}
	if result.TotalMarks != 2 {
		t.Errorf("expected total marks 2, got %v", result.TotalMarks)
	}
	if result.Percentage != 50.00 {
		t.Errorf("expected percentage 50.00, got %v", result.Percentage)
	}
	if result.CorrectCount != 1 {
		t.Errorf("expected 1 correct, got %d", result.CorrectCount)
	}
}

func TestCalculateTestScore_UnansweredQuestions(t *testing.T) {
	test := buildTwoQuestionTest()
	q1 := test.Sections[0].Questions[0].ID

	result := CalculateTestScore(test, []model.SubmittedAnswer{
		{QuestionID: q1, SelectedOption: 0},
	})

	if len(result.ProcessedAnswers) != 2 {
		t.Fatalf("expected 2 processed answers, got %d", len(result.ProcessedAnswers))
	}

	unanswered := result.ProcessedAnswers[1]
	if unanswered.SelectedOption != model.UnansweredOption {
		t.Errorf("expected sentinel %d, got %d", model.UnansweredOption, unanswered.SelectedOption)
	}
	if unanswered.IsCorrect {
		t.Error("unanswered question must not be correct")
	}
	if unanswered.MarksAwarded != 0 {
		t.Errorf("unanswered question must award 0 marks, got %v", unanswered.MarksAwarded)
	}
	if result.Score != 1 {
		t.Errorf("expected score 1, got %v", result.Score)
	}
}

func TestCalculateTestScore_NoPartialOrNegativeMarking(t *testing.T) {
	test := buildTwoQuestionTest()
	q1 := test.Sections[0].Questions[0].ID
	q2 := test.Sections[0].Questions[1].ID

	result := CalculateTestScore(test, []model.SubmittedAnswer{
		{QuestionID: q1, SelectedOption: 2}, // wrong
		{QuestionID: q2, SelectedOption: 2}, // wrong
	})

	if result.Score != 0 {
		t.Errorf("wrong answers must score 0, got %v", result.Score)
	}
	for _, pa := range result.ProcessedAnswers {
		if pa.MarksAwarded != 0 {
			t.Errorf("wrong answer awarded %v marks", pa.MarksAwarded)
		}
	}
}

func TestCalculateTestScore_Deterministic(t *testing.T) {
	test := buildTwoQuestionTest()
	answers := []model.SubmittedAnswer{
		{QuestionID: test.Sections[0].Questions[0].ID, SelectedOption: 0},
	}

	first := CalculateTestScore(test, answers)
	second := CalculateTestScore(test, answers)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("scoring is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCalculateTestScore_EmptyTestAvoidsDivisionByZero(t *testing.T) {
	test := &model.Test{ID: uuid.New(), Sections: []model.Section{}}

	result := CalculateTestScore(test, nil)

	if result.Percentage != 0 {
		t.Errorf("expected percentage 0 for empty test, got %v", result.Percentage)
	}
	if result.TotalMarks != 0 {
		t.Errorf("expected total marks 0, got %v", result.TotalMarks)
	}
}

func TestCalculateTestScore_SectionBreakdown(t *testing.T) {
	s1q := model.Question{ID: uuid.New(), Text: "Q1", Options: []string{"a", "b"}, CorrectAnswer: 0, Marks: 2}
	s2q1 := model.Question{ID: uuid.New(), Text: "Q2", Options: []string{"a", "b"}, CorrectAnswer: 1, Marks: 3}
	s2q2 := model.Question{ID: uuid.New(), Text: "Q3", Options: []string{"a", "b"}, CorrectAnswer: 0, Marks: 3}

	test := &model.Test{
		ID: uuid.New(),
		Sections: []model.Section{
			{Title: "Math", Questions: []model.Question{s1q}},
			{Title: "English", Questions: []model.Question{s2q1, s2q2}},
		},
	}

	result := CalculateTestScore(test, []model.SubmittedAnswer{
		{QuestionID: s1q.ID, SelectedOption: 0},
		{QuestionID: s2q1.ID, SelectedOption: 1},
		{QuestionID: s2q2.ID, SelectedOption: 1},
	})

	if len(result.SectionScores) != 2 {
		t.Fatalf("expected 2 section scores, got %d", len(result.SectionScores))
	}

	math := result.SectionScores[0]
	if math.Score != 2 || math.TotalMarks != 2 || math.Percentage != 100.00 || math.CorrectCount != 1 {
		t.Errorf("unexpected math section result: %+v", math)
	}

	english := result.SectionScores[1]
	if english.Score != 3 || english.TotalMarks != 6 || english.Percentage != 50.00 {
		t.Errorf("unexpected english section result: %+v", english)
	}
	if english.CorrectCount != 1 || english.QuestionCount != 2 {
		t.Errorf("unexpected english counts: %+v", english)
	}

	// Section totals must add up to the test total.
	var sum float64
	for _, s := range result.SectionScores {
		sum += s.TotalMarks
	}
	if sum != test.TotalMarks() {
		t.Errorf("section totals %v do not sum to test total %v", sum, test.TotalMarks())
	}
}

func TestCalculateTestScore_PercentageRounding(t *testing.T) {
	q1 := model.Question{ID: uuid.New(), Text: "Q1", Options: []string{"a", "b"}, CorrectAnswer: 0, Marks: 1}
	q2 := model.Question{ID: uuid.New(), Text: "Q2", Options: []string{"a", "b"}, CorrectAnswer: 0, Marks: 1}
	q3 := model.Question{ID: uuid.New(), Text: "Q3", Options: []string{"a", "b"}, CorrectAnswer: 0, Marks: 1}

	test := &model.Test{
		ID:       uuid.New(),
		Sections: []model.Section{{Title: "S", Questions: []model.Question{q1, q2, q3}}},
	}

	// 1/3 → 33.333... → 33.33
	result := CalculateTestScore(test, []model.SubmittedAnswer{
		{QuestionID: q1.ID, SelectedOption: 0},
	})

	if result.Percentage != 33.33 {
		t.Errorf("expected percentage 33.33, got %v", result.Percentage)
	}
}
