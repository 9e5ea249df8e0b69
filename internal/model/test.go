package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Question is a single multiple-choice question inside a section.
// CorrectAnswer is the zero-based index into Options. On a shuffled copy
// produced for issuance, CorrectAnswer points at the new position of the
// correct option and OriginalCorrectAnswer retains the canonical index;
// neither field is ever serialized to a student-facing payload.
type Question struct {
	ID                    uuid.UUID `json:"id"`
	Text                  string    `json:"text"`
	Options               []string  `json:"options"`
	CorrectAnswer         int       `json:"correct_answer"`
	OriginalCorrectAnswer int       `json:"original_correct_answer,omitempty"`
	Marks                 float64   `json:"marks"`
	Explanation           string    `json:"explanation,omitempty"`
}

// Section is an ordered group of questions, optionally time-boxed.
type Section struct {
	Title            string     `json:"title"`
	TimeLimitMinutes *int       `json:"time_limit_minutes,omitempty"`
	Questions        []Question `json:"questions"`
}

// TotalMarks returns the sum of marks across the section's questions.
func (s Section) TotalMarks() float64 {
	var total float64
	for _, q := range s.Questions {
		total += q.Marks
	}
	return total
}

// Test is the canonical, versioned definition of a mock test.
// Lifecycle: created active, deactivated on delete. A test is never
// hard-deleted once attempts may exist against it.
type Test struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Sections        []Section `json:"sections"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	IsActive        bool      `json:"is_active"`
	CreatedBy       int       `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TotalMarks returns the sum of all question marks across all sections.
func (t Test) TotalMarks() float64 {
	var total float64
	for _, s := range t.Sections {
		total += s.TotalMarks()
	}
	return total
}

// QuestionCount returns the number of questions across all sections.
func (t Test) QuestionCount() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Questions)
	}
	return n
}

// IssuedQuestion is a question as delivered to a student for attempting:
// options pre-shuffled, correct answer stripped.
type IssuedQuestion struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Options []string  `json:"options"`
	Marks   float64   `json:"marks"`
}

// IssuedSection mirrors Section without answer data.
type IssuedSection struct {
	Title            string           `json:"title"`
	TimeLimitMinutes *int             `json:"time_limit_minutes,omitempty"`
	Questions        []IssuedQuestion `json:"questions"`
}

// IssuedTest is the student-facing test paper.
type IssuedTest struct {
	TestID          uuid.UUID       `json:"test_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	DurationMinutes int             `json:"duration_minutes"`
	TotalMarks      float64         `json:"total_marks"`
	Sections        []IssuedSection `json:"sections"`
}

// QuestionInput is the authoring payload for one question.
type QuestionInput struct {
	Text          string   `json:"text" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"required,min=2,max=10,dive,min=1,max=500"`
	CorrectAnswer int      `json:"correct_answer" binding:"min=0"`
	Marks         float64  `json:"marks" binding:"required,gt=0"`
	Explanation   string   `json:"explanation" binding:"omitempty,max=2000"`
}

// SectionInput is the authoring payload for one section.
type SectionInput struct {
	Title            string          `json:"title" binding:"required,min=1,max=255"`
	TimeLimitMinutes *int            `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
	Questions        []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// CreateTestRequest is the payload for authoring a new test.
type CreateTestRequest struct {
	Title           string         `json:"title" binding:"required,min=3,max=255"`
	Description     string         `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes int            `json:"duration_minutes" binding:"required,min=1,max=480"`
	Price           float64        `json:"price" binding:"min=0"`
	Sections        []SectionInput `json:"sections" binding:"required,min=1,dive"`
}

// Validate checks the structural invariants binding tags cannot express:
// every correct answer index must fall inside its option list.
func (r CreateTestRequest) Validate() error {
	for si, s := range r.Sections {
		for qi, q := range s.Questions {
			if q.CorrectAnswer >= len(q.Options) {
				return fmt.Errorf("section %d question %d: correct_answer %d out of range for %d options",
					si, qi, q.CorrectAnswer, len(q.Options))
			}
		}
	}
	return nil
}

// ToTest materializes the request into a Test, assigning question IDs.
func (r CreateTestRequest) ToTest(createdBy int) *Test {
	sections := make([]Section, len(r.Sections))
	for si, s := range r.Sections {
		questions := make([]Question, len(s.Questions))
		for qi, q := range s.Questions {
			questions[qi] = Question{
				ID:            uuid.New(),
				Text:          q.Text,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
				Marks:         q.Marks,
				Explanation:   q.Explanation,
			}
		}
		sections[si] = Section{
			Title:            s.Title,
			TimeLimitMinutes: s.TimeLimitMinutes,
			Questions:        questions,
		}
	}
	return &Test{
		ID:              uuid.New(),
		Title:           r.Title,
		Description:     r.Description,
		Sections:        sections,
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
		IsActive:        true,
		CreatedBy:       createdBy,
	}
}

// UpdateTestRequest is the payload for editing test metadata.
// Structural edits (sections/questions) replace the whole section list,
// so attempts already scored against the old version stay self-contained.
type UpdateTestRequest struct {
	Title           string         `json:"title" binding:"omitempty,min=3,max=255"`
	Description     *string        `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes int            `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Price           *float64       `json:"price" binding:"omitempty,min=0"`
	IsActive        *bool          `json:"is_active" binding:"omitempty"`
	Sections        []SectionInput `json:"sections" binding:"omitempty,min=1,dive"`
}

// Validate applies the same correct-answer range check as CreateTestRequest.
func (r UpdateTestRequest) Validate() error {
	for si, s := range r.Sections {
		for qi, q := range s.Questions {
			if q.CorrectAnswer >= len(q.Options) {
				return fmt.Errorf("section %d question %d: correct_answer %d out of range for %d options",
					si, qi, q.CorrectAnswer, len(q.Options))
			}
		}
	}
	return nil
}

// Apply copies the provided fields onto the test. Unset fields are
// left unchanged. Replacing sections assigns fresh question IDs.
func (r UpdateTestRequest) Apply(t *Test) {
	if r.Title != "" {
		t.Title = r.Title
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.DurationMinutes > 0 {
		t.DurationMinutes = r.DurationMinutes
	}
	if r.Price != nil {
		t.Price = *r.Price
	}
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}
	if len(r.Sections) > 0 {
		sections := make([]Section, len(r.Sections))
		for si, s := range r.Sections {
			questions := make([]Question, len(s.Questions))
			for qi, q := range s.Questions {
				questions[qi] = Question{
					ID:            uuid.New(),
					Text:          q.Text,
					Options:       q.Options,
					CorrectAnswer: q.CorrectAnswer,
					Marks:         q.Marks,
					Explanation:   q.Explanation,
				}
			}
			sections[si] = Section{
				Title:            s.Title,
				TimeLimitMinutes: s.TimeLimitMinutes,
				Questions:        questions,
			}
		}
		t.Sections = sections
	}
}
