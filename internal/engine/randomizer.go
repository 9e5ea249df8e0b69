// Package engine implements the scoring, randomization, timing and
// analytics logic for mock tests. All functions are pure: they accept
// and return plain data structures and perform no I/O, so callers own
// persistence and transport concerns entirely.
package engine

import (
	"math/rand"

	"github.com/prepstack/prepstack-backend/internal/model"
)

// ShuffleSections returns a deep copy of the given sections where every
// question's options are permuted with a uniform shuffle. CorrectAnswer
// is remapped to the shuffled position of the originally-correct option
// and OriginalCorrectAnswer retains the canonical index, so server-side
// code can still validate against either. The input is never mutated;
// a shared test template stays safe across concurrent requests.
//
// Shuffling is intentionally not seedable: every call draws from the
// process-wide random source so repeated attempts see fresh orderings.
func ShuffleSections(sections []model.Section) []model.Section {
	out := make([]model.Section, len(sections))
	for si, s := range sections {
		questions := make([]model.Question, len(s.Questions))
		for qi, q := range s.Questions {
			questions[qi] = shuffleQuestion(q)
		}
		out[si] = model.Section{
			Title:            s.Title,
			TimeLimitMinutes: s.TimeLimitMinutes,
			Questions:        questions,
		}
	}
	return out
}

// shuffleQuestion copies q with permuted options and a remapped correct
// index. Lists of 0 or 1 options pass through untouched.
func shuffleQuestion(q model.Question) model.Question {
	shuffled := q
	shuffled.OriginalCorrectAnswer = q.CorrectAnswer

	options := make([]string, len(q.Options))
	copy(options, q.Options)
	shuffled.Options = options

	if len(options) < 2 {
		return shuffled
	}

	// Track where the correct option ends up during the shuffle rather
	// than searching for it afterwards: option strings may be duplicated.
	correct := q.CorrectAnswer
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
		switch correct {
		case i:
			correct = j
		case j:
			correct = i
		}
	})

	shuffled.CorrectAnswer = correct
	return shuffled
}

// IssueTest builds the student-facing paper for a test: fresh per-call
// option shuffle with both correct-answer fields stripped.
func IssueTest(t *model.Test) *model.IssuedTest {
	shuffled := ShuffleSections(t.Sections)

	sections := make([]model.IssuedSection, len(shuffled))
	for si, s := range shuffled {
		questions := make([]model.IssuedQuestion, len(s.Questions))
		for qi, q := range s.Questions {
			questions[qi] = model.IssuedQuestion{
				ID:      q.ID,
				Text:    q.Text,
				Options: q.Options,
				Marks:   q.Marks,
			}
		}
		sections[si] = model.IssuedSection{
			Title:            s.Title,
			TimeLimitMinutes: s.TimeLimitMinutes,
			Questions:        questions,
		}
	}

	return &model.IssuedTest{
		TestID:          t.ID,
		Title:           t.Title,
		Description:     t.Description,
		DurationMinutes: t.DurationMinutes,
		TotalMarks:      t.TotalMarks(),
		Sections:        sections,
	}
}
