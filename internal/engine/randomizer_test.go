package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prepstack/prepstack-backend/internal/model"
)

func TestShuffleSections_CorrectAnswerRoundTrip(t *testing.T) {
	sections := []model.Section{
		{
			Title: "Science",
			Questions: []model.Question{
				{ID: uuid.New(), Text: "Q1", Options: []string{"mercury", "venus", "earth", "mars"}, CorrectAnswer: 2, Marks: 1},
				{ID: uuid.New(), Text: "Q2", Options: []string{"h2o", "co2", "o2"}, CorrectAnswer: 0, Marks: 2},
			},
		},
	}

	// Shuffling is random; run repeatedly so permutations other than the
	// identity are exercised.
	for i := 0; i < 50; i++ {
		shuffled := ShuffleSections(sections)

		for si, s := range shuffled {
			for qi, q := range s.Questions {
				orig := sections[si].Questions[qi]

				if q.OriginalCorrectAnswer != orig.CorrectAnswer {
					t.Fatalf("original correct answer not retained: got %d, want %d",
						q.OriginalCorrectAnswer, orig.CorrectAnswer)
				}
				if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
					t.Fatalf("remapped correct answer %d out of range", q.CorrectAnswer)
				}
				if q.Options[q.CorrectAnswer] != orig.Options[orig.CorrectAnswer] {
					t.Fatalf("option at remapped index %q != original correct option %q",
						q.Options[q.CorrectAnswer], orig.Options[orig.CorrectAnswer])
				}
			}
		}
	}
}

func TestShuffleSections_StructurePreserved(t *testing.T) {
	limit := 15
	sections := []model.Section{
		{
			Title:            "Part A",
			TimeLimitMinutes: &limit,
			Questions: []model.Question{
				{ID: uuid.New(), Text: "Q1", Options: []string{"a", "b"}, CorrectAnswer: 1, Marks: 1},
			},
		},
		{
			Title: "Part B",
			Questions: []model.Question{
				{ID: uuid.New(), Text: "Q2", Options: []string{"x", "y", "z"}, CorrectAnswer: 0, Marks: 2},
			},
		},
	}

	shuffled := ShuffleSections(sections)

	if len(shuffled) != len(sections) {
		t.Fatalf("section count changed: %d -> %d", len(sections), len(shuffled))
	}
	for si := range sections {
		if shuffled[si].Title != sections[si].Title {
			t.Errorf("section title changed: %q", shuffled[si].Title)
		}
		if len(shuffled[si].Questions) != len(sections[si].Questions) {
			t.Errorf("question count changed in section %d", si)
		}
		for qi := range sections[si].Questions {
			if shuffled[si].Questions[qi].ID != sections[si].Questions[qi].ID {
				t.Errorf("question order changed in section %d", si)
			}
			if shuffled[si].Questions[qi].Marks != sections[si].Questions[qi].Marks {
				t.Errorf("question marks changed in section %d", si)
			}
		}
	}
}

func TestShuffleSections_DoesNotMutateInput(t *testing.T) {
	sections := []model.Section{
		{
			Title: "S",
			Questions: []model.Question{
				{ID: uuid.New(), Text: "Q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 3, Marks: 1},
			},
		},
	}
	originalOptions := make([]string, 4)
	copy(originalOptions, sections[0].Questions[0].Options)

	for i := 0; i < 20; i++ {
		_ = ShuffleSections(sections)
	}

	for i, opt := range sections[0].Questions[0].Options {
		if opt != originalOptions[i] {
			t.Fatalf("input mutated at option %d: %q != %q", i, opt, originalOptions[i])
		}
	}
	if sections[0].Questions[0].CorrectAnswer != 3 {
		t.Fatalf("input correct answer mutated: %d", sections[0].Questions[0].CorrectAnswer)
	}
}

func TestShuffleSections_TinyOptionLists(t *testing.T) {
	sections := []model.Section{
		{
			Title: "S",
			Questions: []model.Question{
				{ID: uuid.New(), Text: "no options", Options: []string{}, CorrectAnswer: 0, Marks: 1},
				{ID: uuid.New(), Text: "one option", Options: []string{"only"}, CorrectAnswer: 0, Marks: 1},
			},
		},
	}

	shuffled := ShuffleSections(sections)

	if len(shuffled[0].Questions[0].Options) != 0 {
		t.Error("empty option list changed")
	}
	one := shuffled[0].Questions[1]
	if len(one.Options) != 1 || one.Options[0] != "only" || one.CorrectAnswer != 0 {
		t.Errorf("single-option question changed: %+v", one)
	}
}

func TestIssueTest_StripsCorrectAnswers(t *testing.T) {
	test := buildTwoQuestionTest()

	issued := IssueTest(test)

	if issued.TestID != test.ID {
		t.Errorf("issued test ID mismatch")
	}
	if issued.TotalMarks != test.TotalMarks() {
		t.Errorf("issued total marks %v != %v", issued.TotalMarks, test.TotalMarks())
	}
	if len(issued.Sections) != len(test.Sections) {
		t.Fatalf("section count mismatch")
	}
	for si, s := range issued.Sections {
		if len(s.Questions) != len(test.Sections[si].Questions) {
			t.Fatalf("question count mismatch in section %d", si)
		}
		for qi, q := range s.Questions {
			if len(q.Options) != len(test.Sections[si].Questions[qi].Options) {
				t.Errorf("option count mismatch for question %d", qi)
			}
		}
	}
}
