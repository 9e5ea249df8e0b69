package engine

import (
	"reflect"
	"testing"

	"github.com/prepstack/prepstack-backend/internal/model"
)

func TestBuildInsights_GradeAndPerformance(t *testing.T) {
	tests := []struct {
		pct             float64
		wantGrade       string
		wantPerformance string
	}{
		{95, "A+", "Excellent"},
		{85, "A", "Good"},
		{72, "B", "Average"},
		{65, "C", "Average"},
		{55, "D", "Below Average"},
		{20, "F", "Needs Improvement"},
	}

	for _, tc := range tests {
		result := ScoringResult{Percentage: tc.pct}
		timing := TimingResult{IsValid: true, ActualDuration: 10}

		ins := BuildInsights(result, timing, 30)
		if ins.Grade != tc.wantGrade {
			t.Errorf("pct %v: grade = %q, want %q", tc.pct, ins.Grade, tc.wantGrade)
		}
		if ins.Performance != tc.wantPerformance {
			t.Errorf("pct %v: performance = %q, want %q", tc.pct, ins.Performance, tc.wantPerformance)
		}
	}
}

func TestBuildInsights_TimeEfficiency(t *testing.T) {
	tests := []struct {
		actual  int
		allowed int
		want    string
	}{
		{10, 30, "Very Fast"},
		{20, 30, "Efficient"},
		{30, 30, "On Time"},
		{33, 30, "Overtime"},
	}

	for _, tc := range tests {
		ins := BuildInsights(ScoringResult{}, TimingResult{ActualDuration: tc.actual}, tc.allowed)
		if ins.TimeEfficiency != tc.want {
			t.Errorf("actual=%d allowed=%d: efficiency = %q, want %q", tc.actual, tc.allowed, ins.TimeEfficiency, tc.want)
		}
	}
}

func TestBuildInsights_StrengthsAndImprovements(t *testing.T) {
	result := ScoringResult{
		Percentage: 60,
		SectionScores: []model.SectionScore{
			{Title: "Math", Percentage: 90},
			{Title: "English", Percentage: 60},
			{Title: "Reasoning", Percentage: 30},
		},
	}

	ins := BuildInsights(result, TimingResult{IsValid: true, ActualDuration: 20}, 30)

	if !reflect.DeepEqual(ins.Strengths, []string{"Math"}) {
		t.Errorf("Strengths = %v", ins.Strengths)
	}
	if !reflect.DeepEqual(ins.Improvements, []string{"Reasoning"}) {
		t.Errorf("Improvements = %v", ins.Improvements)
	}
}
