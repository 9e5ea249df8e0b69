package engine

// Insights is the qualitative feedback block attached to a submission
// result.
type Insights struct {
	Grade          string   `json:"grade"`
	Performance    string   `json:"performance"`
	TimeEfficiency string   `json:"time_efficiency"`
	Strengths      []string `json:"strengths"`
	Improvements   []string `json:"improvements"`
}

const (
	strengthThreshold    = 75.0
	improvementThreshold = 50.0
)

// BuildInsights derives grade, performance and time-efficiency labels
// plus section-level strengths and improvement areas from a scoring
// result and the validated timing.
func BuildInsights(result ScoringResult, timing TimingResult, allowedMinutes int) Insights {
	ins := Insights{
		Grade:          gradeFor(result.Percentage),
		Performance:    performanceFor(result.Percentage),
		TimeEfficiency: timeEfficiencyFor(timing.ActualDuration, allowedMinutes),
		Strengths:      []string{},
		Improvements:   []string{},
	}

	for _, s := range result.SectionScores {
		switch {
		case s.Percentage >= strengthThreshold:
			ins.Strengths = append(ins.Strengths, s.Title)
		case s.Percentage < improvementThreshold:
			ins.Improvements = append(ins.Improvements, s.Title)
		}
	}

	return ins
}

func gradeFor(pct float64) string {
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	case pct >= 50:
		return "D"
	default:
		return "F"
	}
}

func performanceFor(pct float64) string {
	switch {
	case pct >= 90:
		return "Excellent"
	case pct >= 75:
		return "Good"
	case pct >= 60:
		return "Average"
	case pct >= 40:
		return "Below Average"
	default:
		return "Needs Improvement"
	}
}

// timeEfficiencyFor compares actual time against the allowed duration.
func timeEfficiencyFor(actualMinutes, allowedMinutes int) string {
	if allowedMinutes <= 0 {
		return "Unknown"
	}
	ratio := float64(actualMinutes) / float64(allowedMinutes)
	switch {
	case ratio <= 0.5:
		return "Very Fast"
	case ratio <= 0.8:
		return "Efficient"
	case ratio <= 1.0:
		return "On Time"
	default:
		return "Overtime"
	}
}
