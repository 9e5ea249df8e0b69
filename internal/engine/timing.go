package engine

import (
	"fmt"
	"math"
	"time"
)

// DefaultBufferMinutes is the grace window added to a test's allowed
// duration when the caller does not configure one.
const DefaultBufferMinutes = 5

// TimingResult reports whether a submission's wall-clock window is
// acceptable. ActualDuration (whole minutes, rounded) is the
// authoritative time spent and must be stored in preference to any
// client-reported figure.
type TimingResult struct {
	IsValid        bool   `json:"is_valid"`
	ActualDuration int    `json:"actual_duration"`
	Error          string `json:"error,omitempty"`
}

// ValidateTestTiming checks the elapsed time between two RFC3339
// timestamps against the allowed duration plus a buffer. It fails when
// either timestamp is malformed, the end does not come after the start,
// or the elapsed time exceeds allowed+buffer.
func ValidateTestTiming(startTime, endTime string, allowedMinutes, bufferMinutes int) TimingResult {
	start, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return TimingResult{Error: fmt.Sprintf("invalid start time: %q", startTime)}
	}

	end, err := time.Parse(time.RFC3339, endTime)
	if err != nil {
		return TimingResult{Error: fmt.Sprintf("invalid end time: %q", endTime)}
	}

	if !end.After(start) {
		return TimingResult{Error: "end time must be after start time"}
	}

	actual := int(math.Round(end.Sub(start).Minutes()))

	maxAllowed := allowedMinutes + bufferMinutes
	if actual > maxAllowed {
		return TimingResult{
			ActualDuration: actual,
			Error: fmt.Sprintf("test duration exceeded: allowed %d minutes (including %d minute buffer), took %d minutes",
				maxAllowed, bufferMinutes, actual),
		}
	}

	return TimingResult{IsValid: true, ActualDuration: actual}
}
