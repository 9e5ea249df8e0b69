package engine

import (
	"strings"
	"testing"
)

func TestValidateTestTiming(t *testing.T) {
	tests := []struct {
		name         string
		start        string
		end          string
		allowed      int
		buffer       int
		wantValid    bool
		wantDuration int
		wantErrPart  string
	}{
		{
			name:  "within allowed duration",
			start: "2024-01-01T10:00:00Z", end: "2024-01-01T10:05:00Z",
			allowed: 10, buffer: 5,
			wantValid: true, wantDuration: 5,
		},
		{
			name:  "exactly at allowed plus buffer",
			start: "2024-01-01T10:00:00Z", end: "2024-01-01T10:15:00Z",
			allowed: 10, buffer: 5,
			wantValid: true, wantDuration: 15,
		},
		{
			name:  "exceeds allowed plus buffer",
			start: "2024-01-01T10:00:00Z", end: "2024-01-01T10:20:00Z",
			allowed: 10, buffer: 5,
			wantValid: false, wantDuration: 20, wantErrPart: "duration exceeded",
		},
		{
			name:  "sub-minute duration rounds",
			start: "2024-01-01T10:00:00Z", end: "2024-01-01T10:00:40Z",
			allowed: 10, buffer: 5,
			wantValid: true, wantDuration: 1,
		},
		{
			name:  "end equals start",
			start: "2024-01-01T10:00:00Z", end: "2024-01-01T10:00:00Z",
			allowed: 10, buffer: 5,
			wantValid: false, wantErrPart: "after start",
		},
		{
			name:  "end before start",
			start: "2024-01-01T10:10:00Z", end: "2024-01-01T10:00:00Z",
			allowed: 10, buffer: 5,
			wantValid: false, wantErrPart: "after start",
		},
		{
			name:  "malformed start time",
			start: "yesterday", end: "2024-01-01T10:00:00Z",
			allowed: 10, buffer: 5,
			wantValid: false, wantErrPart: "invalid start time",
		},
		{
			name:  "malformed end time",
			start: "2024-01-01T10:00:00Z", end: "later",
			allowed: 10, buffer: 5,
			wantValid: false, wantErrPart: "invalid end time",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateTestTiming(tc.start, tc.end, tc.allowed, tc.buffer)

			if got.IsValid != tc.wantValid {
				t.Errorf("IsValid = %v, want %v (error: %s)", got.IsValid, tc.wantValid, got.Error)
			}
			if tc.wantDuration != 0 && got.ActualDuration != tc.wantDuration {
				t.Errorf("ActualDuration = %d, want %d", got.ActualDuration, tc.wantDuration)
			}
			if tc.wantErrPart != "" && !strings.Contains(got.Error, tc.wantErrPart) {
				t.Errorf("error %q does not contain %q", got.Error, tc.wantErrPart)
			}
		})
	}
}

func TestValidateTestTiming_ErrorNamesBothValues(t *testing.T) {
	got := ValidateTestTiming("2024-01-01T10:00:00Z", "2024-01-01T10:20:00Z", 10, 5)

	if got.IsValid {
		t.Fatal("expected invalid result")
	}
	if !strings.Contains(got.Error, "15") || !strings.Contains(got.Error, "20") {
		t.Errorf("error must name allowed max and actual duration, got %q", got.Error)
	}
}
