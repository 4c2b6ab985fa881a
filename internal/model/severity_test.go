package model

import (
	"encoding/json"
	"testing"
)

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityLow, "Low"},
		{SeverityMedium, "Medium"},
		{SeverityHigh, "High"},
		{SeverityUnknown, "Unknown"},
		{Severity(999), "Unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestSeverityDeduction tests the score deduction of each severity.
func TestSeverityDeduction(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		severity Severity
		expected int
	}{
		{"high", SeverityHigh, 20},
		{"medium", SeverityMedium, 10},
		{"low", SeverityLow, 5},
		{"unknown deducts like low", SeverityUnknown, 5},
		{"out of range deducts like low", Severity(42), 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.severity.Deduction(); got != tc.expected {
				t.Errorf("Deduction() = %d, expected %d", got, tc.expected)
			}
		})
	}
}

// TestParseSeverity tests conversion from display names.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	for _, s := range Severities() {
		got, err := ParseSeverity(s.String())
		if err != nil {
			t.Fatalf("ParseSeverity(%q) error: %v", s.String(), err)
		}
		if got != s {
			t.Errorf("ParseSeverity(%q) = %v, expected %v", s.String(), got, s)
		}
	}

	if _, err := ParseSeverity("Critical"); err == nil {
		t.Error("expected error for unknown severity")
	}
}

// TestSeverityJSON tests that severities serialize as their names.
func TestSeverityJSON(t *testing.T) {
	t.Parallel()

	t.Run("marshal", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(SeverityMedium)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}
		if string(data) != `"Medium"` {
			t.Errorf("got %s, expected \"Medium\"", data)
		}
	})

	t.Run("unmarshal known", func(t *testing.T) {
		t.Parallel()
		var s Severity
		if err := json.Unmarshal([]byte(`"High"`), &s); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}
		if s != SeverityHigh {
			t.Errorf("got %v, expected High", s)
		}
	})

	t.Run("unmarshal unknown", func(t *testing.T) {
		t.Parallel()
		s := SeverityHigh
		if err := json.Unmarshal([]byte(`"Severe"`), &s); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}
		if s != SeverityUnknown {
			t.Errorf("got %v, expected Unknown", s)
		}
	})

	t.Run("unmarshal non-string", func(t *testing.T) {
		t.Parallel()
		var s Severity
		if err := json.Unmarshal([]byte(`3`), &s); err == nil {
			t.Error("expected error for numeric severity")
		}
	})
}
