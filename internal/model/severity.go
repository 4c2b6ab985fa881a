package model

import (
	"encoding/json"
	"fmt"
)

// Severity represents how strongly an issue affects the audited page.
// Every severity maps to a fixed score deduction, so adding a new level
// changes the scoring contract shared by all analyzers.
//
// Design decision: We use iota-based constants for cheap comparisons and
// sorting, and serialize them as the words "High", "Medium" and "Low"
// because that is what report consumers display.
type Severity int

const (
	// SeverityUnknown is the zero value. It only appears when a stored
	// report carries a severity this version does not recognize.
	SeverityUnknown Severity = iota

	// SeverityLow marks minor improvements (e.g. a missing favicon).
	SeverityLow

	// SeverityMedium marks issues worth fixing in the next iteration
	// (e.g. multiple H1 tags, links without destination).
	SeverityMedium

	// SeverityHigh marks issues with significant impact on visibility or
	// usability (e.g. missing title, images without alt text).
	SeverityHigh
)

// Score deductions per severity.
const (
	DeductionHigh   = 20
	DeductionMedium = 10
	DeductionLow    = 5
)

// String returns the display name of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	case SeverityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// Deduction returns the number of points an issue of this severity removes
// from its analyzer's score. Unrecognized severities deduct like Low.
func (s Severity) Deduction() int {
	switch s {
	case SeverityHigh:
		return DeductionHigh
	case SeverityMedium:
		return DeductionMedium
	default:
		return DeductionLow
	}
}

// Severities lists the known severities from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityHigh, SeverityMedium, SeverityLow}
}

// ParseSeverity converts a display name back into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "High":
		return SeverityHigh, nil
	case "Medium":
		return SeverityMedium, nil
	case "Low":
		return SeverityLow, nil
	default:
		return SeverityUnknown, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalJSON encodes the severity as its display name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a display name. Unknown names decode to
// SeverityUnknown instead of failing so that old reports stay readable.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		*s = SeverityUnknown
		return nil
	}
	*s = parsed
	return nil
}
