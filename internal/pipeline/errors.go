package pipeline

import "errors"

var (
	// ErrAnalysisFailed is returned when an analyzer faults. The scan
	// produces no scores at all in that case.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrNoResponse is returned when a step that needs the fetched page
	// runs before the fetch step.
	ErrNoResponse = errors.New("no response to analyze")
)
