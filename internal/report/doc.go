// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output, issues sorted High to Low
//   - MarkdownWriter: GitHub Flavored Markdown with tables and a pie chart
//   - JSONWriter: The Report structure verbatim, for tool integration
//
// It also compares two reports of the same page (see Compare).
//
// Design decision: We separate report writing from report data structures
// (which are in the model package). Writers never re-derive scores or
// re-run analyzers; they render the Report exactly as the pipeline built it.
package report
