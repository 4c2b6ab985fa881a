package report

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/nao1215/webpulse/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. The CLI writes to stdout or a file and the HTTP API
// writes to the response with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// Format is a report output format.
type Format string

const (
	// FormatText is the human-readable text report.
	FormatText Format = "text"

	// FormatMarkdown is the Markdown report.
	FormatMarkdown Format = "markdown"

	// FormatJSON is the JSON report.
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat parses a format name. The empty string selects text, and
// "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (use text, markdown or json)", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension of the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// NewWriter creates the writer for a format.
// The text writer is created without color.
func NewWriter(format Format, output io.Writer) Writer {
	switch format {
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	default:
		return NewSimpleWriter(output)
	}
}

// FileName returns a download name such as "webpulse_example_com.md".
func FileName(rawURL string, format Format) string {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	host = strings.NewReplacer(".", "_", ":", "_").Replace(host)
	if host == "" {
		host = "report"
	}
	return "webpulse_" + host + "." + format.Extension()
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// orMissing returns s, or placeholder when s is empty.
func orMissing(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// truncateString truncates s to maxLen characters with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
