package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that should always be sanitized.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,

	// Authentication
	"password":          true,
	"passwd":            true,
	"secret":            true,
	"token":             true,
	"api_key":           true,
	"apikey":            true,
	"api-key":           true,
	"access_token":      true,
	"refresh_token":     true,
	"anthropic_api_key": true,

	// Session
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"sid":        true,
	"jsessionid": true,

	// Credentials
	"credential":  true,
	"credentials": true,
}

// sensitiveKeywords mark a key as sensitive when contained in it.
// The bare "key" keyword is left out because it causes false positives
// (e.g., "primary_key", "keyboard"); concrete key names are listed in
// sensitiveKeys instead.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth",
	"credential", "cookie",
}

// sensitivePatterns match values that are secrets as a whole.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Long alphanumeric strings are likely API keys.
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),

	// Private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// embeddedPatterns match secrets inside longer text. The first submatch,
// if any, is kept and the rest of the match is masked.
var embeddedPatterns = []*regexp.Regexp{
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]+`),

	// Bearer tokens inside messages or dumped headers
	regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/=-]+`),

	// Credential-like URL query parameters
	regexp.MustCompile(`(?i)([?&](?:api_?key|access_token|token|key|sig|signature|password|auth)=)[^&#\s]+`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler to sanitize sensitive information.
// It intercepts log records and sanitizes attribute values that match
// sensitive key names or value patterns before passing them to the
// underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// so every component keeps taking a plain *slog.Logger, and the same
// sanitization applies to the text and JSON handlers.
type SecureHandler struct {
	// handler is the underlying slog handler that receives sanitized records.
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, the returned SecureHandler will use slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's message and attributes and passes it to the
// underlying handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, Scrub(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if isSensitiveValue(s) {
			return slog.String(a.Key, MaskValue)
		}
		if scrubbed := Scrub(s); scrubbed != s {
			return slog.String(a.Key, scrubbed)
		}
	case slog.KindAny:
		// Errors from the SDK or the fetcher may quote keys or URLs.
		if err, ok := a.Value.Any().(error); ok && err != nil {
			msg := err.Error()
			if scrubbed := Scrub(msg); scrubbed != msg {
				return slog.String(a.Key, scrubbed)
			}
		}
	}

	return a
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
func containsSensitiveKeyword(key string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// Scrub masks secrets embedded in s and returns the result. Text around
// the secret is kept, so a scrubbed URL or error message stays readable.
func Scrub(s string) string {
	for _, pattern := range embeddedPatterns {
		if pattern.NumSubexp() == 0 {
			s = pattern.ReplaceAllLiteralString(s, MaskValue)
			continue
		}
		s = pattern.ReplaceAllString(s, "${1}"+MaskValue)
	}
	return s
}

// Options selects the level and format of a logger.
type Options struct {
	// Level is the minimum level written.
	Level slog.Level

	// JSON selects the JSON handler instead of the text handler.
	JSON bool
}

// New creates a *slog.Logger writing to w through a SecureHandler.
func New(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(NewSecureHandler(handler))
}

// NewSecureLogger creates a new slog.Logger with secure handling.
// If verbose is true the level is Debug, otherwise Warn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return New(w, Options{Level: levelFor(verbose)})
}

// NewSecureJSONLogger creates a new slog.Logger with secure handling
// that outputs JSON format. The API server uses it for structured request
// logs.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return New(w, Options{Level: levelFor(verbose), JSON: true})
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
