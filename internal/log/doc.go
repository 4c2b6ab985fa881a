// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Masking of sensitive attributes (cookies, auth headers, API keys)
//   - Scrubbing of secrets embedded in longer strings, such as an Anthropic
//     key inside an error message or a token in a URL query
//   - Configurable log levels with verbose mode support
//
// # Security Features
//
// Audited pages may sit behind a login, so per-site cookies and headers from
// the .webpulse file flow through the fetcher, and the Claude suggester holds
// an API key. The SecureHandler keeps all of them out of the logs:
//   - Attributes whose key names a secret are replaced by MaskValue
//   - String values that are secrets as a whole are replaced by MaskValue
//   - Secrets found inside a string or an error are cut out in place
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("suggestion request failed",
//	    "url", "https://example.com/?token=abc", // query value masked
//	    "error", err,                            // sk-ant-... keys scrubbed
//	)
//	slog.SetDefault(logger)
package log
