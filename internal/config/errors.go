package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Config.ValidateScan()
// and provide specific information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). Callers use errors.Is() for
// programmatic handling while still printing human-readable messages.
var (
	// ErrNoTarget is returned when a scan is requested without any URL.
	ErrNoTarget = errors.New("no target specified: provide at least one URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidEnrichConcurrency is returned when the suggestion
	// concurrency is not positive.
	ErrInvalidEnrichConcurrency = errors.New("invalid enrich concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to keep the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidHistoryLimit is returned when the history limit is not positive.
	ErrInvalidHistoryLimit = errors.New("invalid history limit: must be positive")

	// ErrEmptyListenAddr is returned when the API server has no address to bind.
	ErrEmptyListenAddr = errors.New("invalid listen address: must not be empty")

	// ErrConflictingProxy is returned when both --proxy and --tor are given.
	// The embedded Tor daemon provides its own SOCKS5 address.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")
)
