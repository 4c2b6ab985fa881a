package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds a single page fetch, body included.
	// 15 seconds tolerates slow origins without stalling batch scans.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBodySize limits how much decoded markup is read.
	// 10MB covers the largest real-world HTML documents while preventing
	// memory exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultBatchSize is the number of URLs scanned at once.
	DefaultBatchSize = 4

	// DefaultEnrichConcurrency is the number of suggestions generated at
	// once. It only matters when the Claude suggester is enabled.
	DefaultEnrichConcurrency = 8

	// DefaultListenAddr is where `webpulse serve` binds.
	// The API has no authentication, so it listens on loopback by default.
	DefaultListenAddr = "127.0.0.1:8000"

	// DefaultHistoryLimit is the number of scans listed by the API and
	// by `webpulse history`.
	DefaultHistoryLimit = 20

	// DefaultAIModel is the Claude model used for suggestions.
	DefaultAIModel = "claude-haiku-4-5"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "webpulse"

	// DBFileName is the name of the scan history database inside the data
	// directory.
	DBFileName = "webpulse.db"
)

// Config holds all configuration options for webpulse.
// It is populated from defaults, then the .webpulse file, then CLI flags,
// and passed through the application rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The nested file sections (ai, server, proxy) are flattened by File.Apply
// so the rest of the program reads one struct.
type Config struct {
	// Timeout is the fetch timeout for each page.
	Timeout time.Duration

	// MaxBodySize is the maximum decoded body size in bytes.
	// Set to 0 to use the fetcher default.
	MaxBodySize int64

	// UserAgent overrides the audit bot User-Agent when non-empty.
	UserAgent string

	// BatchSize is the number of concurrent scans when auditing several URLs.
	BatchSize int

	// EnrichConcurrency is the number of concurrent suggestion requests.
	EnrichConcurrency int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .webpulse in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds the loaded configuration file, if any.
	// Its per-site headers and cookies are injected into fetches.
	SiteConfigs *File

	// JSONReport selects the JSON report format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown report format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Targets is the list of URLs to scan.
	Targets []string

	// ProxyAddress routes fetches through a SOCKS5 proxy when non-empty.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes fetches through it.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon. Only used when UseTor is true.
	TorStartupTimeout time.Duration

	// DBDir is the directory holding the scan history database.
	// Defaults to the XDG data directory (~/.local/share/webpulse on Linux).
	DBDir string

	// SaveToDB stores scan results in the history database.
	SaveToDB bool

	// ListenAddr is the address of the HTTP API server.
	ListenAddr string

	// HistoryLimit is the number of recent scans to list.
	HistoryLimit int

	// AIEnabled turns on Claude suggestions. It also needs an API key;
	// without one the static table is used.
	AIEnabled bool

	// AIModel is the Claude model name.
	AIModel string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, listen
// address). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		MaxBodySize:       DefaultMaxBodySize,
		BatchSize:         DefaultBatchSize,
		EnrichConcurrency: DefaultEnrichConcurrency,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
		ListenAddr:        DefaultListenAddr,
		HistoryLimit:      DefaultHistoryLimit,
		AIModel:           DefaultAIModel,
	}
}

// DBPath returns the path of the scan history database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DBDir, DBFileName)
}

// XDGDataDir returns the XDG data directory for webpulse.
// On Linux: ~/.local/share/webpulse
// On macOS: ~/Library/Application Support/webpulse
// On Windows: %LOCALAPPDATA%\webpulse
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webpulse.
// On Linux: ~/.config/webpulse
// On macOS: ~/Library/Application Support/webpulse
// On Windows: %APPDATA%\webpulse
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the options shared by every command.
// It returns the first error found; fixing one often makes others
// irrelevant.
func (c *Config) Validate() error {
	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.EnrichConcurrency <= 0 {
		return ErrInvalidEnrichConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.HistoryLimit <= 0 {
		return ErrInvalidHistoryLimit
	}

	if c.ListenAddr == "" {
		return ErrEmptyListenAddr
	}

	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}

	return nil
}

// ValidateScan checks the options of a scan run: the shared options and
// at least one target.
func (c *Config) ValidateScan() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return c.Validate()
}
