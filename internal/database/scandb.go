package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/webpulse/internal/model"
)

// Status is the outcome of a stored scan.
type Status string

const (
	// StatusCompleted marks a scan that produced an analysis.
	StatusCompleted Status = "completed"

	// StatusFailed marks a degraded report.
	StatusFailed Status = "failed"
)

// timeLayout stores timestamps in UTC with a fixed width, so the text
// column sorts chronologically.
const timeLayout = "2006-01-02 15:04:05.000000000"

// ScanDB provides SQLite-based storage for scan history.
// It is safe for concurrent use; database/sql serializes access to the
// single connection.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the scan history at dbPath.
// If CreateIfNotExists is true, the parent directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbPath string, opts Options) (*ScanDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a scan first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a new file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *ScanDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		url               TEXT    NOT NULL,
		scanned_at        TEXT    NOT NULL,
		duration_ms       REAL    NOT NULL,
		status            TEXT    NOT NULL DEFAULT 'completed',
		error_msg         TEXT,
		score_overall     INTEGER NOT NULL DEFAULT 0,
		score_seo         INTEGER NOT NULL DEFAULT 0,
		score_bugs        INTEGER NOT NULL DEFAULT 0,
		score_performance INTEGER NOT NULL DEFAULT 0,
		issues_high       INTEGER NOT NULL DEFAULT 0,
		issues_medium     INTEGER NOT NULL DEFAULT 0,
		issues_low        INTEGER NOT NULL DEFAULT 0,
		result_json       TEXT    NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_url ON scans(url);
	CREATE INDEX IF NOT EXISTS idx_scans_scanned_at ON scans(scanned_at DESC);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanSummary is one history row without the full report.
type ScanSummary struct {
	ID          int64             `json:"id"`
	URL         string            `json:"url"`
	ScannedAt   time.Time         `json:"scannedAt"`
	DurationMs  float64           `json:"durationMs"`
	Status      Status            `json:"status"`
	Scores      model.Scores      `json:"scores"`
	IssueCounts model.IssueCounts `json:"issueCounts"`
}

// ScanRecord is a stored scan with its full report.
type ScanRecord struct {
	ScanSummary

	// ErrorMsg is the report error, empty when none was recorded.
	ErrorMsg string `json:"errorMsg,omitempty"`

	// Report is the report exactly as it was produced.
	Report *model.Report `json:"report"`
}

// Stats aggregates the whole history.
type Stats struct {
	// TotalScans counts every stored scan, failed ones included.
	TotalScans int `json:"totalScans"`

	// AverageScore is the mean overall score of completed scans,
	// rounded to one decimal. It is 0 when there are none.
	AverageScore float64 `json:"averageScore"`

	// TotalIssues sums the severity counts of all scans.
	TotalIssues model.IssueCounts `json:"totalIssues"`
}

// Save stores a report and returns its id. durationMs is the wall time of
// the whole scan, rounded to 0.1ms before it is stored.
func (sdb *ScanDB) Save(ctx context.Context, report *model.Report, durationMs float64) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	status := StatusCompleted
	if report.Failed() {
		status = StatusFailed
	}

	var errorMsg sql.NullString
	if report.Error != "" {
		errorMsg = sql.NullString{String: report.Error, Valid: true}
	}

	scannedAt := report.FetchedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}

	query := `
	INSERT INTO scans (
		url, scanned_at, duration_ms, status, error_msg,
		score_overall, score_seo, score_bugs, score_performance,
		issues_high, issues_medium, issues_low, result_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sdb.db.ExecContext(ctx, query,
		report.URL,
		scannedAt.UTC().Format(timeLayout),
		math.Round(durationMs*10)/10,
		string(status),
		errorMsg,
		report.Scores.Overall,
		report.Scores.SEO,
		report.Scores.Accessibility,
		report.Scores.Performance,
		report.IssueCounts.High,
		report.IssueCounts.Medium,
		report.IssueCounts.Low,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan: %w", err)
	}

	return result.LastInsertId()
}

// summaryColumns must match scanSummary.
const summaryColumns = `id, url, scanned_at, duration_ms, status,
	score_overall, score_seo, score_bugs, score_performance,
	issues_high, issues_medium, issues_low`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSummary reads summaryColumns, followed by extra destinations.
func scanSummary(row rowScanner, extra ...any) (ScanSummary, error) {
	var s ScanSummary
	var scannedAt, status string

	dest := []any{
		&s.ID, &s.URL, &scannedAt, &s.DurationMs, &status,
		&s.Scores.Overall, &s.Scores.SEO, &s.Scores.Accessibility, &s.Scores.Performance,
		&s.IssueCounts.High, &s.IssueCounts.Medium, &s.IssueCounts.Low,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return ScanSummary{}, err
	}

	s.ScannedAt = parseTimestamp(scannedAt)
	s.Status = Status(status)
	return s, nil
}

// querySummaries runs a query selecting summaryColumns.
func (sdb *ScanDB) querySummaries(ctx context.Context, query string, args ...any) ([]ScanSummary, error) {
	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]ScanSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, s)
	}

	return results, rows.Err()
}

// Recent returns up to limit scans, newest first.
func (sdb *ScanDB) Recent(ctx context.Context, limit int) ([]ScanSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM scans
	ORDER BY scanned_at DESC, id DESC
	LIMIT ?`

	results, err := sdb.querySummaries(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent scans: %w", err)
	}
	return results, nil
}

// HistoryForURL returns every scan of url, newest first.
func (sdb *ScanDB) HistoryForURL(ctx context.Context, url string) ([]ScanSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM scans
	WHERE url = ?
	ORDER BY scanned_at DESC, id DESC`

	results, err := sdb.querySummaries(ctx, query, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	return results, nil
}

// Get returns the scan with the given id, or ErrNotFound.
func (sdb *ScanDB) Get(ctx context.Context, id int64) (*ScanRecord, error) {
	query := `SELECT ` + summaryColumns + `, error_msg, result_json FROM scans WHERE id = ?`

	var errorMsg sql.NullString
	var reportJSON string

	summary, err := scanSummary(sdb.db.QueryRowContext(ctx, query, id), &errorMsg, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report of scan %d: %w", id, err)
	}

	return &ScanRecord{
		ScanSummary: summary,
		ErrorMsg:    errorMsg.String,
		Report:      &report,
	}, nil
}

// Delete removes the scan with the given id, or returns ErrNotFound.
func (sdb *ScanDB) Delete(ctx context.Context, id int64) error {
	result, err := sdb.db.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// Stats aggregates the whole history.
func (sdb *ScanDB) Stats(ctx context.Context) (Stats, error) {
	query := `
	SELECT
		COUNT(*),
		COALESCE((SELECT AVG(score_overall) FROM scans WHERE status = 'completed'), 0),
		COALESCE(SUM(issues_high), 0),
		COALESCE(SUM(issues_medium), 0),
		COALESCE(SUM(issues_low), 0)
	FROM scans
	`

	var stats Stats
	var avg float64
	err := sdb.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalScans,
		&avg,
		&stats.TotalIssues.High,
		&stats.TotalIssues.Medium,
		&stats.TotalIssues.Low,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to compute stats: %w", err)
	}

	stats.AverageScore = math.Round(avg*10) / 10
	return stats, nil
}

// URLs returns every scanned URL once, in alphabetical order.
func (sdb *ScanDB) URLs(ctx context.Context) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, `SELECT DISTINCT url FROM scans ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: the layout written by Save comes first.
var timestampFormats = []string{
	timeLayout,
	"2006-01-02 15:04:05", // SQLite default datetime format
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp parses a stored timestamp as UTC. If parsing fails with
// all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
