// Package mcp exposes webpulse scans as Model Context Protocol tools over
// stdio, so that an AI assistant can audit pages and read the history.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nao1215/webpulse/internal/database"
	"github.com/nao1215/webpulse/internal/fetcher"
	"github.com/nao1215/webpulse/internal/model"
	"github.com/nao1215/webpulse/internal/pipeline"
	"github.com/nao1215/webpulse/internal/report"
)

// defaultHistoryLimit is the number of scans webpulse_history returns
// when no limit is given.
const defaultHistoryLimit = 20

// Scanner audits one normalized URL.
type Scanner interface {
	Scan(ctx context.Context, url string) (*model.Report, error)
}

// Store is the part of the scan history the tools use.
// *database.ScanDB implements it.
type Store interface {
	Save(ctx context.Context, report *model.Report, durationMs float64) (int64, error)
	Recent(ctx context.Context, limit int) ([]database.ScanSummary, error)
	HistoryForURL(ctx context.Context, url string) ([]database.ScanSummary, error)
	Get(ctx context.Context, id int64) (*database.ScanRecord, error)
	Stats(ctx context.Context) (database.Stats, error)
}

// Server wraps the scanner and the history and exposes them as MCP tools.
type Server struct {
	scanner Scanner
	store   Store
	version string
}

// NewServer creates the MCP server wrapper. store may be nil, in which
// case scans are not saved and the history tools report an error.
func NewServer(scanner Scanner, store Store, version string) *Server {
	return &Server{
		scanner: scanner,
		store:   store,
		version: version,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("webpulse", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.scanTool())
	srv.AddTool(s.historyTool())
	srv.AddTool(s.getScanTool())
	srv.AddTool(s.statsTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

func formatOption() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Output format: json (default), text or markdown"),
		mcp.Enum("json", "text", "markdown"),
	)
}

// webpulse_scan
func (s *Server) scanTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("webpulse_scan",
		mcp.WithDescription("Audit a web page for SEO, accessibility and performance issues. Returns scores (0-100), issues with severity and fix suggestions, and page metadata."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Page URL. https:// is assumed when no scheme is given.")),
		formatOption(),
	)
	return tool, s.handleScan
}

func (s *Server) handleScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: url"), nil
	}
	format, err := report.ParseFormat(request.GetString("format", "json"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := fetcher.NormalizeURL(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start := time.Now()
	rep, err := s.scanner.Scan(ctx, target)
	if err != nil && (rep == nil || !errors.Is(err, pipeline.ErrAnalysisFailed)) {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	if s.store != nil {
		// Saving is best-effort; the caller still gets the report.
		_, _ = s.store.Save(ctx, rep, float64(time.Since(start).Microseconds())/1000)
	}

	return render(rep, format)
}

// webpulse_history
func (s *Server) historyTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("webpulse_history",
		mcp.WithDescription("List stored scans, newest first. Returns a JSON array with id, url, scannedAt, status, scores and issueCounts."),
		mcp.WithString("url", mcp.Description("Only list scans of this exact URL")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of scans (default 20)")),
	)
	return tool, s.handleHistory
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("scan history is disabled"), nil
	}

	limit := request.GetInt("limit", defaultHistoryLimit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var (
		scans []database.ScanSummary
		err   error
	)
	if url := request.GetString("url", ""); url != "" {
		if normalized, nerr := fetcher.NormalizeURL(url); nerr == nil {
			url = normalized
		}
		scans, err = s.store.HistoryForURL(ctx, url)
		if len(scans) > limit {
			scans = scans[:limit]
		}
	} else {
		scans, err = s.store.Recent(ctx, limit)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list scans: %v", err)), nil
	}

	return jsonResult(scans)
}

// webpulse_get_scan
func (s *Server) getScanTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("webpulse_get_scan",
		mcp.WithDescription("Get the full report of a stored scan by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Scan id from webpulse_history")),
		formatOption(),
	)
	return tool, s.handleGetScan
}

func (s *Server) handleGetScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("scan history is disabled"), nil
	}
	id, err := request.RequireInt("id")
	if err != nil || id <= 0 {
		return mcp.NewToolResultError("missing or invalid parameter: id"), nil
	}
	format, err := report.ParseFormat(request.GetString("format", "json"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, err := s.store.Get(ctx, int64(id))
	if errors.Is(err, database.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("Scan %d not found", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load scan: %v", err)), nil
	}

	return render(rec.Report, format)
}

// webpulse_stats
func (s *Server) statsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("webpulse_stats",
		mcp.WithDescription("Aggregate statistics over the scan history: total scans, average overall score and issue counts per severity."),
	)
	return tool, s.handleStats
}

func (s *Server) handleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("scan history is disabled"), nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute stats: %v", err)), nil
	}
	return jsonResult(stats)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func render(rep *model.Report, format report.Format) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	var err error
	if format == report.FormatJSON {
		_, err = report.NewJSONWriter(&buf).Write(rep)
	} else {
		_, err = report.NewWriter(format, &buf).Write(rep)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render report: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
