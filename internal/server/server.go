package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/webpulse/internal/database"
	"github.com/nao1215/webpulse/internal/model"
)

// DefaultHistoryLimit is the number of scans GET /api/scans returns.
const DefaultHistoryLimit = 20

// maxRequestBody bounds the JSON body of POST /api/scan.
const maxRequestBody = 1 << 20

// shutdownTimeout bounds the graceful shutdown in Run.
const shutdownTimeout = 10 * time.Second

// ErrNoScanner is returned by New when Config.Scanner is nil.
var ErrNoScanner = errors.New("server requires a scanner")

// Scanner audits one normalized URL.
type Scanner interface {
	Scan(ctx context.Context, url string) (*model.Report, error)
}

// Store persists scans. *database.ScanDB implements it.
type Store interface {
	Save(ctx context.Context, report *model.Report, durationMs float64) (int64, error)
	Recent(ctx context.Context, limit int) ([]database.ScanSummary, error)
	Get(ctx context.Context, id int64) (*database.ScanRecord, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (database.Stats, error)
}

// AIStatus describes the suggestion engine for GET /api/ai-status.
type AIStatus struct {
	Enabled bool   `json:"ai_enabled"` //nolint:tagliatelle // public API field names
	Mode    string `json:"mode"`
	Model   string `json:"model,omitempty"`
	Message string `json:"message"`
}

// NewAIStatus builds the status for a suggestion mode as reported by the
// pipeline ("claude" or "static").
func NewAIStatus(mode, aiModel string) AIStatus {
	if mode == "claude" {
		return AIStatus{
			Enabled: true,
			Mode:    mode,
			Model:   aiModel,
			Message: "Claude is active. Suggestions are generated live for each issue.",
		}
	}
	return AIStatus{
		Mode:    "static",
		Message: "Using static suggestions. Set ANTHROPIC_API_KEY and enable ai in the config file to use Claude.",
	}
}

// Config configures a Server.
type Config struct {
	// ListenAddr is the address HTTPServer listens on.
	ListenAddr string

	// Scanner runs scans. Required.
	Scanner Scanner

	// Store keeps the history. Nil disables every history route, which
	// then answers 503.
	Store Store

	// HistoryLimit is the number of scans listed by GET /api/scans.
	HistoryLimit int

	// AI is reported by GET /api/ai-status.
	AI AIStatus

	// Version is reported by GET /api/health.
	Version string

	// Logger receives request logs. Nil means slog.Default().
	Logger *slog.Logger
}

// Server is the HTTP API surface for webpulse.
type Server struct {
	cfg    Config
	router chi.Router
	logger *slog.Logger
}

// New creates a Server and registers its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Scanner == nil {
		return nil, ErrNoScanner
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/ai-status", s.handleAIStatus)

		r.Post("/scan", s.handleScan)
		r.Options("/scan", optionsHandler("POST"))

		r.Group(func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/scans", s.handleListScans)
			r.Get("/scan/{id}", s.handleGetScan)
			r.Delete("/scan/{id}", s.handleDeleteScan)
			r.Options("/scan/{id}", optionsHandler("GET, DELETE"))
			r.Get("/report/{id}", s.handleReport)
			r.Get("/stats", s.handleStats)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, "API route not found")
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
// WriteTimeout is left at zero because a scan may legitimately take as
// long as the fetch timeout plus enrichment.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
