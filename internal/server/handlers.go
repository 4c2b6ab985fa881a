package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nao1215/webpulse/internal/database"
	"github.com/nao1215/webpulse/internal/fetcher"
	"github.com/nao1215/webpulse/internal/model"
	"github.com/nao1215/webpulse/internal/pipeline"
	"github.com/nao1215/webpulse/internal/report"
)

// scanRequest is the body of POST /api/scan.
type scanRequest struct {
	URL string `json:"url"`
}

// scanResponse is a report with its history id and the wall-clock scan
// duration. ScanID is 0 when the scan was not stored.
type scanResponse struct {
	ScanID     int64   `json:"scanId"`
	DurationMs float64 `json:"durationMs"`
	*model.Report
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// scanID parses the {id} path parameter.
func scanID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid scan id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// --- HTTP handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.cfg.Version})
}

func (s *Server) handleAIStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.AI)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var body scanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	target, err := fetcher.NormalizeURL(body.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("scan started", "url", target, "request_id", RequestIDFrom(r.Context()))
	start := time.Now()
	rep, err := s.cfg.Scanner.Scan(r.Context(), target)
	durationMs := math.Round(float64(time.Since(start).Microseconds())/100) / 10

	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrAnalysisFailed) && rep != nil:
		s.logger.Error("analysis failed", "url", target, "error", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Scan cancelled")
		return
	default:
		s.logger.Error("scan failed", "url", target, "error", err)
		writeError(w, http.StatusInternalServerError, "Scan failed unexpectedly")
		return
	}

	resp := scanResponse{DurationMs: durationMs, Report: rep}
	if s.cfg.Store != nil {
		// The scan outlives a client that disconnects after the fetch, so
		// the result is stored regardless.
		id, err := s.cfg.Store.Save(context.WithoutCancel(r.Context()), rep, durationMs)
		if err != nil {
			s.logger.Error("failed to save scan", "url", target, "error", err)
		} else {
			resp.ScanID = id
		}
	}

	s.logger.Info("scan complete",
		"id", resp.ScanID,
		"url", target,
		"overall", rep.Scores.Overall,
		"issues", len(rep.Issues),
		"duration_ms", durationMs,
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := s.cfg.Store.Recent(r.Context(), s.cfg.HistoryLimit)
	if err != nil {
		s.logger.Warn("listing scans", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}
	writeJSON(w, http.StatusOK, scans)
}

// lookup loads a scan and writes the 400/404/500 response on failure.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*database.ScanRecord, bool) {
	id, err := scanID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	rec, err := s.cfg.Store.Get(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Scan %d not found", id))
		return nil, false
	case err != nil:
		s.logger.Warn("loading scan", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load scan")
		return nil, false
	}
	return rec, true
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{
		ScanID:     rec.ID,
		DurationMs: rec.DurationMs,
		Report:     rec.Report,
	})
}

func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	id, err := scanID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.cfg.Store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Scan %d not found", id))
		return
	case err != nil:
		s.logger.Warn("deleting scan", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete scan")
		return
	}

	s.logger.Info("deleted scan", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if _, err := report.NewWriter(format, &buf).Write(rec.Report); err != nil {
		s.logger.Error("rendering report", "id", rec.ID, "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.FileName(rec.Report.URL, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cfg.Store.Stats(r.Context())
	if err != nil {
		s.logger.Warn("computing stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
