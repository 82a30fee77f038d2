// Package api exposes block analysis and health over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/indexing/health"
	"github.com/vietddude/tracer/internal/indexing/match"
	"github.com/vietddude/tracer/internal/infra/chain"
)

// Analyzer is the analysis entry point the server calls.
type Analyzer interface {
	AnalyzeBlockWith(ctx context.Context, id domain.BlockID, cfg match.Config) (*domain.BlockResult, error)
}

// HealthChecker produces health reports.
type HealthChecker interface {
	CheckHealth(ctx context.Context) *health.HealthReport
}

// Server provides the HTTP endpoints.
type Server struct {
	analyzer Analyzer
	monitor  HealthChecker
	filter   match.Config
	server   *http.Server
	log      *slog.Logger
}

// NewServer creates a new server. filter is the default applied before
// query parameter overrides.
func NewServer(analyzer Analyzer, monitor HealthChecker, filter match.Config, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		analyzer: analyzer,
		monitor:  monitor,
		filter:   filter,
		log:      slog.Default().With("component", "api"),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	mux.HandleFunc("GET /blocks/{id}/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/detailed", s.handleDetailed)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type ctxKey struct{}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := domain.BlockID(r.PathValue("id"))
	log := s.log.With("request_id", requestID(r.Context()), "block", id)

	cfg, err := s.filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.analyzer.AnalyzeBlockWith(r.Context(), id, cfg)
	if err != nil {
		status := http.StatusInternalServerError
		var ce *chain.ChainError
		switch {
		case errors.As(err, &ce):
			status = http.StatusBadGateway
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		}
		log.Error("analysis failed", "error", err, "status", status)
		writeError(w, status, err.Error())
		return
	}
	if result == nil {
		log.Debug("block not found")
		writeError(w, http.StatusNotFound, "block not found")
		return
	}

	log.Info("block analyzed",
		"events", len(result.Events),
		"transfers", len(result.Transfers),
		"duration", time.Since(start))
	writeJSON(w, http.StatusOK, result)
}

// filterFromQuery overrides the default filter per field.
func (s *Server) filterFromQuery(r *http.Request) (match.Config, error) {
	cfg := s.filter
	q := r.URL.Query()

	if v := q.Get("event"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid event value %q", v)
		}
		cfg.Event = b
	}
	if v := q.Get("transfer"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid transfer value %q", v)
		}
		cfg.Transfer = b
	}
	if q.Has("address") {
		cfg.Address = splitList(q["address"])
	}
	if q.Has("contracts") {
		cfg.Contracts = splitList(q["contracts"])
	}
	return cfg, nil
}

// splitList accepts both repeated and comma-separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())

	status := http.StatusOK
	if report.SystemStatus == health.StatusCritical {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": string(report.SystemStatus)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.CheckHealth(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
