// Package api serves the imported data over a read-only HTTP interface.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"github.com/mkoziy/paddock/internal/repositories"
)

const defaultRunsLimit = 20

// Server wires HTTP routes over the repositories.
type Server struct {
	db      bun.IDB
	metrics http.Handler
}

// NewServer creates the API server. metrics may be nil.
func NewServer(db bun.IDB, metrics http.Handler) *Server {
	return &Server{db: db, metrics: metrics}
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /seasons", s.handleSeasons)
	mux.HandleFunc("GET /seasons/{year}/events", s.handleSeasonEvents)
	mux.HandleFunc("GET /seasons/{year}/drivers", s.handleSeasonDrivers)
	mux.HandleFunc("GET /seasons/{year}/rounds/{round}/sessions/{type}", s.handleFindSession)
	mux.HandleFunc("GET /sessions/{id}/drivers", s.handleSessionDrivers)
	mux.HandleFunc("GET /sessions/{id}/laps", s.handleSessionLaps)
	mux.HandleFunc("GET /import-runs", s.handleImportRuns)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return logRequests(mux)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeFailure maps repository errors onto status codes.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	slog.Error("api request failed", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func pathInt(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return v, err == nil && v > 0
}

func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("http request",
			"method", r.Method, "path", r.URL.Path,
			"status", rec.status, "elapsed", time.Since(start))
	})
}
