// Package api exposes the pipeline over a small JSON HTTP surface.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lectern-ai/lectern/internal/rag"
)

// Server is the JSON API HTTP server.
type Server struct {
	system *rag.System
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer creates the server with all routes configured.
func NewServer(system *rag.System, logger *slog.Logger) (*Server, error) {
	if system == nil {
		return nil, errors.New("rag system is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		system: system,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/query", s.handleQuery)
	s.mux.HandleFunc("GET /api/courses", s.handleCourses)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	return s, nil
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.logging(handler)
	handler = s.recovery(handler)
	return handler
}

// logging records one line per request with method, path, status and latency.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// recovery converts handler panics into 500 responses.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic", "panic", rec, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
