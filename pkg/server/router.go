package server

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NVIDIA/machinestate/pkg/serializer"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Default handler
	mux.HandleFunc("/", s.handleDefault)

	// System endpoints (no rate limiting)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	// API endpoints with middleware
	for path, h := range s.handlers {
		mux.HandleFunc(path, s.withMiddleware(h))
	}

	return mux
}

// routes lists the registered API routes, sorted.
func (s *Server) routes() []string {
	routes := make([]string, 0, len(s.handlers)+3)
	for path := range s.handlers {
		routes = append(routes, "GET "+path)
	}
	slices.Sort(routes)
	return append(routes, "GET /health", "GET /ready", "GET /metrics")
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handling default route",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	if r.URL.Path != "/" {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound,
			"route not found", false, map[string]any{"path": r.URL.Path})
		return
	}

	resp := struct {
		Name      string   `json:"name" yaml:"name"`
		Version   string   `json:"version" yaml:"version"`
		Ready     bool     `json:"ready" yaml:"ready"`
		Timestamp string   `json:"timestamp" yaml:"timestamp"`
		Routes    []string `json:"routes" yaml:"routes"`
	}{
		Name:      s.name,
		Version:   s.version,
		Ready:     s.isReady(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Routes:    s.routes(),
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}
