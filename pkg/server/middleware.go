package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const contextKeyRequestID contextKey = "requestID"

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-Id"

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMiddleware wraps an API handler with request ID, panic recovery,
// rate limiting, API version negotiation and access logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return s.requestIDMiddleware(
		s.recoveryMiddleware(
			s.rateLimitMiddleware(
				s.versionMiddleware(
					s.loggingMiddleware(next),
				),
			),
		),
	)
}

func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) recoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic in handler",
					"path", r.URL.Path,
					"panic", fmt.Sprint(rec),
				)
				WriteError(w, r, http.StatusInternalServerError, ErrCodeInternalError,
					"internal server error", true, nil)
			}
		}()
		next(w, r)
	}
}

func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter != nil && !s.rateLimiter.Allow() {
			w.Header().Set("Retry-After", "1")
			WriteError(w, r, http.StatusTooManyRequests, ErrCodeRateLimitExceeded,
				"rate limit exceeded", true, map[string]any{
					"limit": float64(s.config.RateLimit),
					"burst": s.config.RateLimitBurst,
				})
			return
		}
		next(w, r)
	}
}

func (s *Server) versionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderAPIVersion, negotiateAPIVersion(r))
		next(w, r)
	}
}

func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		requestID, _ := r.Context().Value(contextKeyRequestID).(string)
		slog.Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", requestID,
		)
	}
}
