package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultName    = "machinestate-server"
	defaultVersion = "dev"
)

// Server serves health, readiness, metrics and the registered API handlers.
type Server struct {
	name     string
	version  string
	config   *Config
	handlers map[string]http.HandlerFunc

	rateLimiter *rate.Limiter
	httpServer  *http.Server

	mu    sync.RWMutex
	ready bool
}

// Option is a functional option for configuring Server instances.
type Option func(*Server)

// WithName sets the name reported on the default route.
func WithName(name string) Option {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the version reported on the default route.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithHandler registers API handlers by path. They are wrapped with the
// request middleware.
func WithHandler(handlers map[string]http.HandlerFunc) Option {
	return func(s *Server) {
		for path, h := range handlers {
			if h != nil {
				s.handlers[path] = h
			}
		}
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// New creates a Server. Configuration defaults to DefaultConfig.
func New(opts ...Option) *Server {
	s := &Server{
		name:     defaultName,
		version:  defaultVersion,
		config:   DefaultConfig(),
		handlers: make(map[string]http.HandlerFunc),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.config.RateLimit > 0 {
		s.rateLimiter = rate.NewLimiter(s.config.RateLimit, s.config.RateLimitBurst)
	}

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(s.config.Address, strconv.Itoa(s.config.Port)),
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) setReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening", "address", ln.Addr().String())
		s.setReady(true)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.setReady(false)
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
