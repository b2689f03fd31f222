// Package api runs the machinestate HTTP API.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/NVIDIA/machinestate/pkg/collector"
	"github.com/NVIDIA/machinestate/pkg/config"
	"github.com/NVIDIA/machinestate/pkg/logging"
	"github.com/NVIDIA/machinestate/pkg/server"
	"github.com/NVIDIA/machinestate/pkg/snapshotter"
)

const (
	name           = "machinestate-api-server"
	versionDefault = "dev"

	// StatePath serves fresh snapshots.
	StatePath = "/v1/state"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/machinestate/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Options configures Serve.
type Options struct {
	// ConfigPath is an optional group definitions file.
	ConfigPath string

	// Port overrides the configured port when positive.
	Port int

	// Version overrides the build version when set.
	Version string
}

// Handlers returns the API routes served by a snapshotter template.
func Handlers(n *snapshotter.NodeSnapshotter) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		StatePath: n.HandleSnapshot,
	}
}

// Serve starts the API server and blocks until shutdown.
// It configures logging, sets up routes, and handles graceful shutdown.
// Returns an error if the server fails to start or encounters a fatal error.
func Serve(ctx context.Context, opts Options) error {
	ver := version
	if opts.Version != "" {
		ver = opts.Version
	}

	logging.SetDefaultStructuredLogger(name, ver)
	slog.Info("starting",
		"name", name,
		"version", ver,
		"commit", commit,
		"date", date,
	)

	factory := collector.NewDefaultFactory()
	factory.Version = ver

	n := &snapshotter.NodeSnapshotter{
		Version: ver,
		Factory: factory,
	}
	if opts.ConfigPath != "" {
		defs, err := config.Load(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load group definitions: %w", err)
		}
		n.Definitions = defs
	}

	cfg := server.DefaultConfig()
	if opts.Port > 0 {
		cfg.Port = opts.Port
	}

	s := server.New(
		server.WithName(name),
		server.WithVersion(ver),
		server.WithConfig(cfg),
		server.WithHandler(Handlers(n)),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}
