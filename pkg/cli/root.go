package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/machinestate/pkg/logging"
	"github.com/NVIDIA/machinestate/pkg/serializer"
)

const name = "machinestate"

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/machinestate/pkg/cli.version=1.0.0"
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage: `Output destination: file path, "-" for stdout (default),
	or ConfigMap URI (cm://namespace/name).`,
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   "output format (json, yaml, table)",
	}
}

func kubeconfigFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "Path to kubeconfig file used for ConfigMap URIs (overrides KUBECONFIG env)",
	}
}

// Execute runs the CLI and exits the process on error.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Collect machine state as structured key/value snapshots",
		Version:               fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		EnableShellCompletion: true,
		ShellComplete:         commandLister,
		DefaultCommand:        "snapshot",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Output logs in JSON format",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"), cmd.Bool("log-json"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			snapshotCmd(),
			showCmd(),
			groupsCmd(),
			serveCmd(),
		},
	}
}

// exitCode maps cancellation and timeouts to 2, anything else to 1.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 2
	}
	return 1
}

// setupLogging installs the default logger. LOG_LEVEL applies unless
// debug is requested.
func setupLogging(debug, jsonLogs bool) {
	level := logging.LevelFromEnv()
	if debug {
		level = slog.LevelDebug
	}
	if jsonLogs {
		slog.SetDefault(logging.NewStructuredLogger(os.Stderr, name, version, level))
		return
	}
	logging.SetDefaultCLILogger(level)
}

// commandLister prints the visible subcommands for shell completion.
func commandLister(_ context.Context, cmd *cli.Command) {
	if cmd == nil {
		return
	}
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	for _, c := range cmd.Commands {
		if c.Hidden {
			continue
		}
		fmt.Fprintln(w, c.Name)
	}
}
