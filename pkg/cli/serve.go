package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/machinestate/pkg/api"
	"github.com/NVIDIA/machinestate/pkg/config"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve snapshots over HTTP",
		Description: `Starts the API server. GET /v1/state collects a fresh snapshot; query
parameters extended, anon, group and format mirror the snapshot flags.
/health, /ready and /metrics are served as well.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: PORT env or 8080)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a group definitions file",
				Sources: cli.EnvVars(config.EnvConfig),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return api.Serve(ctx, api.Options{
				ConfigPath: cmd.String("config"),
				Port:       int(cmd.Int("port")),
				Version:    version,
			})
		},
	}
}
