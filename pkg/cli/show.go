package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/machinestate/pkg/serializer"
	"github.com/NVIDIA/machinestate/pkg/snapshotter"
)

func showCmd() *cli.Command {
	return &cli.Command{
		Name:                  "show",
		EnableShellCompletion: true,
		Usage:                 "Print a previously captured snapshot",
		Description: `Loads a snapshot from a file or ConfigMap and prints it in another format.

# Examples

  machinestate show --snapshot snapshot.yaml --format table
  machinestate show -s cm://gpu-operator/machinestate -t json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "snapshot",
				Aliases:  []string{"s"},
				Required: true,
				Usage:    "Snapshot file path or ConfigMap URI (cm://namespace/name)",
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			cs, err := kubeClient(cmd)
			if err != nil {
				return err
			}

			path := cmd.String("snapshot")
			snap, err := serializer.FromFileWithClient[snapshotter.Snapshot](ctx, path, cs)
			if err != nil {
				return fmt.Errorf("failed to load snapshot from %q: %w", path, err)
			}
			if snap.Kind != snapshotter.Kind {
				return fmt.Errorf("%q is not a snapshot (kind %q)", path, snap.Kind)
			}

			ser, err := newSerializer(cmd, outFormat)
			if err != nil {
				return err
			}
			defer func() {
				if err := ser.Close(); err != nil {
					slog.Warn("failed to close serializer", "error", err)
				}
			}()

			return ser.Serialize(ctx, snap)
		},
	}
}
