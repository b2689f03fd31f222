package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/machinestate/pkg/collector"
	"github.com/NVIDIA/machinestate/pkg/config"
	"github.com/NVIDIA/machinestate/pkg/defaults"
	"github.com/NVIDIA/machinestate/pkg/k8s/agent"
	"github.com/NVIDIA/machinestate/pkg/k8s/client"
	"github.com/NVIDIA/machinestate/pkg/serializer"
	"github.com/NVIDIA/machinestate/pkg/snapshotter"
)

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Capture a snapshot of the current machine state",
		Description: `Collects the built-in groups (os, kernel, cpu, memory, host, systemd) and any
groups declared in a definitions file, and writes them as one snapshot.

Sources that cannot be read are reported as null values and listed under
"failures"; they never abort the snapshot.

# Examples

Capture everything as YAML to stdout:
  machinestate snapshot

Capture selected groups including extended sources:
  machinestate snapshot --group os,cpu --extended

Drop identifying values and write to a ConfigMap:
  machinestate snapshot --anon -o cm://gpu-operator/machinestate

Add groups from a definitions file:
  machinestate snapshot --config groups.yaml --format json`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "extended",
				Aliases: []string{"e"},
				Usage:   "Include extended (expensive or verbose) sources",
			},
			&cli.BoolFlag{
				Name:    "anon",
				Aliases: []string{"a"},
				Usage:   "Drop sensitive values such as hostname and machine-id",
			},
			&cli.StringSliceFlag{
				Name:    "group",
				Aliases: []string{"g"},
				Usage:   "Built-in group to collect, repeatable or comma separated (default: all)",
			},
			&cli.StringSliceFlag{
				Name:  "service",
				Usage: "systemd unit reported by the systemd group, repeatable (default: containerd, docker, kubelet)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a group definitions file",
				Sources: cli.EnvVars(config.EnvConfig),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaults.CollectorTimeout,
				Usage: "Maximum time for the whole collection",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Value: defaults.CollectorConcurrency,
				Usage: "Number of groups collected in parallel",
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
			// agent flags
			&cli.BoolFlag{
				Name:  "deploy-agent",
				Usage: "Capture the snapshot on a cluster node by running a Kubernetes Job",
			},
			&cli.StringFlag{
				Name:    "namespace",
				Aliases: []string{"n"},
				Value:   agent.DefaultNamespace,
				Usage:   "Namespace of the agent Job and its snapshot ConfigMap",
			},
			&cli.StringFlag{
				Name:  "image",
				Value: agent.DefaultImage,
				Usage: "Container image of the agent",
			},
			&cli.StringSliceFlag{
				Name:  "node-selector",
				Usage: "Node selector for the agent (format: key=value, can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "toleration",
				Usage: "Toleration for the agent (format: key=value:effect, can be repeated)",
			},
			&cli.DurationFlag{
				Name:  "agent-timeout",
				Value: defaults.AgentTimeout,
				Usage: "Maximum time to wait for the agent Job",
			},
			&cli.BoolFlag{
				Name:  "cleanup-rbac",
				Usage: "Remove the agent ServiceAccount, Role and RoleBinding afterwards",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			if cmd.Bool("deploy-agent") {
				return runAgent(ctx, cmd, outFormat)
			}

			n, err := snapshotterFromCmd(cmd)
			if err != nil {
				return err
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
			n.Serializer = ser

			return n.Measure(ctx)
		},
	}
}

// snapshotterFromCmd builds a NodeSnapshotter from the snapshot flags.
func snapshotterFromCmd(cmd *cli.Command) (*snapshotter.NodeSnapshotter, error) {
	factory := collector.NewDefaultFactory()
	factory.Version = version
	if services := splitList(cmd.StringSlice("service")); len(services) > 0 {
		factory.SystemDServices = services
	}

	n := &snapshotter.NodeSnapshotter{
		Version:     version,
		Factory:     factory,
		Groups:      splitList(cmd.StringSlice("group")),
		Extended:    cmd.Bool("extended"),
		Anon:        cmd.Bool("anon"),
		Timeout:     cmd.Duration("timeout"),
		Concurrency: int(cmd.Int("concurrency")),
	}

	if path := cmd.String("config"); path != "" {
		defs, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load group definitions: %w", err)
		}
		n.Definitions = defs
	}

	return n, nil
}

// newSerializer opens the --output destination. ConfigMap destinations use
// the --kubeconfig client when one is given.
func newSerializer(cmd *cli.Command, format serializer.Format) (serializer.Serializer, error) {
	ser, err := serializer.NewFileWriterOrStdout(format, cmd.String("output"))
	if err != nil {
		return nil, err
	}

	if cm, ok := ser.(*serializer.ConfigMapWriter); ok {
		cs, err := kubeClient(cmd)
		if err != nil {
			return nil, err
		}
		if cs != nil {
			cm.WithClient(cs)
		}
	}

	return ser, nil
}

// kubeClient returns a client for --kubeconfig, or nil when the flag is unset.
func kubeClient(cmd *cli.Command) (kubernetes.Interface, error) {
	kubeconfig := cmd.String("kubeconfig")
	if kubeconfig == "" {
		return nil, nil
	}
	cs, _, err := client.BuildKubeClient(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubernetes client: %w", err)
	}
	return cs, nil
}
