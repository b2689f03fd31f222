// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/machinestate/pkg/k8s/agent"
	"github.com/NVIDIA/machinestate/pkg/k8s/client"
	"github.com/NVIDIA/machinestate/pkg/serializer"
	"github.com/NVIDIA/machinestate/pkg/snapshotter"
)

// agentConfigFromCmd maps the snapshot flags onto an agent Job. A cm://
// --output is written by the agent directly, any other output is written
// locally after the agent's default ConfigMap was read back.
func agentConfigFromCmd(cmd *cli.Command) (agent.Config, error) {
	nodeSelector, err := agent.ParseNodeSelectors(cmd.StringSlice("node-selector"))
	if err != nil {
		return agent.Config{}, fmt.Errorf("invalid --node-selector: %w", err)
	}
	tolerations, err := agent.ParseTolerations(cmd.StringSlice("toleration"))
	if err != nil {
		return agent.Config{}, fmt.Errorf("invalid --toleration: %w", err)
	}

	var args []string
	if cmd.Bool("extended") {
		args = append(args, "--extended")
	}
	if cmd.Bool("anon") {
		args = append(args, "--anon")
	}
	for _, g := range splitList(cmd.StringSlice("group")) {
		args = append(args, "--group", g)
	}
	for _, s := range splitList(cmd.StringSlice("service")) {
		args = append(args, "--service", s)
	}
	if cmd.IsSet("timeout") {
		args = append(args, "--timeout", cmd.Duration("timeout").String())
	}
	if cmd.IsSet("concurrency") {
		args = append(args, "--concurrency", strconv.Itoa(int(cmd.Int("concurrency"))))
	}

	cfg := agent.Config{
		Namespace:    cmd.String("namespace"),
		Image:        cmd.String("image"),
		Args:         args,
		NodeSelector: nodeSelector,
		Tolerations:  tolerations,
	}
	if out := cmd.String("output"); strings.HasPrefix(out, serializer.ConfigMapURIScheme) {
		cfg.Output = out
	}
	return cfg, nil
}

func runAgent(ctx context.Context, cmd *cli.Command, format serializer.Format) error {
	if cmd.String("config") != "" {
		return fmt.Errorf("--config cannot be used with --deploy-agent, the agent runs the built-in groups only")
	}

	cfg, err := agentConfigFromCmd(cmd)
	if err != nil {
		return err
	}

	cs, err := kubeClient(cmd)
	if err != nil {
		return err
	}
	if cs == nil {
		if cs, _, err = client.GetKubeClient(); err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
	}

	d := agent.NewDeployer(cs, cfg)
	cfg = d.Config()

	slog.Info("deploying agent",
		"namespace", cfg.Namespace,
		"job", cfg.JobName,
		"image", cfg.Image,
		"output", cfg.Output,
	)

	if err := d.Deploy(ctx); err != nil {
		return fmt.Errorf("failed to deploy agent: %w", err)
	}
	defer func() {
		if err := d.Cleanup(context.WithoutCancel(ctx), agent.CleanupOptions{RemoveRBAC: cmd.Bool("cleanup-rbac")}); err != nil {
			slog.Warn("failed to clean up agent", "error", err)
		}
	}()

	if err := d.WaitForCompletion(ctx, cmd.Duration("agent-timeout")); err != nil {
		return err
	}

	// the agent already wrote the requested ConfigMap
	if cfg.Output == cmd.String("output") {
		slog.Info("snapshot written", "output", cfg.Output)
		return nil
	}

	snap, err := serializer.FromFileWithClient[snapshotter.Snapshot](ctx, cfg.Output, cs)
	if err != nil {
		return fmt.Errorf("failed to read agent snapshot: %w", err)
	}

	ser, err := newSerializer(cmd, format)
	if err != nil {
		return err
	}
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	return ser.Serialize(ctx, snap)
}
