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

/*
Package agent runs machinestate snapshot as a Kubernetes Job on a node.

The Job writes its snapshot to a ConfigMap (cm://namespace/name), from where
the caller reads it back with the serializer package. The pod shares the host
PID, network and IPC namespaces and mounts the host files the collectors read
(/etc/os-release, /etc/machine-id, /run/systemd).

# Deployment Strategy

RBAC resources (ServiceAccount, Role, RoleBinding) are created idempotently
and reused when they already exist. The Job is deleted and recreated for each
snapshot.

# Usage Example

	clientset, _, err := client.GetKubeClient()
	if err != nil {
		return err
	}

	d := agent.NewDeployer(clientset, agent.Config{
		Namespace:    "gpu-operator",
		Output:       "cm://gpu-operator/machinestate-snapshot",
		NodeSelector: map[string]string{"nodeGroup": "gpu"},
		Args:         []string{"--extended"},
	})

	if err := d.Deploy(ctx); err != nil {
		return err
	}
	if err := d.WaitForCompletion(ctx, 5*time.Minute); err != nil {
		return err
	}
	snap, err := serializer.FromFileWithClient[snapshotter.Snapshot](ctx, d.Config().Output, clientset)
*/
package agent
