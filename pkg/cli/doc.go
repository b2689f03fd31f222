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

// Package cli implements the command-line interface for machinestate.
//
// # Overview
//
// The machinestate CLI captures the state of the current machine (OS release,
// kernel parameters, CPU, memory, host identity and systemd units) as a
// structured key/value snapshot, and serves the same snapshots over HTTP.
//
// # Commands
//
// snapshot - Capture a snapshot (default command):
//
//	machinestate snapshot [--group NAME]... [--extended] [--anon]
//	machinestate snapshot --config groups.yaml --output snapshot.yaml
//	machinestate snapshot --output cm://namespace/configmap-name
//
// Sources that cannot be read are reported as null values and listed under
// failures. Unknown group names fail with a "did you mean" hint.
//
// show - Print a previously captured snapshot:
//
//	machinestate show --snapshot snapshot.yaml --format table
//
// groups - List built-in and configured groups with their source counts:
//
//	machinestate groups --config groups.yaml
//
// serve - Run the HTTP API:
//
//	machinestate serve --port 8080
//
// # Global Flags
//
//	--debug        Enable debug logging
//	--log-json     Output logs in JSON format
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Output Formats
//
// YAML (default), JSON, or a flattened FIELD/VALUE table for terminals.
//
// # Environment Variables
//
//	LOG_LEVEL            Set logging verbosity (debug, info, warn, error)
//	MACHINESTATE_CONFIG  Group definitions file
//	NODE_NAME            Node name recorded in snapshot metadata
//	KUBECONFIG           Path to kubeconfig file for ConfigMap URIs
//	PORT                 Listen port of serve
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//	2  Context canceled or timeout
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/machinestate/pkg/cli.version=1.0.0'"
package cli
