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

// Package defaults provides centralized configuration constants for machinestate.
//
// This package defines timeout values, size limits, and other configuration
// defaults used across the codebase. Centralizing these values ensures consistency
// and makes tuning easier.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Command timeouts: For each external command run by a command source
//   - Collector timeouts: For a complete snapshot of all groups
//   - Server timeouts: For HTTP server configuration
//   - Agent timeout: For a snapshot Job running on a cluster node
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/machinestate/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CollectorTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
// When choosing timeout values:
//
//   - Commands: 5s default, a hanging tool must not stall the whole snapshot
//   - Snapshots: 60s, respects parent context deadline
//   - Server shutdown: 30s for graceful shutdown
package defaults
