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

// Package os declares the operating system groups.
//
// # Groups
//
// os - Operating system identification:
//   - id, name, version_id, pretty_name: from /etc/os-release
//   - kernel_release: output of "uname -r"
//   - uptime_seconds: first field of /proc/uptime
//   - cmdline: full kernel command line (extended, sensitive)
//
// The os group has a named "boot" child holding selected kernel boot
// parameters from /proc/cmdline (iommu, intel_iommu, amd_iommu, hugepages,
// default_hugepagesz, numa_balancing, root). Parameters that are not set are
// reported as "". "root" is sensitive and dropped in anonymous mode.
//
// kernel - Kernel runtime parameters:
//   - selected sysctl values under /proc/sys (pid_max, swappiness, ...)
//   - tainted: /proc/sys/kernel/tainted
//   - modules_loaded: number of entries in /proc/modules (extended)
//   - modules: names of loaded modules (extended)
//
// # Usage
//
//	g := os.NewOSGroup(infogroup.WithExtended(true))
//	if err := g.Generate(); err != nil {
//	    return err
//	}
//	if err := g.Update(ctx); err != nil {
//	    return err
//	}
//	fmt.Println(g.Get()["pretty_name"])
package os
