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

// Package hardware declares the cpu and memory groups.
//
// cpu reads /proc/cpuinfo (model, vendor, mhz, flags), the logical CPU count
// reported by "nproc" and, in extended mode, the L3 cache size from "lscpu".
// memory reads /proc/meminfo and reports sizes in bytes.
package hardware
