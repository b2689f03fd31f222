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

// Package infogroup is the collection engine of machinestate.
//
// A [Group] declares what to collect as named sources, how to extract a value
// from each source, and produces a key/value result in two explicit phases.
//
// # Sources
//
// Three source categories map a result key to a source:
//
//   - Files: [File] reads a file, optionally narrowed by a pattern and converted
//   - Commands: [Command] runs an executable without a shell and reads stdout
//   - Constants: values stored verbatim
//
// Example:
//
//	g := infogroup.New(infogroup.WithName("memory"))
//	g.Files["MemTotal"] = infogroup.File("/proc/meminfo").
//		Match(`MemTotal:\s+(\d+) kB`).
//		Convert(infogroup.KiB)
//	g.Commands["Kernel"] = infogroup.Command("uname", "-r")
//	g.Constants["Unit"] = "bytes"
//
// # Lifecycle
//
// [Group.Generate] validates every source and resolves it into a normalized
// descriptor, recursing into children. It returns a [*ConfigurationError] for
// malformed declarations and is safe to call repeatedly.
//
// [Group.Update] reads every source one at a time and then updates the
// children. A source that fails (missing file, failing command, pattern that
// does not match, converter error) is stored as a nil value and its reason is
// available from [Group.Failures]; the remaining keys are still collected.
//
// [Group.Get] returns the merged result of the group and its children.
//
//	if err := g.Generate(); err != nil {
//	    return err
//	}
//	if err := g.Update(ctx); err != nil {
//	    return err
//	}
//	state := g.Get()
//
// # Composition
//
// Children are owned by their parent. The result of a named child is nested
// under its name; unnamed children are merged flat. The parent's own keys
// take precedence, then earlier children over later ones. Two children with
// the same name are rejected by Generate.
//
// # Instance Registry
//
// Every group built with [New] is recorded in [DefaultRegistry] (or the
// registry given by [WithRegistry]). The registry holds weak references and
// supports listing, lookup by name and reset; it plays no part in collection.
package infogroup
