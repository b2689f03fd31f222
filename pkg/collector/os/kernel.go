package os

import (
	"path/filepath"
	"strings"

	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

// sysctlKeys maps result keys onto paths under /proc/sys.
var sysctlKeys = map[string]string{
	"pid_max":             "kernel/pid_max",
	"threads_max":         "kernel/threads-max",
	"numa_balancing":      "kernel/numa_balancing",
	"swappiness":          "vm/swappiness",
	"overcommit_memory":   "vm/overcommit_memory",
	"max_map_count":       "vm/max_map_count",
	"nr_hugepages":        "vm/nr_hugepages",
	"file_max":            "fs/file-max",
	"inotify_max_watches": "fs/inotify/max_user_watches",
}

// NewKernelGroup creates the kernel group.
func NewKernelGroup(opts ...infogroup.Option) *infogroup.Group {
	return newKernelGroup("/", opts...)
}

func newKernelGroup(root string, opts ...infogroup.Option) *infogroup.Group {
	g := infogroup.New(append([]infogroup.Option{infogroup.WithName("kernel")}, opts...)...)

	sys := filepath.Join(root, "proc/sys")
	for key, path := range sysctlKeys {
		g.Files[key] = infogroup.File(filepath.Join(sys, path)).
			Match(`^\s*(-?\d+)`).
			Convert(infogroup.Int)
	}
	g.Files["tainted"] = infogroup.File(filepath.Join(sys, "kernel/tainted")).
		Match(`^\s*(\d+)`).
		Convert(infogroup.Int)

	modules := filepath.Join(root, "proc/modules")
	g.Files["modules_loaded"] = infogroup.File(modules).
		Match(`(?s)^(.*)$`).
		Convert(countModules).
		Extended()
	g.Files["modules"] = infogroup.File(modules).
		Match(`(?s)^(.*)$`).
		Convert(moduleNames).
		Extended()

	return g
}

// moduleNames returns the first field of every /proc/modules line.
func moduleNames(s string) (any, error) {
	var names []string
	for line := range strings.Lines(s) {
		if fields := strings.Fields(line); len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	return names, nil
}

func countModules(s string) (any, error) {
	names, _ := moduleNames(s)
	return len(names.([]string)), nil
}
