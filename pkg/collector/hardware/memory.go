package hardware

import (
	"path/filepath"

	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

// meminfoKeys maps result keys onto /proc/meminfo fields reported in kB.
var meminfoKeys = map[string]string{
	"total_bytes":      "MemTotal",
	"free_bytes":       "MemFree",
	"available_bytes":  "MemAvailable",
	"swap_total_bytes": "SwapTotal",
}

// NewMemoryGroup creates the memory group.
func NewMemoryGroup(opts ...infogroup.Option) *infogroup.Group {
	return newMemoryGroup("/", opts...)
}

func newMemoryGroup(root string, opts ...infogroup.Option) *infogroup.Group {
	g := infogroup.New(append([]infogroup.Option{infogroup.WithName("memory")}, opts...)...)

	meminfo := filepath.Join(root, "proc/meminfo")
	for key, field := range meminfoKeys {
		g.Files[key] = infogroup.File(meminfo).
			Match(`(?m)^` + field + `:\s+(\d+) kB$`).
			Convert(infogroup.KiB)
	}

	g.Files["hugepages_total"] = infogroup.File(meminfo).
		Match(`(?m)^HugePages_Total:\s+(\d+)$`).
		Convert(infogroup.Int).
		Extended()
	g.Files["hugepage_size"] = infogroup.File(meminfo).
		Match(`(?m)^Hugepagesize:\s+(\d+) kB$`).
		Convert(infogroup.KiB).
		Extended()

	return g
}
