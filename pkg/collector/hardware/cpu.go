package hardware

import (
	"path/filepath"

	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

// NewCPUGroup creates the cpu group.
func NewCPUGroup(opts ...infogroup.Option) *infogroup.Group {
	return newCPUGroup("/", opts...)
}

func newCPUGroup(root string, opts ...infogroup.Option) *infogroup.Group {
	g := infogroup.New(append([]infogroup.Option{infogroup.WithName("cpu")}, opts...)...)

	cpuinfo := filepath.Join(root, "proc/cpuinfo")
	g.Files["model"] = infogroup.File(cpuinfo).Match(`(?m)^model name\s*:\s*(.+)$`)
	g.Files["vendor"] = infogroup.File(cpuinfo).Match(`(?m)^vendor_id\s*:\s*(.+)$`)
	g.Files["mhz"] = infogroup.File(cpuinfo).
		Match(`(?m)^cpu MHz\s*:\s*([\d.]+)$`).
		Convert(infogroup.Float)
	g.Files["flags"] = infogroup.File(cpuinfo).
		Match(`(?m)^flags\s*:\s*(.+)$`).
		Convert(infogroup.Fields).
		Extended()

	g.Commands["logical_cpus"] = infogroup.Command("nproc", "--all").
		Match(`(\d+)`).
		Convert(infogroup.Int)
	g.Commands["l3_cache_bytes"] = infogroup.Command("lscpu").
		Match(`(?m)^L3 cache:\s+([\d.]+ [KMG]iB)`).
		Convert(infogroup.Bytes).
		Extended()

	return g
}
