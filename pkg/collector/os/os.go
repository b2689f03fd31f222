package os

import (
	"path/filepath"

	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

// osRelease maps result keys onto /etc/os-release variables.
var osRelease = map[string]string{
	"id":          "ID",
	"name":        "NAME",
	"version_id":  "VERSION_ID",
	"pretty_name": "PRETTY_NAME",
}

// bootParams are the kernel boot parameters reported by the boot child.
var bootParams = []string{
	"iommu",
	"intel_iommu",
	"amd_iommu",
	"hugepages",
	"default_hugepagesz",
	"numa_balancing",
	"root",
}

// Keys to filter out from boot parameters in anonymous mode
var sensitiveBootKeys = []string{
	"root",
}

// the raw kernel command line carries root= as well
var sensitiveOSKeys = []string{
	"cmdline",
}

// NewOSGroup creates the os group.
func NewOSGroup(opts ...infogroup.Option) *infogroup.Group {
	return newOSGroup("/", opts...)
}

func newOSGroup(root string, opts ...infogroup.Option) *infogroup.Group {
	g := infogroup.New(append([]infogroup.Option{infogroup.WithName("os")}, opts...)...)
	g.Sensitive = sensitiveOSKeys

	release := filepath.Join(root, "etc/os-release")
	for key, variable := range osRelease {
		// values may be quoted: NAME="Ubuntu" or ID=ubuntu
		g.Files[key] = infogroup.File(release).Match(`(?m)^` + variable + `="?([^"\n]*)"?$`)
	}

	g.Commands["kernel_release"] = infogroup.Command("uname", "-r")
	g.Files["uptime_seconds"] = infogroup.File(filepath.Join(root, "proc/uptime")).
		Match(`^(\d+(?:\.\d+)?)`).
		Convert(infogroup.Float)
	g.Files["cmdline"] = infogroup.File(filepath.Join(root, "proc/cmdline")).Extended()

	g.AddChild(newBootGroup(root, opts...))

	return g
}

func newBootGroup(root string, opts ...infogroup.Option) *infogroup.Group {
	g := infogroup.New(append([]infogroup.Option{infogroup.WithName("boot")}, opts...)...)
	g.Sensitive = sensitiveBootKeys

	cmdline := filepath.Join(root, "proc/cmdline")
	for _, param := range bootParams {
		// split on the first '=' only, "root=PARTUUID=xyz" yields "PARTUUID=xyz";
		// an absent parameter yields ""
		g.Files[param] = infogroup.File(cmdline).Match(`^(?:.*?(?:^|\s)` + param + `=(\S+))?`)
	}

	return g
}
