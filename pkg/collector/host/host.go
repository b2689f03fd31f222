// Package host declares the host identity group.
//
// Hostname and machine-id identify a node and are marked sensitive, so they
// are dropped when the group runs in anonymous mode.
package host

import (
	"path/filepath"
	"runtime"

	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

// Keys to filter out in anonymous mode
var sensitiveKeys = []string{
	"hostname",
	"machine_id",
	"boot_id",
}

// NewHostGroup creates the host group. version is reported as collector_version.
func NewHostGroup(version string, opts ...infogroup.Option) *infogroup.Group {
	return newHostGroup("/", version, opts...)
}

func newHostGroup(root, version string, opts ...infogroup.Option) *infogroup.Group {
	g := infogroup.New(append([]infogroup.Option{infogroup.WithName("host")}, opts...)...)
	g.Sensitive = sensitiveKeys

	g.Files["hostname"] = infogroup.File(filepath.Join(root, "proc/sys/kernel/hostname"))
	g.Files["machine_id"] = infogroup.File(filepath.Join(root, "etc/machine-id"))
	g.Files["boot_id"] = infogroup.File(filepath.Join(root, "proc/sys/kernel/random/boot_id")).Extended()

	g.Constants["goos"] = runtime.GOOS
	g.Constants["goarch"] = runtime.GOARCH
	g.Constants["collector_version"] = version

	return g
}
