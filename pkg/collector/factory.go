package collector

import (
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/NVIDIA/machinestate/pkg/collector/hardware"
	"github.com/NVIDIA/machinestate/pkg/collector/host"
	"github.com/NVIDIA/machinestate/pkg/collector/os"
	"github.com/NVIDIA/machinestate/pkg/collector/systemd"
	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

// Group names built by DefaultFactory.
const (
	GroupOS      = "os"
	GroupKernel  = "kernel"
	GroupCPU     = "cpu"
	GroupMemory  = "memory"
	GroupHost    = "host"
	GroupSystemD = "systemd"
)

// maxSuggestionDistance bounds the edit distance of "did you mean" hints.
const maxSuggestionDistance = 3

// DefaultFactory creates groups with production dependencies.
type DefaultFactory struct {
	// SystemDServices lists the units reported by the systemd group.
	SystemDServices []string

	// Version is reported by the host group.
	Version string
}

// NewDefaultFactory creates a factory with default settings.
func NewDefaultFactory() *DefaultFactory {
	return &DefaultFactory{
		SystemDServices: []string{
			"containerd.service",
			"docker.service",
			"kubelet.service",
		},
		Version: "dev",
	}
}

// Names returns the built-in group names.
func (f *DefaultFactory) Names() []string {
	return []string{GroupOS, GroupKernel, GroupCPU, GroupMemory, GroupHost, GroupSystemD}
}

// Create builds the named groups in the order given, or every group when
// names is empty. Duplicate names are built once. An unknown name fails with
// ErrUnknownGroup and a suggestion when a close match exists.
func (f *DefaultFactory) Create(names []string, opts ...infogroup.Option) ([]*infogroup.Group, error) {
	if len(names) == 0 {
		names = f.Names()
	}

	groups := make([]*infogroup.Group, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		g, err := f.create(name, opts...)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	return groups, nil
}

func (f *DefaultFactory) create(name string, opts ...infogroup.Option) (*infogroup.Group, error) {
	switch name {
	case GroupOS:
		return os.NewOSGroup(opts...), nil
	case GroupKernel:
		return os.NewKernelGroup(opts...), nil
	case GroupCPU:
		return hardware.NewCPUGroup(opts...), nil
	case GroupMemory:
		return hardware.NewMemoryGroup(opts...), nil
	case GroupHost:
		return host.NewHostGroup(f.Version, opts...), nil
	case GroupSystemD:
		return systemd.NewSystemDGroup(f.SystemDServices, opts...), nil
	}

	if s := Suggest(name, f.Names()); s != "" {
		return nil, fmt.Errorf("%w %q, did you mean %q?", ErrUnknownGroup, name, s)
	}
	return nil, fmt.Errorf("%w %q, available: %v", ErrUnknownGroup, name, f.Names())
}

// Suggest returns the candidate closest to name, or "" if none is within a
// small edit distance.
func Suggest(name string, candidates []string) string {
	best := ""
	bestDistance := maxSuggestionDistance + 1

	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}
