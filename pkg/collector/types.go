// Package collector builds the built-in groups that make up a machine
// snapshot. Each group lives in its own subpackage and is declared with
// infogroup sources; the Factory selects and instantiates them by name.
package collector

import (
	"errors"

	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

// ErrUnknownGroup is returned by Factory.Create for names it cannot build.
var ErrUnknownGroup = errors.New("unknown group")

// Factory creates the built-in groups.
// This interface enables dependency injection for testing.
type Factory interface {
	// Names lists the groups the factory can build, in snapshot order.
	Names() []string

	// Create builds the named groups, or all of them when names is empty.
	// opts are applied to every created group and its children.
	Create(names []string, opts ...infogroup.Option) ([]*infogroup.Group, error)
}
