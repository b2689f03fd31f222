// Package systemd declares the systemd group.
//
// The group has one named child per configured unit. Every child reports the
// unit's ActiveState, SubState and UnitFileState as returned by
// "systemctl show", plus MainPID in extended mode. Units that do not exist
// report "inactive"/"dead" like systemctl itself does.
package systemd

import (
	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

// properties maps result keys onto systemctl unit properties.
var properties = map[string]string{
	"active_state":    "ActiveState",
	"sub_state":       "SubState",
	"unit_file_state": "UnitFileState",
}

// NewSystemDGroup creates the systemd group for the given units.
func NewSystemDGroup(units []string, opts ...infogroup.Option) *infogroup.Group {
	g := infogroup.New(append([]infogroup.Option{infogroup.WithName("systemd")}, opts...)...)

	for _, unit := range units {
		g.AddChild(newUnitGroup(unit, opts...))
	}

	return g
}

func newUnitGroup(unit string, opts ...infogroup.Option) *infogroup.Group {
	g := infogroup.New(append([]infogroup.Option{infogroup.WithName(unit)}, opts...)...)

	for key, prop := range properties {
		g.Commands[key] = show(unit, prop)
	}
	g.Commands["main_pid"] = show(unit, "MainPID").Convert(infogroup.Int).Extended()

	return g
}

func show(unit, property string) infogroup.CommandSource {
	return infogroup.Command("systemctl", "show", unit, "--no-pager", "--property="+property).
		Match(`(?m)^` + property + `=(.*)$`)
}
