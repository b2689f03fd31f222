package snapshotter

import (
	"context"

	"github.com/NVIDIA/machinestate/pkg/header"
)

// Snapshotter is the interface that wraps the Measure method.
// Measure collects a snapshot and writes it to the configured destination.
type Snapshotter interface {
	Measure(ctx context.Context) error
}

// Snapshot is the serialized state of one machine.
type Snapshot struct {
	header.Header `json:",inline" yaml:",inline"`

	// State holds one entry per named group and the keys of unnamed groups.
	State map[string]any `json:"state" yaml:"state"`

	// Failures maps "<group>.<key>" to the reason the key is null in State.
	Failures map[string]string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// NewSnapshot returns an empty snapshot with its header set.
func NewSnapshot() *Snapshot {
	s := &Snapshot{State: make(map[string]any)}
	s.Set(Kind)
	return s
}
