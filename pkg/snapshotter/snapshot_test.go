package snapshotter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/machinestate/pkg/collector"
	"github.com/NVIDIA/machinestate/pkg/config"
	"github.com/NVIDIA/machinestate/pkg/infogroup"
	"github.com/NVIDIA/machinestate/pkg/serializer"
)

// fakeFactory builds constant-only groups so snapshots are deterministic.
type fakeFactory struct {
	missing string
}

func (f *fakeFactory) Names() []string {
	return []string{"alpha", "beta"}
}

func (f *fakeFactory) Create(names []string, opts ...infogroup.Option) ([]*infogroup.Group, error) {
	if len(names) == 0 {
		names = f.Names()
	}
	var groups []*infogroup.Group
	for _, name := range names {
		if name != "alpha" && name != "beta" {
			return nil, fmt.Errorf("%w %q", collector.ErrUnknownGroup, name)
		}
		g := infogroup.New(append([]infogroup.Option{infogroup.WithName(name), infogroup.WithRegistry(nil)}, opts...)...)
		g.Constants["name"] = name
		g.Constants["secret"] = "s3cr3t"
		g.Sensitive = []string{"secret"}
		if f.missing != "" {
			g.Files["missing"] = infogroup.File(f.missing)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func TestNodeSnapshotter_Collect(t *testing.T) {
	t.Setenv("NODE_NAME", "node-under-test")

	n := &NodeSnapshotter{
		Version: "v1.0.0",
		Factory: &fakeFactory{missing: filepath.Join(t.TempDir(), "missing")},
		Options: []infogroup.Option{infogroup.WithRegistry(nil)},
	}

	snap, err := n.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Kind, snap.Kind)
	assert.Equal(t, FullAPIVersion, snap.APIVersion)
	assert.Equal(t, "v1.0.0", snap.Metadata[MetadataSnapshotVersion])
	assert.Equal(t, "node-under-test", snap.Metadata[MetadataSourceNode])
	assert.Equal(t, "false", snap.Metadata[MetadataAnon])
	assert.NotEmpty(t, snap.Metadata[MetadataSnapshotID])

	assert.Equal(t, map[string]any{"name": "alpha", "secret": "s3cr3t", "missing": nil}, snap.State["alpha"])
	assert.Contains(t, snap.State, "beta")
	assert.Contains(t, snap.Failures, "alpha.missing")
	assert.Contains(t, snap.Failures, "beta.missing")
}

func TestNodeSnapshotter_SelectedGroupsAndAnon(t *testing.T) {
	n := &NodeSnapshotter{
		Factory: &fakeFactory{},
		Groups:  []string{"beta"},
		Anon:    true,
		Options: []infogroup.Option{infogroup.WithRegistry(nil)},
	}

	snap, err := n.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"beta": map[string]any{"name": "beta"}}, snap.State)
	assert.Empty(t, snap.Failures)
	assert.Equal(t, "true", snap.Metadata[MetadataAnon])
}

func TestNodeSnapshotter_Definitions(t *testing.T) {
	defs, err := config.Parse([]byte(`
groups:
  - name: custom
    commands:
      greeting: { command: [echo, hi] }
  - constants:
      site: lab-1
`))
	require.NoError(t, err)

	n := &NodeSnapshotter{
		Factory:     &fakeFactory{},
		Groups:      []string{"alpha"},
		Definitions: defs,
		Options:     []infogroup.Option{infogroup.WithRegistry(nil)},
	}

	snap, err := n.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"greeting": "hi"}, snap.State["custom"])
	assert.Equal(t, "lab-1", snap.State["site"], "unnamed groups merge flat")
	assert.Contains(t, snap.State, "alpha")
}

func TestNodeSnapshotter_NameClash(t *testing.T) {
	n := &NodeSnapshotter{
		Factory:     &fakeFactory{},
		Definitions: []config.Definition{{Name: "alpha"}},
		Options:     []infogroup.Option{infogroup.WithRegistry(nil)},
	}

	_, err := n.Collect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, infogroup.ErrConfiguration)
}

func TestNodeSnapshotter_Canceled(t *testing.T) {
	n := &NodeSnapshotter{
		Factory: &fakeFactory{},
		Options: []infogroup.Option{infogroup.WithRegistry(nil)},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNodeSnapshotter_Measure(t *testing.T) {
	var buf bytes.Buffer
	n := &NodeSnapshotter{
		Version:    "dev",
		Factory:    &fakeFactory{},
		Options:    []infogroup.Option{infogroup.WithRegistry(nil)},
		Serializer: serializer.NewWriter(serializer.FormatJSON, &buf),
	}

	require.NoError(t, n.Measure(context.Background()))

	var snap Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &snap))
	assert.Equal(t, Kind, snap.Kind)
	assert.Len(t, snap.State, 2)
}

func TestSnapshotFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")

	ser, err := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
	require.NoError(t, err)

	n := &NodeSnapshotter{
		Version:    "v2",
		Factory:    &fakeFactory{},
		Options:    []infogroup.Option{infogroup.WithRegistry(nil)},
		Serializer: ser,
	}
	require.NoError(t, n.Measure(context.Background()))
	require.NoError(t, ser.Close())

	snap, err := SnapshotFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "v2", snap.Metadata[MetadataSnapshotVersion])
	assert.Equal(t, "alpha", snap.State["alpha"].(map[string]any)["name"])

	_, err = SnapshotFromFile(context.Background(), filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
