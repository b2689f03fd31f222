package serializer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

type testConfig struct {
	Name  string
	Value int
}

type testSnapshot struct {
	Kind     string            `json:"kind" yaml:"kind"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
	State    map[string]any    `json:"state" yaml:"state"`
}

func sampleSnapshot() testSnapshot {
	return testSnapshot{
		Kind:     "Snapshot",
		Metadata: map[string]string{"source-node": "node-1"},
		State: map[string]any{
			"memory": map[string]any{"total_bytes": uint64(16777216000)},
			"cpu":    map[string]any{"flags": []string{"fpu", "sse"}, "model": nil},
		},
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"snapshot.yaml", FormatYAML},
		{"/tmp/snapshot.YML", FormatYAML},
		{"snapshot.json", FormatJSON},
		{"snapshot", FormatJSON},
		{"snapshot.txt", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromPath(tt.path))
		})
	}
}

func TestMarshalTable_Snapshot(t *testing.T) {
	data, err := Marshal(FormatTable, sampleSnapshot())
	require.NoError(t, err)

	out := string(data)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "FIELD"))

	assert.Contains(t, out, "kind")
	assert.Contains(t, out, "metadata.source-node")
	assert.Contains(t, out, "state.memory.total_bytes")
	assert.Contains(t, out, "16,777,216,000")
	assert.Contains(t, out, "state.cpu.flags[1]")
	assert.Contains(t, out, "<nil>")

	// map keys are sorted
	assert.Less(t, strings.Index(out, "state.cpu"), strings.Index(out, "state.memory"))
}

func TestMarshalTable_Values(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := Marshal(FormatTable, map[string]any{
		"time":  ts,
		"bytes": []byte("raw"),
		"empty": map[string]any{},
		"skip":  struct{ Hidden string `json:"-"` }{Hidden: "x"},
	})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, ts.String())
	assert.Contains(t, out, "raw")
	assert.Contains(t, out, "empty  <empty>")
	assert.NotContains(t, out, "Hidden")
}

func TestWriter_SerializeCanceled(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, w.Serialize(ctx, testConfig{}), context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestReader_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "snapshot."+string(format))

			w, err := NewFileWriterOrStdout(format, path)
			require.NoError(t, err)
			require.NoError(t, w.Serialize(context.Background(), sampleSnapshot()))
			require.NoError(t, w.Close())

			got, err := FromFile[testSnapshot](context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, "Snapshot", got.Kind)
			assert.Equal(t, "node-1", got.Metadata["source-node"])
			assert.Contains(t, got.State, "memory")
		})
	}
}

func TestNewFileReader(t *testing.T) {
	_, err := NewFileReader(FormatJSON, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "x.txt")
	require.NoError(t, os.WriteFile(path, []byte("FIELD VALUE\n"), 0o600))
	_, err = NewFileReader(FormatTable, path)
	assert.Error(t, err)
}

func TestReader_Malformed(t *testing.T) {
	r, err := NewReader(FormatJSON, strings.NewReader("{not json"))
	require.NoError(t, err)

	var v map[string]any
	assert.Error(t, r.Deserialize(&v))
	assert.NoError(t, r.Close())
}

func TestParseConfigMapURI(t *testing.T) {
	ns, name, err := ParseConfigMapURI("cm://gpu-operator/node-1-state")
	require.NoError(t, err)
	assert.Equal(t, "gpu-operator", ns)
	assert.Equal(t, "node-1-state", name)

	for _, uri := range []string{"cm://ns", "cm:///name", "cm://", "cm://ns/a/b", "file://x"} {
		_, _, err := ParseConfigMapURI(uri)
		assert.Error(t, err, uri)
	}
}

func TestConfigMapWriter_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	cs := fake.NewClientset()

	w := NewConfigMapWriter("monitoring", "node-1", FormatJSON).WithClient(cs)
	assert.Equal(t, "snapshot.json", w.DataKey())

	require.NoError(t, w.Serialize(ctx, testConfig{Name: "first", Value: 1}))

	cm, err := cs.CoreV1().ConfigMaps("monitoring").Get(ctx, "node-1", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, ManagedByValue, cm.Labels[ManagedByLabel])
	assert.Contains(t, cm.Data["snapshot.json"], `"first"`)

	require.NoError(t, w.Serialize(ctx, testConfig{Name: "second", Value: 2}))

	cm, err = cs.CoreV1().ConfigMaps("monitoring").Get(ctx, "node-1", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, cm.Data["snapshot.json"], `"second"`)
	assert.NoError(t, w.Close())
}

func TestConfigMapWriter_TableStoredAsYAML(t *testing.T) {
	w := NewConfigMapWriter("default", "state", FormatTable)
	assert.Equal(t, "snapshot.yaml", w.DataKey())
}

func TestFromFileWithClient_ConfigMap(t *testing.T) {
	ctx := context.Background()
	cs := fake.NewClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "node-1", Namespace: "monitoring"},
		Data:       map[string]string{"snapshot.yaml": "kind: Snapshot\nmetadata:\n  source-node: node-1\n"},
	})

	got, err := FromFileWithClient[testSnapshot](ctx, "cm://monitoring/node-1", cs)
	require.NoError(t, err)
	assert.Equal(t, "Snapshot", got.Kind)
	assert.Equal(t, "node-1", got.Metadata["source-node"])

	_, err = FromFileWithClient[testSnapshot](ctx, "cm://monitoring/missing", cs)
	assert.Error(t, err)
}
