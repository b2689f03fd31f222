package host

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

func fixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"proc/sys/kernel/hostname":       "gpu-node-17\n",
		"etc/machine-id":                 "0123456789abcdef0123456789abcdef\n",
		"proc/sys/kernel/random/boot_id": "b1f1e2d3-0000-4000-8000-123456789abc\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestHostGroup(t *testing.T) {
	root := fixture(t)

	tests := []struct {
		name string
		opts []infogroup.Option
		want map[string]any
	}{
		{
			name: "default",
			want: map[string]any{
				"hostname":          "gpu-node-17",
				"machine_id":        "0123456789abcdef0123456789abcdef",
				"goos":              runtime.GOOS,
				"goarch":            runtime.GOARCH,
				"collector_version": "v0.1.0",
			},
		},
		{
			name: "extended",
			opts: []infogroup.Option{infogroup.WithExtended(true)},
			want: map[string]any{
				"hostname":          "gpu-node-17",
				"machine_id":        "0123456789abcdef0123456789abcdef",
				"boot_id":           "b1f1e2d3-0000-4000-8000-123456789abc",
				"goos":              runtime.GOOS,
				"goarch":            runtime.GOARCH,
				"collector_version": "v0.1.0",
			},
		},
		{
			name: "anon",
			opts: []infogroup.Option{infogroup.WithExtended(true), infogroup.WithAnon(true)},
			want: map[string]any{
				"goos":              runtime.GOOS,
				"goarch":            runtime.GOARCH,
				"collector_version": "v0.1.0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]infogroup.Option{infogroup.WithRegistry(nil)}, tt.opts...)
			g := newHostGroup(root, "v0.1.0", opts...)

			require.NoError(t, g.Generate())
			require.NoError(t, g.Update(context.Background()))
			assert.Equal(t, tt.want, g.Get())
		})
	}
}

func TestNewHostGroup(t *testing.T) {
	g := NewHostGroup("dev", infogroup.WithRegistry(nil))

	assert.Equal(t, "host", g.Name)
	assert.Equal(t, "/etc/machine-id", g.Files["machine_id"].Path)
	assert.Equal(t, "dev", g.Constants["collector_version"])
}
