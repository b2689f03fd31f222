package os

import (
	"context"
	"errors"
	stdos "os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

type mockExecutor struct {
	outputs map[string]string
}

func (m *mockExecutor) Execute(_ context.Context, name string, _ ...string) (string, error) {
	out, ok := m.outputs[name]
	if !ok {
		return "", errors.New("not found")
	}
	return out, nil
}

// writeTree writes files relative to a temp root and returns the root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, stdos.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, stdos.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func update(t *testing.T, g *infogroup.Group) map[string]any {
	t.Helper()
	require.NoError(t, g.Generate())
	require.NoError(t, g.Update(context.Background()))
	return g.Get()
}

const osReleaseFixture = `NAME="Ubuntu"
VERSION_ID="24.04"
VERSION_CODENAME=noble
ID=ubuntu
PRETTY_NAME="Ubuntu 24.04.1 LTS"
`

const cmdlineFixture = "BOOT_IMAGE=/vmlinuz-6.8.0 root=PARTUUID=abc-123 ro intel_iommu=on iommu=pt hugepages=16\n"

func TestOSGroup(t *testing.T) {
	root := writeTree(t, map[string]string{
		"etc/os-release": osReleaseFixture,
		"proc/uptime":    "12345.67 45678.90\n",
		"proc/cmdline":   cmdlineFixture,
	})
	exec := &mockExecutor{outputs: map[string]string{"uname": "6.8.0-40-generic\n"}}

	g := newOSGroup(root, infogroup.WithRegistry(nil), infogroup.WithExecutor(exec))
	out := update(t, g)

	assert.Equal(t, "ubuntu", out["id"])
	assert.Equal(t, "Ubuntu", out["name"])
	assert.Equal(t, "24.04", out["version_id"])
	assert.Equal(t, "Ubuntu 24.04.1 LTS", out["pretty_name"])
	assert.Equal(t, "6.8.0-40-generic", out["kernel_release"])
	assert.InDelta(t, 12345.67, out["uptime_seconds"], 0.001)
	assert.NotContains(t, out, "cmdline", "cmdline is extended")

	boot, ok := out["boot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "on", boot["intel_iommu"])
	assert.Equal(t, "pt", boot["iommu"])
	assert.Equal(t, "16", boot["hugepages"])
	assert.Equal(t, "PARTUUID=abc-123", boot["root"])
	assert.Equal(t, "", boot["amd_iommu"], "unset parameters are empty")
	assert.Equal(t, "", boot["default_hugepagesz"])
	assert.Empty(t, g.Failures())
}

func TestOSGroup_ExtendedAndAnon(t *testing.T) {
	root := writeTree(t, map[string]string{
		"etc/os-release": osReleaseFixture,
		"proc/uptime":    "1.00 2.00\n",
		"proc/cmdline":   cmdlineFixture,
	})
	exec := &mockExecutor{outputs: map[string]string{"uname": "6.8.0\n"}}

	g := newOSGroup(root,
		infogroup.WithRegistry(nil),
		infogroup.WithExecutor(exec),
		infogroup.WithExtended(true),
		infogroup.WithAnon(true),
	)
	out := update(t, g)

	assert.NotContains(t, out, "cmdline")
	assert.Equal(t, "ubuntu", out["id"])
	boot := out["boot"].(map[string]any)
	assert.NotContains(t, boot, "root")
	assert.Equal(t, "on", boot["intel_iommu"])
}

func TestOSGroup_Extended(t *testing.T) {
	root := writeTree(t, map[string]string{
		"etc/os-release": osReleaseFixture,
		"proc/uptime":    "1.00 2.00\n",
		"proc/cmdline":   cmdlineFixture,
	})
	exec := &mockExecutor{outputs: map[string]string{"uname": "6.8.0\n"}}

	g := newOSGroup(root,
		infogroup.WithRegistry(nil),
		infogroup.WithExecutor(exec),
		infogroup.WithExtended(true),
	)
	out := update(t, g)

	assert.Equal(t, "BOOT_IMAGE=/vmlinuz-6.8.0 root=PARTUUID=abc-123 ro intel_iommu=on iommu=pt hugepages=16", out["cmdline"])
	assert.Equal(t, "PARTUUID=abc-123", out["boot"].(map[string]any)["root"])
}

func TestBootGroup_ParameterAtStart(t *testing.T) {
	root := writeTree(t, map[string]string{
		"proc/cmdline": "iommu=off quiet\n",
	})

	out := update(t, newBootGroup(root, infogroup.WithRegistry(nil)))
	assert.Equal(t, "off", out["iommu"])
	assert.Equal(t, "", out["intel_iommu"])
}

func TestOSGroup_MissingFiles(t *testing.T) {
	root := t.TempDir()
	exec := &mockExecutor{}

	g := newOSGroup(root, infogroup.WithRegistry(nil), infogroup.WithExecutor(exec))
	out := update(t, g)

	assert.Nil(t, out["id"])
	assert.Nil(t, out["kernel_release"])
	assert.Contains(t, g.Failures(), "boot.iommu")
}

func TestKernelGroup(t *testing.T) {
	root := writeTree(t, map[string]string{
		"proc/sys/kernel/pid_max":              "4194304\n",
		"proc/sys/kernel/threads-max":          "126846\n",
		"proc/sys/kernel/numa_balancing":       "0\n",
		"proc/sys/kernel/tainted":              "0\n",
		"proc/sys/vm/swappiness":               "60\n",
		"proc/sys/vm/overcommit_memory":        "1\n",
		"proc/sys/vm/max_map_count":            "65530\n",
		"proc/sys/vm/nr_hugepages":             "0\n",
		"proc/sys/fs/file-max":                 "9223372036854775807\n",
		"proc/sys/fs/inotify/max_user_watches": "524288\n",
		"proc/modules":                         "nvidia 12345 0 - Live 0x0\nnvme 61440 3 - Live 0x0\n\n",
	})

	t.Run("basic", func(t *testing.T) {
		out := update(t, newKernelGroup(root, infogroup.WithRegistry(nil)))

		assert.Equal(t, 4194304, out["pid_max"])
		assert.Equal(t, 60, out["swappiness"])
		assert.Equal(t, 1, out["overcommit_memory"])
		assert.Equal(t, 524288, out["inotify_max_watches"])
		assert.Equal(t, 0, out["tainted"])
		assert.NotContains(t, out, "modules")
	})

	t.Run("extended", func(t *testing.T) {
		out := update(t, newKernelGroup(root, infogroup.WithRegistry(nil), infogroup.WithExtended(true)))

		assert.Equal(t, 2, out["modules_loaded"])
		assert.Equal(t, []string{"nvidia", "nvme"}, out["modules"])
	})
}

func TestNewGroups(t *testing.T) {
	osGroup := NewOSGroup(infogroup.WithRegistry(nil))
	assert.Equal(t, "os", osGroup.Name)
	require.Len(t, osGroup.Children, 1)
	assert.Equal(t, "boot", osGroup.Children[0].Name)
	assert.Equal(t, infogroup.File("/etc/os-release").Match(`(?m)^ID="?([^"\n]*)"?$`), osGroup.Files["id"])

	kernel := NewKernelGroup(infogroup.WithRegistry(nil))
	assert.Equal(t, "kernel", kernel.Name)
	assert.NoError(t, kernel.Generate())
}
