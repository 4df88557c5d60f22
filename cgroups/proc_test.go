package cgroups

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProcCgroups = `#subsys_name	hierarchy	num_cgroups	enabled
cpuset	3	1	1
cpu	2	4	1
cpuacct	2	4	1
freezer	5	1	0
`

func TestParseProcCgroups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cgroups")
	require.NoError(t, os.WriteFile(path, []byte(sampleProcCgroups), 0644))

	got, err := parseProcCgroups(path)
	require.NoError(t, err)

	assert.Equal(t, SubsystemInfo{Name: "cpuset", Hierarchy: 3, Cgroups: 1, Enabled: true}, got["cpuset"])
	assert.Equal(t, SubsystemInfo{Name: "cpu", Hierarchy: 2, Cgroups: 4, Enabled: true}, got["cpu"])
	assert.Equal(t, SubsystemInfo{Name: "freezer", Hierarchy: 5, Cgroups: 1, Enabled: false}, got["freezer"])
	assert.Len(t, got, 4)
}

func TestParseProcCgroupsRejectsShortLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cgroups")
	require.NoError(t, os.WriteFile(path, []byte("cpu 2 4\n"), 0644))

	_, err := parseProcCgroups(path)
	assert.Error(t, err)
}

const sampleProcMounts = `sysfs /sys sysfs rw,nosuid,nodev,noexec,relatime 0 0
cgroup /sys/fs/cgroup/cpu,cpuacct cgroup rw,nosuid,nodev,noexec,relatime,cpu,cpuacct 0 0
cgroup /sys/fs/cgroup/freezer cgroup rw,nosuid,nodev,noexec,relatime,freezer 0 0
`

func TestParseProcMounts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mounts")
	require.NoError(t, os.WriteFile(path, []byte(sampleProcMounts), 0644))

	entries, err := parseProcMounts(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	cpu := entries[1]
	assert.Equal(t, "cgroup", cpu.Type)
	assert.Equal(t, "/sys/fs/cgroup/cpu,cpuacct", cpu.Dir)
	assert.True(t, cpu.hasOption("cpu"))
	assert.True(t, cpu.hasOption("cpuacct"))
	assert.False(t, cpu.hasOption("freezer"))
}

func TestMountEntryHasOption(t *testing.T) {
	e := mountEntry{Options: strings.Split("rw,nosuid,cpu", ",")}
	assert.True(t, e.hasOption("rw"))
	assert.True(t, e.hasOption("cpu"))
	assert.False(t, e.hasOption("cpuset"))
}
