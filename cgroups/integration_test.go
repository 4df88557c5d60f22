package cgroups

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// requireRootCgroup skips the calling test unless it can actually mount and
// manipulate a throwaway cgroup v1 hierarchy: that means Linux, a process
// running as root (cgroup mounts and cgroupfs writes are root-only), and a
// kernel that still exposes cgroups v1 at all. None of the other tests in
// this package need any of that, which is why this lives behind its own
// helper instead of a package-level TestMain.
func requireRootCgroup(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("cgroups v1 is Linux-only")
	}
	if os.Getuid() != 0 {
		t.Skip("mounting a cgroup hierarchy requires root")
	}
	if !Available() {
		t.Skip("kernel does not expose cgroups v1")
	}
}

func TestMountCreateAssignDestroy(t *testing.T) {
	requireRootCgroup(t)

	// Destroy's kill pipeline freezes each cgroup, so the hierarchy needs
	// the freezer subsystem attached.
	hierarchy := filepath.Join(t.TempDir(), "freezer")
	require.NoError(t, Mount(hierarchy, "freezer"))
	defer Unmount(hierarchy)

	require.NoError(t, Create(hierarchy, "parent"))
	require.NoError(t, Create(hierarchy, "parent/child"))

	nested, err := Enumerate(hierarchy, "parent")
	require.NoError(t, err)
	require.Equal(t, []string{"parent/child"}, nested)

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()

	require.NoError(t, Assign(hierarchy, "parent/child", cmd.Process.Pid))

	tasks, err := ListTasks(hierarchy, "parent/child")
	require.NoError(t, err)
	require.Contains(t, tasks, cmd.Process.Pid)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ok, err := Destroy(ctx, hierarchy, "parent", DefaultDestroyConfig).Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	exists, err := Exists(hierarchy, "parent")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestFreezeThawCycle(t *testing.T) {
	requireRootCgroup(t)

	hierarchy := filepath.Join(t.TempDir(), "freezer")
	require.NoError(t, Mount(hierarchy, "freezer"))
	defer Unmount(hierarchy)

	require.NoError(t, Create(hierarchy, "group"))
	defer Remove(hierarchy, "group")

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()
	require.NoError(t, Assign(hierarchy, "group", cmd.Process.Pid))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	frozen, err := Freeze(ctx, hierarchy, "group", DefaultFreezeConfig).Get(ctx)
	require.NoError(t, err)
	require.True(t, frozen)

	state, err := ReadControl(hierarchy, "group", controlFreezerState)
	require.NoError(t, err)
	require.Contains(t, state, freezerFrozen)

	thawed, err := Thaw(ctx, hierarchy, "group", DefaultFreezeConfig).Get(ctx)
	require.NoError(t, err)
	require.True(t, thawed)
}
