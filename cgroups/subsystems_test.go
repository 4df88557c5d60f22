package cgroups

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"cpu", "cpuacct"}, splitNames("cpu,cpuacct"))
	assert.Nil(t, splitNames(""))
	assert.Equal(t, []string{"memory"}, splitNames("memory"))
	assert.Equal(t, []string{"memory"}, splitNames(",memory,"))
}

// These exercise the real host's /proc/cgroups and /proc/mounts; this
// package only targets Linux, and /proc/cgroups has existed since long
// before any kernel this package supports, so there is nothing to mock.
func TestAvailableOnLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("cgroups v1 is Linux-only")
	}
	assert.True(t, Available())
}

func TestListSubsystemsOnLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("cgroups v1 is Linux-only")
	}
	names, err := ListSubsystems()
	require.NoError(t, err)
	assert.NotEmpty(t, names)
}

func TestIsEnabledRejectsUnknownSubsystem(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("cgroups v1 is Linux-only")
	}
	_, err := IsEnabled("this-subsystem-does-not-exist")
	require.Error(t, err)
	var cgErr *Error
	require.ErrorAs(t, err, &cgErr)
	assert.Equal(t, KindSubsystemUnavailable, cgErr.Kind)
}
