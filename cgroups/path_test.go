package cgroups

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"foo", "foo"},
		{"/foo/bar", "foo/bar"},
		{"foo/../bar", "bar"},
		{"./foo", "foo"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, cleanPath(c.in), "cleanPath(%q)", c.in)
	}
}

func TestJoinRoot(t *testing.T) {
	got, err := join("/sys/fs/cgroup/cpu", "")
	require.NoError(t, err)
	assert.Equal(t, "/sys/fs/cgroup/cpu", got)
}

func TestJoinNested(t *testing.T) {
	got, err := join("/sys/fs/cgroup/cpu", "foo/bar")
	require.NoError(t, err)
	assert.Equal(t, "/sys/fs/cgroup/cpu/foo/bar", got)
}

func TestJoinWithControl(t *testing.T) {
	got, err := join("/sys/fs/cgroup/cpu", "foo", "cpu.shares")
	require.NoError(t, err)
	assert.Equal(t, "/sys/fs/cgroup/cpu/foo/cpu.shares", got)
}

func TestJoinRejectsEscape(t *testing.T) {
	got, err := join("/sys/fs/cgroup/cpu", "../../etc/passwd")
	require.NoError(t, err)
	// securejoin resolves ".." against the root rather than escaping it.
	assert.Equal(t, "/sys/fs/cgroup/cpu/etc/passwd", got)
}

func TestDirAndPathExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, dirExists(dir))
	assert.True(t, pathExists(dir))
	assert.False(t, dirExists(dir+"/nope"))
	assert.False(t, pathExists(dir+"/nope"))
}
