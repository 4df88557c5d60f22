package cgroups

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestListenDiscardedByCancellation exercises the cancellation path rather
// than an actual kernel notification: forcing memory pressure or an OOM
// kill deterministically from a test is impractical, but the discard
// behavior on ctx cancellation is exactly as easy to observe as a real
// firing, since Listen's Get blocks the same way either way.
func TestListenDiscardedByCancellation(t *testing.T) {
	requireRootCgroup(t)

	hierarchy := filepath.Join(t.TempDir(), "memory")
	require.NoError(t, Mount(hierarchy, "memory"))
	defer Unmount(hierarchy)

	require.NoError(t, Create(hierarchy, "group"))
	defer Remove(hierarchy, "group")

	ctx, cancel := context.WithCancel(context.Background())
	future := Listen(ctx, hierarchy, "group", "memory.usage_in_bytes", "")

	time.AfterFunc(50*time.Millisecond, cancel)

	getCtx, getCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer getCancel()

	// A discarded listener never resolves its future, so Get only returns
	// once getCtx's own deadline passes.
	_, err := future.Get(getCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
