package cgroups

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// EmptyWatchConfig controls how long WatchEmpty polls a cgroup's tasks
// file before giving up.
type EmptyWatchConfig struct {
	Interval   time.Duration
	MaxRetries int
}

// DefaultEmptyWatchConfig matches DefaultFreezeConfig's cadence: tasks
// killed by SIGKILL are reaped by init almost immediately, but the kernel
// gives no synchronous guarantee about when they disappear from the tasks
// file, so this is a poll, not a one-shot check.
var DefaultEmptyWatchConfig = EmptyWatchConfig{Interval: 100 * time.Millisecond, MaxRetries: 50}

// WatchEmpty returns a future that resolves to true once a cgroup's tasks
// file reports no remaining pids, or false if the retry budget is
// exhausted first — a normal outcome when a task is wedged in
// uninterruptible sleep and cannot be reaped, not an error.
func WatchEmpty(ctx context.Context, hierarchy, cgroup string, cfg EmptyWatchConfig) *BoolFuture {
	future := newBoolFuture()
	if err := verify(hierarchy, cgroup, ""); err != nil {
		future.resolve(false, err)
		return future
	}
	go runEmptyWatch(ctx, future, hierarchy, cgroup, cfg)
	return future
}

func runEmptyWatch(ctx context.Context, future *BoolFuture, hierarchy, cgroup string, cfg EmptyWatchConfig) {
	pids, err := ListTasks(hierarchy, cgroup)
	if err != nil {
		future.resolve(false, err)
		return
	}
	if len(pids) == 0 {
		future.resolve(true, nil)
		return
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pids, err := ListTasks(hierarchy, cgroup)
		if err != nil {
			future.resolve(false, err)
			return
		}
		if len(pids) == 0 {
			future.resolve(true, nil)
			return
		}
	}

	logrus.WithFields(logrus.Fields{"hierarchy": hierarchy, "cgroup": cgroup}).
		Warn("cgroups: empty-watch retry budget exhausted")
	future.resolve(false, nil)
}
