package cgroups

import (
	"context"
	"syscall"

	"github.com/sirupsen/logrus"
)

// KillConfig bundles the parameters of each stage of the kill pipeline
// (freeze, signal, thaw, empty-watch) plus the number of times the whole
// pipeline is retried if tasks remain after a cycle. A single cycle
// generally suffices; more than one is needed when a frozen task forks
// before it receives SIGKILL, leaving a fresh child that the first
// SignalAll snapshot never saw.
type KillConfig struct {
	Freeze    FreezeConfig
	Empty     EmptyWatchConfig
	MaxCycles int
}

var DefaultKillConfig = KillConfig{
	Freeze:    DefaultFreezeConfig,
	Empty:     DefaultEmptyWatchConfig,
	MaxCycles: 10,
}

// KillTasks drives every task in a cgroup to exit by repeatedly freezing
// the cgroup, sending SIGKILL to everything in it, thawing it so the
// signal can actually be delivered, and waiting for the tasks file to
// empty out. Freezing first closes the race where a task forks or execs
// between being listed and being signalled: its children are frozen
// alongside it and get caught by the same kill. The cycle repeats, up to
// MaxCycles, because a task can still fork in the narrow window between
// the SIGKILL snapshot and the freeze taking effect.
//
// The returned future resolves to true once the cgroup is confirmed
// empty, or false if MaxCycles is exhausted with tasks still present —
// a normal outcome for a task stuck in uninterruptible sleep, not an
// error.
func KillTasks(ctx context.Context, hierarchy, cgroup string, cfg KillConfig) *BoolFuture {
	future := newBoolFuture()
	if err := verify(hierarchy, cgroup, ""); err != nil {
		future.resolve(false, err)
		return future
	}
	go runKillTasks(ctx, future, hierarchy, cgroup, cfg)
	return future
}

func runKillTasks(ctx context.Context, future *BoolFuture, hierarchy, cgroup string, cfg KillConfig) {
	for cycle := 0; cycle < cfg.MaxCycles; cycle++ {
		pids, err := ListTasks(hierarchy, cgroup)
		if err != nil {
			future.resolve(false, err)
			return
		}
		if len(pids) == 0 {
			future.resolve(true, nil)
			return
		}

		if _, err := Freeze(ctx, hierarchy, cgroup, cfg.Freeze).Get(ctx); err != nil {
			if ctx.Err() == nil {
				future.resolve(false, err)
			}
			return
		}

		if err := SignalAll(hierarchy, cgroup, syscall.SIGKILL); err != nil {
			future.resolve(false, err)
			return
		}

		// Thaw unconditionally: even if Freeze exhausted its retry budget
		// and the cgroup never reached FROZEN, it is never left in THAWED
		// by this pipeline, and a cgroup wedged in FREEZING cannot deliver
		// the SIGKILL just queued against its frozen tasks.
		if _, err := Thaw(ctx, hierarchy, cgroup, cfg.Freeze).Get(ctx); err != nil {
			if ctx.Err() == nil {
				future.resolve(false, err)
			}
			return
		}

		empty, err := WatchEmpty(ctx, hierarchy, cgroup, cfg.Empty).Get(ctx)
		if err != nil {
			if ctx.Err() == nil {
				future.resolve(false, err)
			}
			return
		}
		if empty {
			future.resolve(true, nil)
			return
		}

		logrus.WithFields(logrus.Fields{"hierarchy": hierarchy, "cgroup": cgroup, "cycle": cycle}).
			Debug("cgroups: kill cycle left tasks behind, retrying")
	}

	logrus.WithFields(logrus.Fields{"hierarchy": hierarchy, "cgroup": cgroup}).
		Warn("cgroups: kill-tasks cycle budget exhausted")
	future.resolve(false, nil)
}
