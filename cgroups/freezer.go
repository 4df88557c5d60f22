package cgroups

import (
	"context"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	freezerThawed   = "THAWED"
	freezerFreezing = "FREEZING"
	freezerFrozen   = "FROZEN"

	// stoppedState is the /proc/<pid>/stat state character for a task that
	// has been sent SIGSTOP (or is job-control stopped). A task parked here
	// never observes the freezer's SIGSTOP and can wedge the cgroup in
	// FREEZING forever unless nudged with SIGCONT.
	stoppedState = 'T'
)

// FreezeConfig controls how long Freeze polls freezer.state before giving
// up. Exhausting the retry budget is a normal false result, not an error:
// some kernels leave a cgroup in FREEZING indefinitely when it contains an
// unkillable task (one stuck in uninterruptible sleep), and callers are
// expected to retry at a higher level rather than treat that as fatal.
type FreezeConfig struct {
	Interval   time.Duration
	MaxRetries int
}

// DefaultFreezeConfig matches the polling cadence used throughout this
// package's own retry loops: a 10 Hz check for roughly five seconds.
var DefaultFreezeConfig = FreezeConfig{Interval: 100 * time.Millisecond, MaxRetries: 50}

// Freeze transitions a cgroup's tasks to the frozen state via the freezer
// subsystem's freezer.state control file and returns a future
// resolving to true once the kernel reports FROZEN. Kernels older than
// 3.2 never progress past FREEZING for a cgroup that contains a task
// stopped by job control (SIGSTOP/SIGTSTP); Freeze compensates by sending
// SIGCONT to any stopped task and rewriting FROZEN on every retry, mirroring
// the workaround cgroup-aware container runtimes have carried for years.
func Freeze(ctx context.Context, hierarchy, cgroup string, cfg FreezeConfig) *BoolFuture {
	future := newBoolFuture()
	if err := verify(hierarchy, cgroup, controlFreezerState); err != nil {
		future.resolve(false, err)
		return future
	}
	go runFreeze(ctx, future, hierarchy, cgroup, cfg)
	return future
}

func runFreeze(ctx context.Context, future *BoolFuture, hierarchy, cgroup string, cfg FreezeConfig) {
	if err := writeControlUnverified(hierarchy, cgroup, controlFreezerState, freezerFrozen); err != nil {
		future.resolve(false, wrapf(KindIO, cgroup, err, "write %s", freezerFrozen))
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

		state, err := readFreezerState(hierarchy, cgroup)
		if err != nil {
			future.resolve(false, err)
			return
		}

		switch state {
		case freezerFrozen:
			future.resolve(true, nil)
			return
		case freezerFreezing:
			if err := nudgeStoppedTasks(hierarchy, cgroup); err != nil {
				future.resolve(false, err)
				return
			}
			if err := writeControlUnverified(hierarchy, cgroup, controlFreezerState, freezerFrozen); err != nil {
				future.resolve(false, wrapf(KindIO, cgroup, err, "rewrite %s", freezerFrozen))
				return
			}
		case freezerThawed:
			// Something outside this call thawed the cgroup concurrently.
			// Ask again.
			if err := writeControlUnverified(hierarchy, cgroup, controlFreezerState, freezerFrozen); err != nil {
				future.resolve(false, wrapf(KindIO, cgroup, err, "rewrite %s", freezerFrozen))
				return
			}
		default:
			future.resolve(false, errf(KindInvalidState, cgroup, "freezer.state: unexpected literal %q", state))
			return
		}
	}

	logrus.WithFields(logrus.Fields{"hierarchy": hierarchy, "cgroup": cgroup}).
		Warn("cgroups: freeze retry budget exhausted")
	future.resolve(false, nil)
}

// Thaw transitions a frozen cgroup back to THAWED and returns a future
// resolving to true once the kernel confirms the transition.
func Thaw(ctx context.Context, hierarchy, cgroup string, cfg FreezeConfig) *BoolFuture {
	future := newBoolFuture()
	if err := verify(hierarchy, cgroup, controlFreezerState); err != nil {
		future.resolve(false, err)
		return future
	}
	go runThaw(ctx, future, hierarchy, cgroup, cfg)
	return future
}

func runThaw(ctx context.Context, future *BoolFuture, hierarchy, cgroup string, cfg FreezeConfig) {
	if err := writeControlUnverified(hierarchy, cgroup, controlFreezerState, freezerThawed); err != nil {
		future.resolve(false, wrapf(KindIO, cgroup, err, "write %s", freezerThawed))
		return
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		state, err := readFreezerState(hierarchy, cgroup)
		if err != nil {
			future.resolve(false, err)
			return
		}
		switch state {
		case freezerThawed:
			future.resolve(true, nil)
			return
		case freezerFrozen:
			// Still frozen; wait and check again.
		default:
			future.resolve(false, errf(KindInvalidState, cgroup, "freezer.state: unexpected literal %q", state))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}

	logrus.WithFields(logrus.Fields{"hierarchy": hierarchy, "cgroup": cgroup}).
		Warn("cgroups: thaw retry budget exhausted")
	future.resolve(false, nil)
}

func readFreezerState(hierarchy, cgroup string) (string, error) {
	raw, err := ReadControl(hierarchy, cgroup, controlFreezerState)
	if err != nil {
		return "", wrapf(KindIO, cgroup, err, "read %s", controlFreezerState)
	}
	return strings.TrimSpace(raw), nil
}

// nudgeStoppedTasks sends SIGCONT to any task in the cgroup parked in the
// stopped state, unblocking it so the freezer's own SIGSTOP can land.
func nudgeStoppedTasks(hierarchy, cgroup string) error {
	pids, err := ListTasks(hierarchy, cgroup)
	if err != nil {
		return err
	}
	for pid := range pids {
		state, err := processState(pid)
		if err != nil {
			// The task may have exited between the snapshot and this check;
			// that is not a freeze failure.
			continue
		}
		if state != stoppedState {
			continue
		}
		if err := syscall.Kill(pid, syscall.SIGCONT); err != nil && err != syscall.ESRCH {
			return wrapf(KindIO, cgroup, err, "SIGCONT stopped task %d", pid)
		}
	}
	return nil
}
