package cgroups

import (
	"context"
	"encoding/binary"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Listen registers a kernel eventfd notifier against a control file using
// the cgroup.event_control protocol and returns a future that resolves
// with the next event's 64-bit counter. args carries any control-specific
// registration arguments (e.g. a memory pressure level for
// memory.pressure_level; empty for memory.oom_control).
//
// Cancelling ctx before the event fires discards the listener: the
// pending read is abandoned, the eventfd is closed, and the future never
// resolves. The listener is a single-consumer actor — it is the only
// writer of its own future and it closes the eventfd on every exit path,
// including this one.
func Listen(ctx context.Context, hierarchy, cgroup, control string, args string) *EventFuture {
	future := newEventFuture()

	if err := verify(hierarchy, cgroup, control); err != nil {
		future.resolve(0, err)
		return future
	}

	go runListener(ctx, future, hierarchy, cgroup, control, args)
	return future
}

func runListener(ctx context.Context, future *EventFuture, hierarchy, cgroup, control, args string) {
	efd, err := registerNotifier(hierarchy, cgroup, control, args)
	if err != nil {
		future.resolve(0, wrapf(KindIO, control, err, "register notification eventfd"))
		return
	}

	file := os.NewFile(uintptr(efd), "cgroup-event")
	defer file.Close()

	type readOutcome struct {
		n   int
		err error
	}
	done := make(chan readOutcome, 1)
	buf := make([]byte, 8)
	go func() {
		n, err := file.Read(buf)
		done <- readOutcome{n: n, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			future.resolve(0, wrapf(KindIO, control, r.err, "read eventfd"))
			return
		}
		if r.n != len(buf) {
			future.resolve(0, errf(KindIO, control, "read less than expected from eventfd: %d bytes", r.n))
			return
		}
		future.resolve(binary.LittleEndian.Uint64(buf), nil)
	case <-ctx.Done():
		// Discard: force the in-flight read to return by expiring its
		// deadline, drain the goroutine above so it doesn't leak, and exit
		// without ever resolving the promise.
		_ = file.SetReadDeadline(time.Unix(0, 0))
		<-done
		logrus.WithFields(logrus.Fields{
			"hierarchy": hierarchy,
			"cgroup":    cgroup,
			"control":   control,
		}).Debug("cgroups: event listener discarded")
	}
}

// registerNotifier creates a non-blocking, close-on-exec eventfd and wires
// it to control via cgroup.event_control. The control fd used only to make
// that registration is closed before this function returns; the eventfd
// itself is returned to the caller, who owns closing it.
func registerNotifier(hierarchy, cgroup, control, args string) (int, error) {
	efd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return -1, err
	}

	path, err := join(hierarchy, cgroup, control)
	if err != nil {
		unix.Close(efd)
		return -1, err
	}
	cfd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		unix.Close(efd)
		return -1, err
	}

	spec := strconv.Itoa(efd) + " " + strconv.Itoa(cfd)
	if args != "" {
		spec += " " + args
	}
	if err := writeControlUnverified(hierarchy, cgroup, controlEventControl, spec); err != nil {
		unix.Close(efd)
		unix.Close(cfd)
		return -1, err
	}

	unix.Close(cfd)
	return efd, nil
}
