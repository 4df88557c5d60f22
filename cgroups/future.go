package cgroups

import "context"

// BoolFuture and EventFuture are the futures this package hands back from
// its asynchronous operations (freeze, thaw, kill, destroy, listen). Each
// is produced by exactly one actor goroutine, which is the only writer to
// the underlying channel and writes to it at most once — on success, on
// failure, or never at all if the caller's context is cancelled first
// (a "discard" in the specification's terms). That single-write discipline
// is what gives the exactly-once-resolution guarantee: there is no
// separate "already resolved" flag to race against, because there is
// nothing to race — one goroutine, one send, one receive.
//
// Discarding is expressed the idiomatic Go way: by cancelling the
// context.Context passed in when the operation was started. The actor
// observes that cancellation only at its suspension points (a timer tick
// or a pending read), exactly as the specification requires; it does not
// poll for cancellation in the middle of a synchronous filesystem call.

type boolResult struct {
	value bool
	err   error
}

// BoolFuture resolves to true/false for the retry-budget actors (freeze,
// thaw, empty-watch, kill, destroy), or fails with an error for anything
// the specification classifies as fatal rather than a normal "ran out of
// retries" outcome.
type BoolFuture struct {
	ch chan boolResult
}

func newBoolFuture() *BoolFuture {
	return &BoolFuture{ch: make(chan boolResult, 1)}
}

func (f *BoolFuture) resolve(value bool, err error) {
	f.ch <- boolResult{value: value, err: err}
}

// Get blocks until the future resolves or ctx is cancelled, whichever
// happens first.
func (f *BoolFuture) Get(ctx context.Context) (bool, error) {
	select {
	case r := <-f.ch:
		return r.value, r.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

type eventResult struct {
	value uint64
	err   error
}

// EventFuture resolves to the 64-bit counter read from a cgroup event
// notification eventfd.
type EventFuture struct {
	ch chan eventResult
}

func newEventFuture() *EventFuture {
	return &EventFuture{ch: make(chan eventResult, 1)}
}

func (f *EventFuture) resolve(value uint64, err error) {
	f.ch <- eventResult{value: value, err: err}
}

// Get blocks until the future resolves or ctx is cancelled.
func (f *EventFuture) Get(ctx context.Context) (uint64, error) {
	select {
	case r := <-f.ch:
		return r.value, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
