package cgroups

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the error values this package returns. None of these are
// panics: every hierarchy-level operation that can fail returns one of these
// wrapped in an *Error. Budget exhaustion and cancellation are not errors for
// Freeze, Thaw, WatchEmpty and KillTasks, which surface them through their
// own return values instead.
type Kind string

const (
	// KindNotMounted means the hierarchy is not currently mounted as a
	// cgroup filesystem.
	KindNotMounted Kind = "not_mounted"
	// KindPathMissing means the cgroup directory or control file referenced
	// by the call does not exist.
	KindPathMissing Kind = "path_missing"
	// KindSubsystemUnavailable means a named subsystem is disabled by the
	// kernel or already attached to a different hierarchy.
	KindSubsystemUnavailable Kind = "subsystem_unavailable"
	// KindParseError means a kernel-provided file (/proc/cgroups,
	// /proc/mounts, /proc/<pid>/stat, tasks) could not be parsed.
	KindParseError Kind = "parse_error"
	// KindIO wraps a raw syscall/errno failure.
	KindIO Kind = "io"
	// KindInvalidState means freezer.state held a literal other than
	// THAWED, FREEZING or FROZEN. Destroy and the Cgroup convenience
	// Freeze/Thaw also use it when a retry budget runs out before the
	// cgroup reaches the requested state.
	KindInvalidState Kind = "invalid_state"
)

// Error is the concrete error type returned by the hierarchy-level
// operations in this package (Mount, Create, ReadControl, Freeze, Destroy,
// ...). The Cgroup/Manager convenience layer and the resource controllers
// return the underlying os error, wrapped with github.com/pkg/errors
// context, not an *Error. Callers that need to branch on failure category
// should use errors.As and inspect Kind rather than string-matching Error().
type Error struct {
	Kind  Kind
	Path  string
	cause error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cgroups: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("cgroups: %s: %s: %v", e.Kind, e.Path, e.cause)
}

// Unwrap lets errors.Is/errors.As see through to the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// Cause satisfies github.com/pkg/errors' causer interface.
func (e *Error) Cause() error { return e.cause }

func newErr(kind Kind, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, cause: cause}
}

func errf(kind Kind, path string, format string, args ...interface{}) error {
	return newErr(kind, path, errors.Errorf(format, args...))
}

func wrapf(kind Kind, path string, cause error, format string, args ...interface{}) error {
	return newErr(kind, path, errors.Wrapf(cause, format, args...))
}

// Sentinel errors surfaced by the lower-level parsing helpers. Kept as
// plain package-level values, in the tradition of io.EOF and
// os.ErrNotExist, so callers can compare with errors.Is when they only
// care "did this specific thing happen" rather than the general Kind.
var (
	ErrMountPointNotExist       = errors.New("cgroups: no cgroup mount point found in /proc/self/mountinfo")
	ErrInvalidFormat            = errors.New("cgroups: invalid key/value line")
	ErrNoCgroupMountDestination = errors.New("cgroups: subsystem is not mounted anywhere")
	ErrNestedCgroupsExist       = errors.New("cgroups: nested cgroups exist")
)
