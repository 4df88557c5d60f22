package cgroups

import (
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// Cgroup is the convenience entry point for callers who just want "a
// cgroup with these resources" without naming a hierarchy themselves: it
// drives every subsystem mounted under the host's default combined
// layout (as returned by getMountPoint) at once. Callers who need control
// over a specific hierarchy — multiple mounts, a non-default mount point,
// bind-mounted namespaces — use the lower-level hierarchy-scoped functions
// (Create, Remove, Mount, Destroy, ...) directly instead.
type Cgroup interface {
	// Add enrolls a process into every subsystem's cgroup.procs file.
	Add(Process) error
	// AddTask enrolls a single task into every subsystem's tasks file.
	AddTask(Process) error
	// Delete removes the cgroup directory from every subsystem.
	Delete() error
	// Stat collects resource usage statistics from every subsystem that
	// reports them.
	Stat() (*Stats, error)
	// Freeze and Thaw drive the freezer subsystem, if one is mounted.
	Freeze(ctx context.Context) error
	Thaw(ctx context.Context) error
	// Processes lists the pids enrolled in subsystem's cgroup.procs.
	Processes(subsystem Name) ([]Process, error)
}

type cgroup struct {
	path       string
	root       string
	subsystems []Subsystem

	mu  sync.Mutex
	err error
}

// NewCgroup creates (or attaches to) path under every default subsystem
// mounted on the host and applies resources to each subsystem that
// supports creation-time limits. Subsystems the host hasn't mounted are
// silently skipped rather than treated as an error — a minimal host may
// only mount a handful of the subsystems this package knows about.
func NewCgroup(path string, resources *Resources) (Cgroup, error) {
	root, err := getMountPoint()
	if err != nil {
		return nil, err
	}
	subsystems, err := defaults(root)
	if err != nil {
		return nil, err
	}

	var enabled []Subsystem
	for _, s := range pathers(subsystems) {
		if _, err := os.Lstat(s.Path("/")); err == nil {
			enabled = append(enabled, s)
		}
	}

	var active []Subsystem
	for _, s := range enabled {
		if err := initializeSubsystem(s, path, resources); err != nil {
			return nil, errors.Wrapf(err, "initialize subsystem %s", s.Name())
		}
		active = append(active, s)
	}

	return &cgroup{
		path:       path,
		root:       root,
		subsystems: active,
	}, nil
}

func (c *cgroup) Add(process Process) error {
	return c.withSubsystems(func(s Subsystem, p pather) error {
		return retryingWriteFile(
			p.Path(c.path)+string(os.PathSeparator)+cgroupProcs,
			[]byte(strconv.Itoa(process.Pid)),
			defaultFilePerm,
		)
	})
}

func (c *cgroup) AddTask(process Process) error {
	return c.withSubsystems(func(s Subsystem, p pather) error {
		return retryingWriteFile(
			p.Path(c.path)+string(os.PathSeparator)+cgroupTasks,
			[]byte(strconv.Itoa(process.Pid)),
			defaultFilePerm,
		)
	})
}

func (c *cgroup) Delete() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for _, s := range c.subsystems {
		if d, ok := s.(deleter); ok {
			if err := d.Delete(c.path); err != nil && firstErr == nil {
				firstErr = errors.Wrapf(err, "delete subsystem %s", s.Name())
			}
			continue
		}
		if p, ok := s.(pather); ok {
			if err := removeAllRetrying(p.Path(c.path)); err != nil && firstErr == nil {
				firstErr = errors.Wrapf(err, "delete subsystem %s", s.Name())
			}
		}
	}
	return firstErr
}

func (c *cgroup) Stat() (*Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := &Stats{}
	for _, s := range c.subsystems {
		if st, ok := s.(stater); ok {
			if err := st.Stat(c.path, stats); err != nil {
				return nil, errors.Wrapf(err, "stat subsystem %s", s.Name())
			}
		}
	}
	return stats, nil
}

func (c *cgroup) Freeze(ctx context.Context) error {
	ok, err := Freeze(ctx, c.freezerHierarchy(), c.path, DefaultFreezeConfig).Get(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errf(KindInvalidState, c.path, "cgroup did not reach FROZEN within the retry budget")
	}
	return nil
}

func (c *cgroup) Thaw(ctx context.Context) error {
	ok, err := Thaw(ctx, c.freezerHierarchy(), c.path, DefaultFreezeConfig).Get(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errf(KindInvalidState, c.path, "cgroup did not reach THAWED within the retry budget")
	}
	return nil
}

func (c *cgroup) freezerHierarchy() string {
	return c.root + string(os.PathSeparator) + string(Freezer)
}

func (c *cgroup) Processes(subsystem Name) ([]Process, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.subsystems {
		if s.Name() != subsystem {
			continue
		}
		p, ok := s.(pather)
		if !ok {
			return nil, errf(KindSubsystemUnavailable, string(subsystem), "subsystem does not expose a path")
		}
		return readPids(p.Path(c.path), subsystem)
	}
	return nil, errf(KindSubsystemUnavailable, string(subsystem), "subsystem not active in this cgroup")
}

func (c *cgroup) withSubsystems(fn func(Subsystem, pather) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.subsystems {
		p, ok := s.(pather)
		if !ok {
			continue
		}
		if err := fn(s, p); err != nil {
			return errors.Wrapf(err, "subsystem %s", s.Name())
		}
	}
	return nil
}
