package cgroups

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
)

const (
	controlCpusetCpus   = "cpuset.cpus"
	controlCpusetMems   = "cpuset.mems"
	controlEventControl = "cgroup.event_control"
	controlFreezerState = "freezer.state"
	subsystemCpuset     = "cpuset"
)

// Create makes a new cgroup directory under hierarchy. It does not create
// intermediate directories: the parent cgroup must already exist. If the
// cpuset subsystem is attached to the hierarchy, Create copies
// cpuset.cpus and cpuset.mems from the parent into the new cgroup — without
// this the kernel refuses to let any task enter the new cgroup at all.
func Create(hierarchy, cgroup string) error {
	if err := verify(hierarchy, "", ""); err != nil {
		return err
	}

	path, err := join(hierarchy, cgroup)
	if err != nil {
		return wrapf(KindIO, hierarchy, err, "resolve cgroup path")
	}

	if err := os.Mkdir(path, defaultDirPerm); err != nil {
		return wrapf(KindIO, path, err, "create cgroup directory")
	}

	attached, err := SubsystemsOf(hierarchy)
	if err != nil {
		return err
	}
	if _, ok := attached[subsystemCpuset]; !ok {
		return nil
	}

	parent := cleanParent(cgroup)
	if err := cloneCpuset(hierarchy, parent, cgroup); err != nil {
		return err
	}
	return nil
}

func cleanParent(cgroup string) string {
	rel := cleanPath(cgroup)
	if rel == "" {
		return ""
	}
	parent := filepath.Dir(rel)
	if parent == "." {
		return ""
	}
	return parent
}

func cloneCpuset(hierarchy, parentCgroup, childCgroup string) error {
	cpus, err := ReadControl(hierarchy, parentCgroup, controlCpusetCpus)
	if err != nil {
		return wrapf(KindIO, parentCgroup, err, "read parent %s", controlCpusetCpus)
	}
	mems, err := ReadControl(hierarchy, parentCgroup, controlCpusetMems)
	if err != nil {
		return wrapf(KindIO, parentCgroup, err, "read parent %s", controlCpusetMems)
	}
	if err := writeControlUnverified(hierarchy, childCgroup, controlCpusetCpus, strings.TrimSpace(cpus)); err != nil {
		return wrapf(KindIO, childCgroup, err, "write %s", controlCpusetCpus)
	}
	if err := writeControlUnverified(hierarchy, childCgroup, controlCpusetMems, strings.TrimSpace(mems)); err != nil {
		return wrapf(KindIO, childCgroup, err, "write %s", controlCpusetMems)
	}
	return nil
}

// Remove removes a cgroup directory. It refuses if the cgroup still has
// nested cgroups beneath it; the caller must destroy the subtree first
// (see Destroy).
func Remove(hierarchy, cgroup string) error {
	if err := verify(hierarchy, cgroup, ""); err != nil {
		return err
	}

	nested, err := Enumerate(hierarchy, cgroup)
	if err != nil {
		return wrapf(KindIO, cgroup, err, "enumerate nested cgroups")
	}
	if len(nested) > 0 {
		return newErr(KindIO, cgroup, ErrNestedCgroupsExist)
	}

	path, err := join(hierarchy, cgroup)
	if err != nil {
		return wrapf(KindIO, hierarchy, err, "resolve cgroup path")
	}
	if err := os.Remove(path); err != nil {
		return wrapf(KindIO, path, err, "remove cgroup directory")
	}
	return nil
}

// Exists reports whether the given cgroup (and, if control is non-empty,
// control file inside it) exists under hierarchy.
func Exists(hierarchy, cgroup string, control ...string) (bool, error) {
	if err := verify(hierarchy, "", ""); err != nil {
		return false, err
	}
	ctrl := ""
	if len(control) > 0 {
		ctrl = control[0]
	}
	path, err := join(hierarchy, cgroup, ctrl)
	if err != nil {
		return false, wrapf(KindIO, hierarchy, err, "resolve path")
	}
	return pathExists(path), nil
}

// Enumerate walks the subtree rooted at cgroup and returns every descendant
// cgroup's path, relative to hierarchy, in post-order: a child always
// appears before its parent. The root cgroup passed in is excluded from
// the results. Post-order is load-bearing — callers that remove
// directories in this order are guaranteed to remove every child before
// the parent that contains it.
func Enumerate(hierarchy, cgroup string) ([]string, error) {
	if err := verify(hierarchy, cgroup, ""); err != nil {
		return nil, err
	}

	root, err := join(hierarchy, cgroup)
	if err != nil {
		return nil, wrapf(KindIO, hierarchy, err, "resolve cgroup path")
	}

	var results []string
	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return wrapf(KindIO, dir, err, "read directory")
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			childRel := entry.Name()
			if rel != "" {
				childRel = rel + "/" + entry.Name()
			}
			if err := walk(filepath.Join(dir, entry.Name()), childRel); err != nil {
				return err
			}
			results = append(results, childRel)
		}
		return nil
	}

	if err := walk(root, cleanPath(cgroup)); err != nil {
		return nil, err
	}
	return results, nil
}

// ReadControl returns the whole contents of a control file as a string.
// Control files backed by procfs-like kernel code misbehave under
// lseek-based reads, so this always streams the file with a plain Read
// loop rather than relying on a size hint from stat.
func ReadControl(hierarchy, cgroup, control string) (string, error) {
	if err := verify(hierarchy, cgroup, control); err != nil {
		return "", err
	}
	path, err := join(hierarchy, cgroup, control)
	if err != nil {
		return "", wrapf(KindIO, hierarchy, err, "resolve control path")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", wrapf(KindIO, path, err, "open control file")
	}
	defer f.Close()

	var sb strings.Builder
	if _, err := io.Copy(&sb, bufio.NewReader(f)); err != nil {
		return "", wrapf(KindIO, path, err, "read control file")
	}
	return sb.String(), nil
}

// WriteControl writes value followed by a newline into a control file.
func WriteControl(hierarchy, cgroup, control, value string) error {
	if err := verify(hierarchy, cgroup, control); err != nil {
		return err
	}
	if err := writeControlUnverified(hierarchy, cgroup, control, value); err != nil {
		return wrapf(KindIO, control, err, "write control file")
	}
	return nil
}

// writeControlUnverified is used internally by operations (like Create's
// cpuset clone) that have already verified the hierarchy and just need to
// push bytes into a control file they know exists.
func writeControlUnverified(hierarchy, cgroup, control, value string) error {
	path, err := join(hierarchy, cgroup, control)
	if err != nil {
		return err
	}
	return retryingWriteFile(path, []byte(value+"\n"), defaultFilePerm)
}

// retryingWriteFile retries a whole-file write on EINTR; see
// https://github.com/golang/go/issues/38033. Everywhere else a single
// failed write is simply an error.
func retryingWriteFile(path string, data []byte, mode os.FileMode) error {
	for {
		err := os.WriteFile(path, data, mode)
		if err == nil || !errors.Is(err, syscall.EINTR) {
			return err
		}
	}
}

// ListTasks reads the "tasks" control file and parses it into the set of
// PIDs currently enrolled in the cgroup.
func ListTasks(hierarchy, cgroup string) (map[int]struct{}, error) {
	raw, err := ReadControl(hierarchy, cgroup, cgroupTasks)
	if err != nil {
		return nil, wrapf(KindIO, cgroup, err, "read tasks")
	}
	pids := make(map[int]struct{})
	for _, field := range strings.Fields(raw) {
		pid, err := strconv.Atoi(field)
		if err != nil {
			return nil, wrapf(KindParseError, cgroup, err, "parse pid in tasks file")
		}
		pids[pid] = struct{}{}
	}
	return pids, nil
}

// Assign enrolls pid into cgroup by writing its decimal value to the
// "tasks" control file. The kernel moves the pid out of whatever cgroup it
// previously occupied in the same hierarchy.
func Assign(hierarchy, cgroup string, pid int) error {
	return WriteControl(hierarchy, cgroup, cgroupTasks, strconv.Itoa(pid))
}

// SignalAll snapshots the cgroup's task set and sends signo to every task
// in it. The first signal delivery failure is fatal to the call; the
// caller is told exactly which pid and signal failed so it can decide
// whether to retry.
func SignalAll(hierarchy, cgroup string, signo syscall.Signal) error {
	pids, err := ListTasks(hierarchy, cgroup)
	if err != nil {
		return err
	}
	for pid := range pids {
		if err := syscall.Kill(pid, signo); err != nil {
			if err == syscall.ESRCH {
				// The task exited on its own between the snapshot and the
				// signal; that is not a failure of this call.
				continue
			}
			return wrapf(KindIO, cgroup, err, "send signal %d to pid %d", signo, pid)
		}
	}
	logrus.WithFields(logrus.Fields{
		"cgroup": cgroup,
		"signal": signo,
		"count":  len(pids),
	}).Debug("cgroups: signalled tasks")
	return nil
}
