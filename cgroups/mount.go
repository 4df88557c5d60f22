package cgroups

import (
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Mount creates hierarchy as a directory and mounts a cgroup virtual
// filesystem there with the given comma-separated subsystems attached.
// It refuses if the directory already exists, and refuses if any named
// subsystem is disabled by the kernel or already attached to another
// hierarchy. On a mount failure it makes a best-effort attempt to remove
// the directory it just created; that secondary failure is logged but
// never masks the primary error.
func Mount(hierarchy, subsystems string) error {
	if pathExists(hierarchy) {
		return errf(KindIO, hierarchy, "%q already exists in the file system", hierarchy)
	}

	for _, name := range splitNames(subsystems) {
		enabled, err := IsEnabled(name)
		if err != nil {
			return err
		}
		if !enabled {
			return errf(KindSubsystemUnavailable, name, "%q is not enabled by the kernel", name)
		}
		busy, err := IsBusy(name)
		if err != nil {
			return err
		}
		if busy {
			return errf(KindSubsystemUnavailable, name, "%q is already attached to another hierarchy", name)
		}
	}

	if err := os.Mkdir(hierarchy, defaultDirPerm); err != nil {
		return wrapf(KindIO, hierarchy, err, "create hierarchy directory")
	}

	if err := unix.Mount(subsystems, hierarchy, "cgroup", 0, subsystems); err != nil {
		if rmErr := os.Remove(hierarchy); rmErr != nil {
			logrus.WithError(rmErr).WithField("hierarchy", hierarchy).
				Warn("cgroups: failed to clean up hierarchy directory after failed mount")
		}
		return wrapf(KindIO, hierarchy, err, "mount cgroup filesystem with subsystems %q", subsystems)
	}

	return nil
}

// Unmount unmounts the cgroups virtual filesystem at hierarchy and removes
// the now-empty mount point directory. hierarchy must already be mounted
// and must have no cgroups left inside it.
func Unmount(hierarchy string) error {
	if err := verify(hierarchy, "", ""); err != nil {
		return err
	}

	if err := unix.Unmount(hierarchy, 0); err != nil {
		return wrapf(KindIO, hierarchy, err, "unmount hierarchy")
	}

	if err := os.Remove(hierarchy); err != nil {
		return wrapf(KindIO, hierarchy, err, "remove hierarchy directory")
	}

	return nil
}

// IsMounted reports whether hierarchy is currently mounted as a cgroup
// filesystem. When subsystems is non-empty, it additionally requires every
// named subsystem to be attached there.
func IsMounted(hierarchy string, subsystems ...string) (bool, error) {
	if !pathExists(hierarchy) {
		return false, nil
	}

	real, err := realpath(hierarchy)
	if err != nil {
		return false, wrapf(KindIO, hierarchy, err, "resolve canonical hierarchy path")
	}

	mounted, err := Hierarchies()
	if err != nil {
		return false, err
	}
	if _, ok := mounted[real]; !ok {
		return false, nil
	}

	if len(subsystems) == 0 {
		return true, nil
	}

	attached, err := SubsystemsOf(hierarchy)
	if err != nil {
		return false, err
	}
	for _, csv := range subsystems {
		for _, name := range splitNames(csv) {
			if _, ok := attached[name]; !ok {
				return false, nil
			}
		}
	}
	return true, nil
}
