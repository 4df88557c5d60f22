package cgroups

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	procCgroups = "/proc/cgroups"
	procMounts  = "/proc/mounts"
)

// Available reports whether the kernel exposes /proc/cgroups at all, i.e.
// whether cgroups v1 is compiled in.
func Available() bool {
	infos, err := parseProcCgroups(procCgroups)
	return err == nil && infos != nil
}

// ListSubsystems returns the set of subsystem names the kernel currently
// reports as enabled, regardless of whether they are attached anywhere.
func ListSubsystems() (map[string]struct{}, error) {
	infos, err := parseProcCgroups(procCgroups)
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{}, len(infos))
	for name, info := range infos {
		if info.Enabled {
			names[name] = struct{}{}
		}
	}
	return names, nil
}

// splitNames tokenizes a comma-separated subsystem list, the wire format
// used throughout this package for multi-subsystem hierarchies.
func splitNames(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsEnabled reports whether every comma-separated subsystem in names is
// present in /proc/cgroups and enabled. It fails, rather than returning
// false, if any named subsystem is not present at all: an absent subsystem
// is a configuration error, not a "not enabled" answer.
func IsEnabled(names string) (bool, error) {
	infos, err := parseProcCgroups(procCgroups)
	if err != nil {
		return false, err
	}
	enabled := true
	for _, name := range splitNames(names) {
		info, ok := infos[name]
		if !ok {
			return false, errf(KindSubsystemUnavailable, name, "%q not found in /proc/cgroups", name)
		}
		if !info.Enabled {
			enabled = false
		}
	}
	return enabled, nil
}

// IsBusy reports whether any comma-separated subsystem in names is already
// attached to some hierarchy (hierarchy id != 0). As with IsEnabled, an
// absent subsystem fails the call outright. Per the spec's preserved
// ambiguity: this answers "attached somewhere", not "attached elsewhere" —
// callers are expected to check before they mount, never after.
func IsBusy(names string) (bool, error) {
	infos, err := parseProcCgroups(procCgroups)
	if err != nil {
		return false, err
	}
	busy := false
	for _, name := range splitNames(names) {
		info, ok := infos[name]
		if !ok {
			return false, errf(KindSubsystemUnavailable, name, "%q not found in /proc/cgroups", name)
		}
		if info.Hierarchy != 0 {
			busy = true
		}
	}
	return busy, nil
}

// Hierarchies returns the canonical (realpath) directories currently
// mounted with filesystem type "cgroup".
func Hierarchies() (map[string]struct{}, error) {
	entries, err := parseProcMounts(procMounts)
	if err != nil {
		return nil, err
	}
	results := make(map[string]struct{})
	for _, e := range entries {
		if e.Type != "cgroup" {
			continue
		}
		real, err := realpath(e.Dir)
		if err != nil {
			logrus.WithError(err).WithField("dir", e.Dir).Warn("cgroups: failed to resolve mount directory, skipping")
			continue
		}
		results[real] = struct{}{}
	}
	return results, nil
}

// SubsystemsOf returns the intersection of currently-enabled subsystems and
// the mount options of the *last* /proc/mounts entry whose canonical
// directory matches hierarchy. A directory can be mounted more than once;
// later entries shadow earlier ones, which is why this walks the whole
// table instead of stopping at the first match.
func SubsystemsOf(hierarchy string) (map[string]struct{}, error) {
	hierarchyAbs, err := realpath(hierarchy)
	if err != nil {
		return nil, wrapf(KindIO, hierarchy, err, "resolve hierarchy path")
	}

	entries, err := parseProcMounts(procMounts)
	if err != nil {
		return nil, err
	}

	var last *mountEntry
	for i := range entries {
		e := entries[i]
		if e.Type != "cgroup" {
			continue
		}
		dirAbs, err := realpath(e.Dir)
		if err != nil {
			continue
		}
		if dirAbs == hierarchyAbs {
			last = &entries[i]
		}
	}
	if last == nil {
		return nil, errf(KindNotMounted, hierarchy, "%q is not a mount point for cgroups", hierarchy)
	}

	enabled, err := ListSubsystems()
	if err != nil {
		return nil, err
	}

	result := make(map[string]struct{})
	for name := range enabled {
		if last.hasOption(name) {
			result[name] = struct{}{}
		}
	}
	return result, nil
}
