package cgroups

// verify is the pre-flight gate every public operation in this package
// runs before it touches the filesystem: is the hierarchy mounted, does
// the cgroup directory exist (if one was named), does the control file
// exist (if one was named — which implies a cgroup was also named). No
// caller path skips this check; the cost of a stat() is trivial next to
// the cost of a confusing ENOENT three calls deep.
func verify(hierarchy, cgroup, control string) error {
	mounted, err := IsMounted(hierarchy)
	if err != nil {
		return wrapf(KindIO, hierarchy, err, "determine whether hierarchy is mounted")
	}
	if !mounted {
		return errf(KindNotMounted, hierarchy, "%q is not mounted", hierarchy)
	}

	if cgroup != "" {
		path, err := join(hierarchy, cgroup)
		if err != nil {
			return wrapf(KindIO, hierarchy, err, "resolve cgroup path")
		}
		if !dirExists(path) {
			return errf(KindPathMissing, path, "cgroup %q does not exist", cgroup)
		}
	}

	if control != "" {
		path, err := join(hierarchy, cgroup, control)
		if err != nil {
			return wrapf(KindIO, hierarchy, err, "resolve control path")
		}
		if !pathExists(path) {
			return errf(KindPathMissing, path, "control %q does not exist (is the subsystem attached?)", control)
		}
	}

	return nil
}
