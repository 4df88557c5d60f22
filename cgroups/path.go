package cgroups

import (
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// realpath resolves symlinks and returns a clean absolute path, mirroring
// the canonical-path comparisons the specification requires for hierarchy
// identity (two different strings naming the same mount point must compare
// equal).
func realpath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// cleanPath normalizes a caller-supplied cgroup path: it must never be used
// to escape the hierarchy root, so "" and "/" both collapse to the root
// cgroup and anything else is made relative and cleaned.
func cleanPath(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		cleaned = cleaned[1:]
	}
	return filepath.Clean(cleaned)
}

// join resolves hierarchy/cgroup/extra into a single path, using
// filepath-securejoin so that a malicious or buggy caller-supplied cgroup
// path (e.g. containing "../../etc") cannot be used to walk a write
// outside of the hierarchy root. This is the one place every filesystem
// operation in this package funnels through.
func join(hierarchy, cgroup string, extra ...string) (string, error) {
	rel := cleanPath(cgroup)
	if len(extra) > 0 {
		rel = filepath.Join(append([]string{rel}, extra...)...)
	}
	if rel == "" || rel == "." {
		return hierarchy, nil
	}
	resolved, err := securejoin.SecureJoin(hierarchy, rel)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
