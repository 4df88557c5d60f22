package cgroups

import "path/filepath"

// namedController models a cgroup hierarchy mounted purely for task
// grouping, with no resource controls of its own — the standard example is
// "name=systemd", which lets systemd track service membership alongside
// the resource-controller hierarchies without competing for their limits.
type namedController struct {
	root string
	name Name
}

func NewNamed(root, name string) *namedController {
	return &namedController{
		root: filepath.Join(root, name),
		name: Name(name),
	}
}

func (n *namedController) Name() Name {
	return n.name
}

func (n *namedController) Path(path string) string {
	return filepath.Join(n.root, path)
}
