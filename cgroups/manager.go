package cgroups

// Manager binds a cgroup to the resource limits it was created with, so a
// caller can apply those limits to a process with a single call instead of
// juggling Cgroup and Resources separately. Translating a workload's
// higher-level configuration into concrete *Resources values is the
// caller's job — Manager only drives what this package already knows how
// to do: create the cgroup, enroll a pid, tear it down.
type Manager struct {
	Cgroup    Cgroup
	Resources *Resources
}

// NewManager creates a cgroup at path under the host's default hierarchy
// with the given resources already applied.
func NewManager(path string, resources *Resources) (*Manager, error) {
	cgroup, err := NewCgroup(path, resources)
	if err != nil {
		return nil, err
	}
	return &Manager{
		Cgroup:    cgroup,
		Resources: resources,
	}, nil
}

// Apply enrolls pid into the managed cgroup on every mounted subsystem,
// via both cgroup.procs and the legacy tasks file so the pid is visible to
// tooling that only reads one or the other.
func (m *Manager) Apply(pid int) error {
	if err := m.Cgroup.Add(Process{Pid: pid}); err != nil {
		return err
	}
	if err := m.Cgroup.AddTask(Process{Pid: pid}); err != nil {
		return err
	}
	return nil
}

// Destroy removes the managed cgroup from every subsystem.
func (m *Manager) Destroy() error {
	return m.Cgroup.Delete()
}
