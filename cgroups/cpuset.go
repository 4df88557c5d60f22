package cgroups

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

func NewCpuset(root string) *cpusetController {
	return &cpusetController{root: filepath.Join(root, string(Cpuset))}
}

type cpusetController struct {
	root string
}

func (c *cpusetController) Name() Name {
	return Cpuset
}

func (c *cpusetController) Path(path string) string {
	return filepath.Join(c.root, path)
}

// Create makes the cgroup directory and, unless the caller supplied
// explicit Cpus/Mems, inherits the parent's cpuset.cpus and cpuset.mems.
// The kernel refuses to admit any task into a cpuset cgroup whose cpus or
// mems files are empty, so a freshly created child cgroup is otherwise
// unusable until something populates them.
func (c *cpusetController) Create(path string, resources *Resources) error {
	if err := os.MkdirAll(c.Path(path), defaultDirPerm); err != nil {
		return err
	}

	cpus, mems := "", ""
	if cpu := resources.CPU; cpu != nil {
		cpus, mems = cpu.Cpus, cpu.Mems
	}
	if cpus == "" {
		inherited, err := c.readParent(path, "cpuset.cpus")
		if err != nil {
			return err
		}
		cpus = inherited
	}
	if mems == "" {
		inherited, err := c.readParent(path, "cpuset.mems")
		if err != nil {
			return err
		}
		mems = inherited
	}

	if cpus != "" {
		if err := ioutil.WriteFile(filepath.Join(c.Path(path), "cpuset.cpus"), []byte(cpus), defaultFilePerm); err != nil {
			return err
		}
	}
	if mems != "" {
		if err := ioutil.WriteFile(filepath.Join(c.Path(path), "cpuset.mems"), []byte(mems), defaultFilePerm); err != nil {
			return err
		}
	}
	return nil
}

func (c *cpusetController) readParent(path, file string) (string, error) {
	parent := filepath.Dir(c.Path(path))
	data, err := ioutil.ReadFile(filepath.Join(parent, file))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func (c *cpusetController) Update(path string, resources *Resources) error {
	return c.Create(path, resources)
}
