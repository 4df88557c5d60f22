package cgroups

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var clockTicks = getClockTicks()

func NewCpuacct(root string) *cpuacctController {
	return &cpuacctController{root: filepath.Join(root, string(Cpuacct))}
}

type cpuacctController struct {
	root string
}

func (c *cpuacctController) Name() Name {
	return Cpuacct
}

func (c *cpuacctController) Path(path string) string {
	return filepath.Join(c.root, path)
}

// cpuacct has nothing to configure; it only accounts. Stat is the only
// thing this controller does.
func (c *cpuacctController) Stat(path string, stats *Stats) error {
	if stats.CPU == nil {
		stats.CPU = &CPUStat{}
	}
	user, kernel, err := c.getUsage(path)
	if err != nil {
		return err
	}
	total, err := readUint(filepath.Join(c.Path(path), "cpuacct.usage"))
	if err != nil {
		return err
	}
	percpu, err := c.percpuUsage(path)
	if err != nil {
		return err
	}
	stats.CPU.Usage = &CPUUsage{
		Total:  total,
		User:   user,
		Kernel: kernel,
		PerCPU: percpu,
	}
	return nil
}

// getUsage reads cpuacct.stat, whose "user"/"system" fields are expressed
// in USER_HZ clock ticks rather than nanoseconds like every other usage
// counter in this controller, and converts it to nanoseconds.
func (c *cpuacctController) getUsage(path string) (user uint64, kernel uint64, err error) {
	f, err := os.Open(filepath.Join(c.Path(path), "cpuacct.stat"))
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var raw = map[string]uint64{
		"user":   0,
		"system": 0,
	}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, v, err := parseKV(sc.Text())
		if err != nil {
			return 0, 0, err
		}
		if _, ok := raw[key]; ok {
			raw[key] = v
		}
	}
	if err := sc.Err(); err != nil {
		return 0, 0, err
	}
	return (raw["user"] * 1e9) / clockTicks, (raw["system"] * 1e9) / clockTicks, nil
}

func (c *cpuacctController) percpuUsage(path string) ([]uint64, error) {
	var usage []uint64
	data, err := os.ReadFile(filepath.Join(c.Path(path), "cpuacct.usage_percpu"))
	if err != nil {
		return nil, err
	}
	for _, v := range strings.Fields(strings.TrimSpace(string(data))) {
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, nil
}

func getClockTicks() uint64 {
	// USER_HZ is almost universally 100 on Linux; there is no portable way
	// to read sysconf(_SC_CLK_TCK) from the standard library.
	return 100
}
