package cgroups

import (
	"bufio"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
)

func NewMemory(root string) *memoryController {
	return &memoryController{root: filepath.Join(root, string(Memory))}
}

type memoryController struct {
	root string
}

func (m *memoryController) Name() Name {
	return Memory
}

func (m *memoryController) Path(path string) string {
	return filepath.Join(m.root, path)
}

func (m *memoryController) Create(path string, resources *Resources) error {
	if err := os.MkdirAll(m.Path(path), defaultDirPerm); err != nil {
		return err
	}
	mem := resources.Memory
	if mem == nil {
		return nil
	}
	for _, t := range []struct {
		file  string
		value *int64
	}{
		{"memory.limit_in_bytes", mem.Limit},
		{"memory.soft_limit_in_bytes", mem.Reservation},
		{"memory.memsw.limit_in_bytes", mem.Swap},
		{"memory.kmem.limit_in_bytes", mem.Kernel},
		{"memory.kmem.tcp.limit_in_bytes", mem.KernelTCP},
		{"memory.swappiness", mem.Swappiness},
	} {
		if t.value == nil {
			continue
		}
		if err := ioutil.WriteFile(
			filepath.Join(m.Path(path), t.file),
			[]byte(strconv.FormatInt(*t.value, 10)),
			defaultFilePerm,
		); err != nil {
			return err
		}
	}
	if mem.DisableOOMKiller != nil && *mem.DisableOOMKiller {
		if err := ioutil.WriteFile(
			filepath.Join(m.Path(path), "memory.oom_control"),
			[]byte("1"),
			defaultFilePerm,
		); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryController) Update(path string, resources *Resources) error {
	return m.Create(path, resources)
}

func (m *memoryController) Stat(path string, stats *Stats) error {
	entry, err := m.entry(path, "memory.usage_in_bytes", "memory.max_usage_in_bytes", "memory.failcnt", "memory.limit_in_bytes")
	if err != nil {
		return err
	}
	swap, err := m.optionalEntry(path, "memory.memsw.usage_in_bytes", "memory.memsw.max_usage_in_bytes", "memory.memsw.failcnt", "memory.memsw.limit_in_bytes")
	if err != nil {
		return err
	}
	kernel, err := m.optionalEntry(path, "memory.kmem.usage_in_bytes", "memory.kmem.max_usage_in_bytes", "memory.kmem.failcnt", "memory.kmem.limit_in_bytes")
	if err != nil {
		return err
	}
	kernelTCP, err := m.optionalEntry(path, "memory.kmem.tcp.usage_in_bytes", "memory.kmem.tcp.max_usage_in_bytes", "memory.kmem.tcp.failcnt", "memory.kmem.tcp.limit_in_bytes")
	if err != nil {
		return err
	}

	stat := &MemoryStat{
		Usage:     entry,
		Swap:      swap,
		Kernel:    kernel,
		KernelTCP: kernelTCP,
	}
	if err := m.statFields(path, stat); err != nil {
		return err
	}
	stats.Memory = stat
	return nil
}

func (m *memoryController) entry(path string, usage, max, failcnt, limit string) (*MemoryEntry, error) {
	u, err := readUint(filepath.Join(m.Path(path), usage))
	if err != nil {
		return nil, err
	}
	mx, err := readUint(filepath.Join(m.Path(path), max))
	if err != nil {
		return nil, err
	}
	f, err := readUint(filepath.Join(m.Path(path), failcnt))
	if err != nil {
		return nil, err
	}
	l, err := readUint(filepath.Join(m.Path(path), limit))
	if err != nil {
		return nil, err
	}
	return &MemoryEntry{Usage: u, Max: mx, Failcnt: f, Limit: l}, nil
}

// optionalEntry mirrors entry, except a missing file (the memsw/kmem
// controls require the kernel be booted with swap/kmem accounting enabled)
// is reported as a nil entry rather than an error.
func (m *memoryController) optionalEntry(path string, usage, max, failcnt, limit string) (*MemoryEntry, error) {
	if !pathExists(filepath.Join(m.Path(path), usage)) {
		return nil, nil
	}
	return m.entry(path, usage, max, failcnt, limit)
}

func (m *memoryController) statFields(path string, stat *MemoryStat) error {
	f, err := os.Open(filepath.Join(m.Path(path), "memory.stat"))
	if err != nil {
		return err
	}
	defer f.Close()

	targets := map[string]*uint64{
		"cache":                     &stat.Cache,
		"rss":                       &stat.RSS,
		"rss_huge":                  &stat.RSSHuge,
		"mapped_file":               &stat.MappedFile,
		"dirty":                     &stat.Dirty,
		"writeback":                 &stat.Writeback,
		"pgpgin":                    &stat.PgPgIn,
		"pgpgout":                   &stat.PgPgOut,
		"pgfault":                   &stat.PgFault,
		"pgmajfault":                &stat.PgMajFault,
		"inactive_anon":             &stat.InactiveAnon,
		"active_anon":               &stat.ActiveAnon,
		"inactive_file":             &stat.InactiveFile,
		"active_file":               &stat.ActiveFile,
		"unevictable":               &stat.Unevictable,
		"hierarchical_memory_limit": &stat.HierarchicalMemoryLimit,
		"hierarchical_memsw_limit":  &stat.HierarchicalSwapLimit,
		"total_cache":               &stat.TotalCache,
		"total_rss":                 &stat.TotalRSS,
		"total_rss_huge":            &stat.TotalRSSHuge,
		"total_mapped_file":         &stat.TotalMappedFile,
		"total_dirty":               &stat.TotalDirty,
		"total_writeback":           &stat.TotalWriteback,
		"total_pgpgin":              &stat.TotalPgPgIn,
		"total_pgpgout":             &stat.TotalPgPgOut,
		"total_pgfault":             &stat.TotalPgFault,
		"total_pgmajfault":          &stat.TotalPgMajFault,
		"total_inactive_anon":       &stat.TotalInactiveAnon,
		"total_active_anon":         &stat.TotalActiveAnon,
		"total_inactive_file":       &stat.TotalInactiveFile,
		"total_active_file":         &stat.TotalActiveFile,
		"total_unevictable":         &stat.TotalUnevictable,
	}

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, v, err := parseKV(sc.Text())
		if err != nil {
			return err
		}
		if dst, ok := targets[key]; ok {
			*dst = v
		}
	}
	return sc.Err()
}
