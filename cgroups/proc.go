package cgroups

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// SubsystemInfo is a snapshot of one line of /proc/cgroups: a named kernel
// resource controller, which hierarchy (if any) it is currently attached
// to, how many cgroups exist under it, and whether the kernel has it
// compiled in and enabled.
type SubsystemInfo struct {
	Name      string
	Hierarchy int
	Cgroups   int
	Enabled   bool
}

// parseProcCgroups reads and parses /proc/cgroups. Blank lines and any line
// starting with '#' (the column header) are skipped. A name seen twice
// overwrites the earlier entry, matching the kernel's own semantics: the
// file lists the current state, not a log.
func parseProcCgroups(path string) (map[string]SubsystemInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapf(KindIO, path, err, "open /proc/cgroups")
	}
	defer f.Close()

	infos := make(map[string]SubsystemInfo)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, errf(KindParseError, path, "malformed /proc/cgroups line: %q", line)
		}
		hierarchy, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, wrapf(KindParseError, path, err, "parse hierarchy id in %q", line)
		}
		count, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, wrapf(KindParseError, path, err, "parse cgroup count in %q", line)
		}
		enabled, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, wrapf(KindParseError, path, err, "parse enabled flag in %q", line)
		}
		infos[fields[0]] = SubsystemInfo{
			Name:      fields[0],
			Hierarchy: hierarchy,
			Cgroups:   count,
			Enabled:   enabled != 0,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapf(KindIO, path, err, "read /proc/cgroups")
	}
	return infos, nil
}

// mountEntry is the subset of a /proc/mounts row this package cares about.
type mountEntry struct {
	Source  string
	Dir     string
	Type    string
	Options []string
}

func (m mountEntry) hasOption(name string) bool {
	for _, opt := range m.Options {
		if opt == name {
			return true
		}
	}
	return false
}

// parseProcMounts reads /proc/mounts (or any file in that format) and
// returns every entry, in file order. Later entries for the same directory
// shadow earlier ones in the kernel's own resolution, so callers that care
// about "the" mount at a path must take the last match, not the first.
func parseProcMounts(path string) ([]mountEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapf(KindIO, path, err, "open mount table")
	}
	defer f.Close()

	var entries []mountEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		entries = append(entries, mountEntry{
			Source:  fields[0],
			Dir:     fields[1],
			Type:    fields[2],
			Options: strings.Split(fields[3], ","),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapf(KindIO, path, err, "read mount table")
	}
	return entries, nil
}

// processState reads the single-character process state field out of
// /proc/<pid>/stat. The comm field (2nd column) is parenthesized and may
// itself contain spaces or closing parens, so the state is located by
// scanning from the last ')' rather than splitting on whitespace naively.
func processState(pid int) (byte, error) {
	path := "/proc/" + strconv.Itoa(pid) + "/stat"
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, wrapf(KindIO, path, err, "read process stat")
	}
	text := string(data)
	paren := strings.LastIndexByte(text, ')')
	if paren < 0 || paren+2 >= len(text) {
		return 0, errf(KindParseError, path, "malformed stat line: %q", text)
	}
	fields := strings.Fields(text[paren+1:])
	if len(fields) < 1 {
		return 0, errf(KindParseError, path, "missing state field in: %q", text)
	}
	return fields[0][0], nil
}
