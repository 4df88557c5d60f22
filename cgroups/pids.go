package cgroups

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func NewPids(root string) *pidsController {
	return &pidsController{root: filepath.Join(root, string(Pids))}
}

type pidsController struct {
	root string
}

func (p *pidsController) Name() Name {
	return Pids
}

func (p *pidsController) Path(path string) string {
	return filepath.Join(p.root, path)
}

func (p *pidsController) Create(path string, resources *Resources) error {
	if err := os.MkdirAll(p.Path(path), defaultDirPerm); err != nil {
		return err
	}
	if pids := resources.Pids; pids != nil && pids.Limit != 0 {
		limit := "max"
		if pids.Limit > 0 {
			limit = strconv.FormatInt(pids.Limit, 10)
		}
		if err := ioutil.WriteFile(filepath.Join(p.Path(path), "pids.max"), []byte(limit), defaultFilePerm); err != nil {
			return err
		}
	}
	return nil
}

func (p *pidsController) Update(path string, resources *Resources) error {
	return p.Create(path, resources)
}

func (p *pidsController) Stat(path string, stats *Stats) error {
	current, err := readUint(filepath.Join(p.Path(path), "pids.current"))
	if err != nil {
		return err
	}

	maxData, err := ioutil.ReadFile(filepath.Join(p.Path(path), "pids.max"))
	if err != nil {
		return err
	}
	max := strings.TrimSpace(string(maxData))
	var limit uint64
	if max != "max" {
		limit, err = parseUint(max, 10, 64)
		if err != nil {
			return err
		}
	}

	stats.Pids = &PidsStat{
		Current: current,
		Limit:   limit,
	}
	return nil
}
