package cgroups

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
)

func NewNetPrio(root string) *netprioController {
	return &netprioController{root: filepath.Join(root, string(NetPrio))}
}

type netprioController struct {
	root string
}

func (n *netprioController) Name() Name {
	return NetPrio
}

func (n *netprioController) Path(path string) string {
	return filepath.Join(n.root, path)
}

func (n *netprioController) Create(path string, resources *Resources) error {
	if err := os.MkdirAll(n.Path(path), defaultDirPerm); err != nil {
		return err
	}
	if net := resources.Network; net != nil {
		for _, prio := range net.Priorities {
			if err := ioutil.WriteFile(
				filepath.Join(n.Path(path), "net_prio.ifpriomap"),
				[]byte(fmt.Sprintf("%s %d", prio.Name, prio.Priority)),
				defaultFilePerm,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *netprioController) Update(path string, resources *Resources) error {
	return n.Create(path, resources)
}
