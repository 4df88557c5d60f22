package cgroups

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
)

func NewNetCls(root string) *netclsController {
	return &netclsController{root: filepath.Join(root, string(NetCLS))}
}

type netclsController struct {
	root string
}

func (n *netclsController) Name() Name {
	return NetCLS
}

func (n *netclsController) Path(path string) string {
	return filepath.Join(n.root, path)
}

func (n *netclsController) Create(path string, resources *Resources) error {
	if err := os.MkdirAll(n.Path(path), defaultDirPerm); err != nil {
		return err
	}
	if net := resources.Network; net != nil && net.ClassID != nil {
		if err := ioutil.WriteFile(
			filepath.Join(n.Path(path), "net_cls.classid"),
			[]byte(strconv.FormatUint(uint64(*net.ClassID), 10)),
			defaultFilePerm,
		); err != nil {
			return err
		}
	}
	return nil
}

func (n *netclsController) Update(path string, resources *Resources) error {
	return n.Create(path, resources)
}
