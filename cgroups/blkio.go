/*
   Copyright The containerd Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package cgroups

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// NewBlkio returns a Blkio controller given the root folder of cgroups.
func NewBlkio(root string) *blkioController {
	return &blkioController{
		root: filepath.Join(root, string(Blkio)),
	}
}

type blkioController struct {
	root string
}

func (b *blkioController) Name() Name {
	return Blkio
}

func (b *blkioController) Path(path string) string {
	return filepath.Join(b.root, path)
}

func (b *blkioController) Create(path string, resources *Resources) error {
	if err := os.MkdirAll(b.Path(path), defaultDirPerm); err != nil {
		return err
	}
	if resources.BlockIO == nil {
		return nil
	}
	for _, t := range createBlkioSettings(resources.BlockIO) {
		if err := ioutil.WriteFile(
			filepath.Join(b.Path(path), fmt.Sprintf("blkio.%s", t.name)),
			t.value,
			defaultFilePerm,
		); err != nil {
			return err
		}
	}
	return nil
}

func (b *blkioController) Update(path string, resources *Resources) error {
	return b.Create(path, resources)
}

func (b *blkioController) Stat(path string, stats *Stats) error {
	if stats.Blkio == nil {
		stats.Blkio = &BlkIOStat{}
	}
	settings := []blkioStatSettings{
		{name: "throttle.io_serviced", entry: &stats.Blkio.IoServicedRecursive},
		{name: "throttle.io_service_bytes", entry: &stats.Blkio.IoServiceBytesRecursive},
	}
	// CFQ-enabled kernels expose the finer-grained recursive files; prefer
	// those when present.
	if _, err := os.Lstat(filepath.Join(b.Path(path), "blkio.io_serviced_recursive")); err == nil {
		settings = []blkioStatSettings{
			{name: "sectors_recursive", entry: &stats.Blkio.SectorsRecursive},
			{name: "io_service_bytes_recursive", entry: &stats.Blkio.IoServiceBytesRecursive},
			{name: "io_serviced_recursive", entry: &stats.Blkio.IoServicedRecursive},
			{name: "io_service_time_recursive", entry: &stats.Blkio.IoServiceTimeRecursive},
			{name: "io_wait_time_recursive", entry: &stats.Blkio.IoWaitTimeRecursive},
			{name: "io_merged_recursive", entry: &stats.Blkio.IoMergedRecursive},
			{name: "time_recursive", entry: &stats.Blkio.IoTimeRecursive},
		}
	}
	for _, t := range settings {
		if err := b.readEntry(path, t.name, t.entry); err != nil {
			return err
		}
	}
	return nil
}

func (b *blkioController) readEntry(path, name string, entry *[]*BlkIOEntry) error {
	f, err := os.Open(filepath.Join(b.Path(path), fmt.Sprintf("blkio.%s", name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if err := sc.Err(); err != nil {
			return err
		}
		// format: major:minor op amount
		fields := strings.FieldsFunc(sc.Text(), splitBlkIOStatLine)
		if len(fields) < 3 {
			if len(fields) == 2 && fields[0] == "Total" {
				continue
			}
			return fmt.Errorf("invalid blkio stat line: %q", sc.Text())
		}
		major, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return err
		}
		minor, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return err
		}
		op := ""
		valueField := 2
		if len(fields) == 4 {
			op = fields[2]
			valueField = 3
		}
		v, err := strconv.ParseUint(fields[valueField], 10, 64)
		if err != nil {
			return err
		}
		*entry = append(*entry, &BlkIOEntry{
			Major: major,
			Minor: minor,
			Op:    op,
			Value: v,
		})
	}
	return nil
}

func createBlkioSettings(blkio *BlockIOResource) []blkioSettings {
	var settings []blkioSettings
	if blkio.Weight != 0 {
		settings = append(settings, blkioSettings{
			name:  "weight",
			value: []byte(strconv.FormatUint(blkio.Weight, 10)),
		})
	}
	if blkio.LeafWeight != 0 {
		settings = append(settings, blkioSettings{
			name:  "leaf_weight",
			value: []byte(strconv.FormatUint(blkio.LeafWeight, 10)),
		})
	}
	return settings
}

type blkioSettings struct {
	name  string
	value []byte
}

type blkioStatSettings struct {
	name  string
	entry *[]*BlkIOEntry
}

func splitBlkIOStatLine(r rune) bool {
	return r == ' ' || r == ':'
}
