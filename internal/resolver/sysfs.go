package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SysfsTopology reads the SCSI device tree the way the Linux kernel
// exposes it: every tape and generic node has a
// /sys/class/<class>/<name>/device link whose resolved basename is the
// device's h:c:t:l address.
type SysfsTopology struct {
	SysRoot string // "" means /sys
	DevRoot string // "" means /dev
}

func (t SysfsTopology) sys() string {
	if t.SysRoot == "" {
		return "/sys"
	}
	return t.SysRoot
}

func (t SysfsTopology) dev() string {
	if t.DevRoot == "" {
		return "/dev"
	}
	return t.DevRoot
}

// IdentityOf reports the SCSI address of a tape or generic device node.
// It keys the class directory off the node name: sg* live under
// scsi_generic, st/nst variants under scsi_tape.
func (t SysfsTopology) IdentityOf(path string) (Identity, error) {
	name := filepath.Base(path)
	class := "scsi_tape"
	if strings.HasPrefix(name, "sg") {
		class = "scsi_generic"
	}
	link := filepath.Join(t.sys(), "class", class, name, "device")
	target, err := filepath.EvalSymlinks(link)
	if err != nil {
		return Identity{}, fmt.Errorf("reading %s: %w", link, err)
	}
	return ParseIdentity(filepath.Base(target))
}

// ListGenericNodes reports the /dev path of every sg class entry.
func (t SysfsTopology) ListGenericNodes() ([]string, error) {
	dir := filepath.Join(t.sys(), "class", "scsi_generic")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var nodes []string
	for _, e := range entries {
		nodes = append(nodes, filepath.Join(t.dev(), e.Name()))
	}
	return nodes, nil
}
