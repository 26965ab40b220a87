package resolver

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// devlistRe matches one camcontrol devlist line, e.g.
// <IBM ULTRIUM-HH5 E4J1>   at scbus1 target 4 lun 0 (sa0,pass2)
var devlistRe = regexp.MustCompile(`at scbus(\d+) target (\d+) lun (\d+) \(([^)]+)\)`)

// CamTopology derives device identity from camcontrol devlist on FreeBSD,
// where tape nodes are /dev/saN (with n/e mode prefixes) and generic
// passthrough nodes are /dev/passN. CAM addresses carry bus, target, and
// lun; the channel component is always zero.
//
// devlist runs once per topology instance so every identity in one
// resolution pass comes from the same snapshot.
type CamTopology struct {
	// Devlist returns raw `camcontrol devlist` output. Nil runs the real
	// command; tests substitute fixtures.
	Devlist func() ([]byte, error)

	snapshot []camEntry
}

type camEntry struct {
	id    Identity
	names []string // peripheral names sharing the address: sa0, pass2, ...
}

func (t *CamTopology) entries() ([]camEntry, error) {
	if t.snapshot != nil {
		return t.snapshot, nil
	}
	run := t.Devlist
	if run == nil {
		run = exec.Command("camcontrol", "devlist").CombinedOutput
	}
	out, err := run()
	if err != nil {
		return nil, fmt.Errorf("camcontrol devlist: %w", err)
	}
	var entries []camEntry
	for _, line := range strings.Split(string(out), "\n") {
		m := devlistRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		bus, _ := strconv.Atoi(m[1])
		target, _ := strconv.Atoi(m[2])
		lun, _ := strconv.Atoi(m[3])
		entries = append(entries, camEntry{
			id:    Identity{Host: bus, Target: target, Lun: lun},
			names: strings.Split(m[4], ","),
		})
	}
	t.snapshot = entries
	return entries, nil
}

// IdentityOf reports the SCSI address of a /dev/saN or /dev/passN node.
// Mode prefixes (nsa0, esa0) collapse onto the base sa name camcontrol
// reports.
func (t *CamTopology) IdentityOf(path string) (Identity, error) {
	name := strings.TrimLeft(filepath.Base(path), "en")
	entries, err := t.entries()
	if err != nil {
		return Identity{}, err
	}
	for _, e := range entries {
		for _, n := range e.names {
			if n == name {
				return e.id, nil
			}
		}
	}
	return Identity{}, fmt.Errorf("%s not present in camcontrol devlist", path)
}

// ListGenericNodes reports /dev/passN for every devlist entry.
func (t *CamTopology) ListGenericNodes() ([]string, error) {
	entries, err := t.entries()
	if err != nil {
		return nil, err
	}
	var nodes []string
	for _, e := range entries {
		for _, n := range e.names {
			if strings.HasPrefix(n, "pass") {
				nodes = append(nodes, "/dev/"+n)
			}
		}
	}
	return nodes, nil
}
