package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrNoMatch is returned when no sg node corresponds to the reference's
// physical device.
var ErrNoMatch = errors.New("no matching sg node")

// ErrAmbiguous is returned when more than one sg node carries the
// reference's identity. That signals a kernel enumeration inconsistency the
// operator must resolve; guessing a node could point diagnostics at the
// wrong drive.
var ErrAmbiguous = errors.New("ambiguous sg node match")

// Identity is a device's address in the SCSI device tree: host adapter,
// channel, target id, lun. Two nodes with equal Identity are interfaces to
// the same physical device.
type Identity struct {
	Host    int `json:"host"`
	Channel int `json:"channel"`
	Target  int `json:"target"`
	Lun     int `json:"lun"`
}

func (id Identity) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", id.Host, id.Channel, id.Target, id.Lun)
}

// ParseIdentity parses the kernel's h:c:t:l form, e.g. "4:0:5:0".
func ParseIdentity(s string) (Identity, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Identity{}, fmt.Errorf("malformed scsi address %q", s)
	}
	var nums [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Identity{}, fmt.Errorf("malformed scsi address %q", s)
		}
		nums[i] = n
	}
	return Identity{Host: nums[0], Channel: nums[1], Target: nums[2], Lun: nums[3]}, nil
}

// Topology is the read-only view of the SCSI device tree the resolver
// matches against: sysfs on Linux, camcontrol on FreeBSD, synthetic
// fixtures in tests.
type Topology interface {
	// IdentityOf reports the SCSI address of the device node at path.
	IdentityOf(path string) (Identity, error)
	// ListGenericNodes reports the device paths of all SCSI generic
	// (passthrough) nodes currently present.
	ListGenericNodes() ([]string, error)
}

// RefClass is the syntactic class of a device reference.
type RefClass int

const (
	ClassUnknown RefClass = iota
	ClassGeneric          // /dev/sg3, /dev/pass2
	ClassTape             // /dev/nst0, /dev/st0l, /dev/sa0, /dev/nsa0
	ClassByID             // /dev/tape/by-id/...
	ClassByPath           // /dev/tape/by-path/...
)

func (c RefClass) String() string {
	switch c {
	case ClassGeneric:
		return "generic"
	case ClassTape:
		return "tape"
	case ClassByID:
		return "by-id"
	case ClassByPath:
		return "by-path"
	}
	return "unknown"
}

var (
	// sg on Linux, pass on FreeBSD
	genericNameRe = regexp.MustCompile(`^(sg|pass)\d+$`)
	// st/nst with optional mode suffix on Linux, sa/nsa/esa on FreeBSD
	tapeNameRe = regexp.MustCompile(`^(n?st\d+[lma]?|[en]?sa\d+)$`)
)

// Classify reports the syntactic class of a device reference.
func Classify(ref string) RefClass {
	switch {
	case strings.Contains(ref, "/by-id/"):
		return ClassByID
	case strings.Contains(ref, "/by-path/"):
		return ClassByPath
	case genericNameRe.MatchString(filepath.Base(ref)):
		return ClassGeneric
	case tapeNameRe.MatchString(filepath.Base(ref)):
		return ClassTape
	}
	return ClassUnknown
}

// Resolver maps a device reference to the sg node currently bound to the
// same physical drive. sg numbering is assigned by discovery order at boot
// and drifts over time, so every resolution re-derives the node from the
// live topology; nothing is cached between calls.
type Resolver struct {
	top Topology
	log *zap.Logger
}

// New returns a Resolver matching against top. A nil logger disables
// diagnostics.
func New(top Topology, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{top: top, log: log}
}

// Resolve maps ref to the current sg node for the same physical drive.
// References may be raw sg nodes, raw tape nodes, or by-id/by-path
// symlinks; all forms naming the same drive resolve to the same node.
// Fails with ErrNoMatch when nothing matches and ErrAmbiguous when more
// than one sg node carries the drive's identity.
func (r *Resolver) Resolve(ref string) (string, error) {
	if _, err := os.Lstat(ref); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNoMatch, ref, err)
	}
	node, err := filepath.EvalSymlinks(ref)
	if err != nil {
		return "", fmt.Errorf("%w: resolving %s: %v", ErrNoMatch, ref, err)
	}
	r.log.Debug("classified device reference",
		zap.String("reference", ref),
		zap.String("class", Classify(ref).String()),
		zap.String("node", node))

	switch Classify(node) {
	case ClassGeneric:
		// The caller handed us an sg node directly. There is no identity
		// to cross-check it against, so trust it, but note the hazard:
		// after a reboot it may belong to a different device.
		r.log.Warn("raw sg node passed; identity matching skipped",
			zap.String("node", node))
		return node, nil
	case ClassTape:
	default:
		return "", fmt.Errorf("%w: %s does not name a tape device node", ErrNoMatch, node)
	}

	want, err := r.top.IdentityOf(node)
	if err != nil {
		return "", fmt.Errorf("%w: reading identity of %s: %v", ErrNoMatch, node, err)
	}

	candidates, err := r.top.ListGenericNodes()
	if err != nil {
		return "", fmt.Errorf("%w: listing sg nodes: %v", ErrNoMatch, err)
	}

	var matches []string
	for _, cand := range candidates {
		id, err := r.top.IdentityOf(cand)
		if err != nil {
			// Nodes can vanish between enumeration and identity read.
			r.log.Debug("skipping sg candidate", zap.String("node", cand), zap.Error(err))
			continue
		}
		if id == want {
			matches = append(matches, cand)
		}
	}

	switch len(matches) {
	case 1:
		r.log.Debug("resolved sg node",
			zap.String("reference", ref),
			zap.String("identity", want.String()),
			zap.String("node", matches[0]))
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: no sg node with identity %s for %s", ErrNoMatch, want, ref)
	default:
		return "", fmt.Errorf("%w: %s maps to %s", ErrAmbiguous, ref, strings.Join(matches, ", "))
	}
}
