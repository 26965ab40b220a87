package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTopology serves identities from a fixed map, standing in for a
// kernel device tree.
type fakeTopology struct {
	identities map[string]Identity
	generics   []string
}

func (f fakeTopology) IdentityOf(path string) (Identity, error) {
	id, ok := f.identities[path]
	if !ok {
		return Identity{}, fmt.Errorf("no identity for %s", path)
	}
	return id, nil
}

func (f fakeTopology) ListGenericNodes() ([]string, error) {
	return f.generics, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

// devTree builds a /dev-like tree with tape nodes, sg nodes, and the
// by-id/by-path symlinks udev would create for one drive.
func devTree(t *testing.T) string {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	dev := filepath.Join(base, "dev")

	for _, name := range []string{"nst0", "st0", "sg2", "sg3"} {
		touch(t, filepath.Join(dev, name))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dev, "tape", "by-id"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dev, "tape", "by-path"), 0o755))
	require.NoError(t, os.Symlink("../../nst0",
		filepath.Join(dev, "tape", "by-id", "scsi-350110a0012345678-nst")))
	require.NoError(t, os.Symlink("../../nst0",
		filepath.Join(dev, "tape", "by-path", "pci-0000:3b:00.0-sas-phy4-lun-0-nst")))
	return dev
}

func TestResolveIdentityInvariance(t *testing.T) {
	dev := devTree(t)
	drive := Identity{Host: 4, Channel: 0, Target: 5, Lun: 0}
	top := fakeTopology{
		identities: map[string]Identity{
			filepath.Join(dev, "nst0"): drive,
			filepath.Join(dev, "st0"):  drive,
			filepath.Join(dev, "sg2"):  {Host: 0, Channel: 0, Target: 0, Lun: 0},
			filepath.Join(dev, "sg3"):  drive,
		},
		generics: []string{filepath.Join(dev, "sg2"), filepath.Join(dev, "sg3")},
	}
	r := New(top, nil)

	refs := map[string]string{
		"no-rewind tape node": filepath.Join(dev, "nst0"),
		"rewind tape node":    filepath.Join(dev, "st0"),
		"by-id symlink":       filepath.Join(dev, "tape", "by-id", "scsi-350110a0012345678-nst"),
		"by-path symlink":     filepath.Join(dev, "tape", "by-path", "pci-0000:3b:00.0-sas-phy4-lun-0-nst"),
	}
	for name, ref := range refs {
		t.Run(name, func(t *testing.T) {
			node, err := r.Resolve(ref)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dev, "sg3"), node)
		})
	}
}

func TestResolveTracksRenumbering(t *testing.T) {
	dev := devTree(t)
	drive := Identity{Host: 4, Target: 5}

	before := fakeTopology{
		identities: map[string]Identity{
			filepath.Join(dev, "nst0"): drive,
			filepath.Join(dev, "sg3"):  drive,
		},
		generics: []string{filepath.Join(dev, "sg3")},
	}
	node, err := New(before, nil).Resolve(filepath.Join(dev, "nst0"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dev, "sg3"), node)

	// Same drive, rediscovered as sg7 after a reboot.
	touch(t, filepath.Join(dev, "sg7"))
	after := fakeTopology{
		identities: map[string]Identity{
			filepath.Join(dev, "nst0"): drive,
			filepath.Join(dev, "sg7"):  drive,
		},
		generics: []string{filepath.Join(dev, "sg7")},
	}
	node, err = New(after, nil).Resolve(filepath.Join(dev, "nst0"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dev, "sg7"), node)
}

func TestResolveFailures(t *testing.T) {
	dev := devTree(t)
	drive := Identity{Host: 4, Target: 5}

	t.Run("nonexistent raw sg node", func(t *testing.T) {
		_, err := New(fakeTopology{}, nil).Resolve(filepath.Join(dev, "sg99"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoMatch))
	})

	t.Run("no sg node carries the drive identity", func(t *testing.T) {
		top := fakeTopology{
			identities: map[string]Identity{
				filepath.Join(dev, "nst0"): drive,
				filepath.Join(dev, "sg2"):  {Host: 1},
			},
			generics: []string{filepath.Join(dev, "sg2")},
		}
		_, err := New(top, nil).Resolve(filepath.Join(dev, "nst0"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoMatch))
	})

	t.Run("two sg nodes carry the same identity", func(t *testing.T) {
		top := fakeTopology{
			identities: map[string]Identity{
				filepath.Join(dev, "nst0"): drive,
				filepath.Join(dev, "sg2"):  drive,
				filepath.Join(dev, "sg3"):  drive,
			},
			generics: []string{filepath.Join(dev, "sg2"), filepath.Join(dev, "sg3")},
		}
		_, err := New(top, nil).Resolve(filepath.Join(dev, "nst0"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAmbiguous))
	})

	t.Run("not a tape device node", func(t *testing.T) {
		touch(t, filepath.Join(dev, "sda"))
		_, err := New(fakeTopology{}, nil).Resolve(filepath.Join(dev, "sda"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoMatch))
	})
}

func TestResolveRawGenericPassthrough(t *testing.T) {
	dev := devTree(t)
	// An empty topology proves the node is returned after an existence
	// check alone, with no identity matching.
	node, err := New(fakeTopology{}, nil).Resolve(filepath.Join(dev, "sg2"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dev, "sg2"), node)
}

func TestClassify(t *testing.T) {
	cases := map[string]RefClass{
		"/dev/sg3":   ClassGeneric,
		"/dev/pass2": ClassGeneric,
		"/dev/nst0":  ClassTape,
		"/dev/st0":   ClassTape,
		"/dev/st0l":  ClassTape,
		"/dev/nst2m": ClassTape,
		"/dev/sa0":   ClassTape,
		"/dev/nsa0":  ClassTape,
		"/dev/esa0":  ClassTape,
		"/dev/tape/by-id/scsi-350110a0012345678-nst":            ClassByID,
		"/dev/tape/by-path/pci-0000:3b:00.0-sas-phy4-lun-0-nst": ClassByPath,
		"/dev/sda":  ClassUnknown,
		"/dev/null": ClassUnknown,
	}
	for ref, want := range cases {
		assert.Equal(t, want, Classify(ref), ref)
	}
}

func TestParseIdentity(t *testing.T) {
	id, err := ParseIdentity("4:0:5:0")
	require.NoError(t, err)
	assert.Equal(t, Identity{Host: 4, Channel: 0, Target: 5, Lun: 0}, id)
	assert.Equal(t, "4:0:5:0", id.String())

	for _, bad := range []string{"", "4:0:5", "4:0:5:0:1", "a:b:c:d"} {
		_, err := ParseIdentity(bad)
		assert.Error(t, err, bad)
	}
}
