package mount

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// sharedRootMode is the only permission pattern accepted on a mount root:
// sticky and world-writable, like /tmp. Anything looser or stricter would
// let another user claim or pre-create mountpoint directories.
const sharedRootMode = 0o1777

// Config carries the environment-derived inputs of mountpoint resolution.
// It is constructed once at the process boundary (see internal/env) so
// that resolution itself never reads the environment.
type Config struct {
	// MountRoots are candidate mount roots, tried in order, unless the
	// archive overrides the root.
	MountRoots []string

	// Seed distinguishes otherwise identical mountpoints. The kernel
	// aggressively reuses mount namespace ids, so the namespace inode
	// alone can collide across container restarts; the seed is the
	// operator's way out.
	Seed string

	// NamespaceFile is the handle whose inode identifies the caller's
	// mount namespace, normally /proc/self/ns/mnt.
	NamespaceFile string
}

// Image is the view of the archive header that mounting needs.
type Image struct {
	// Offset is where the squashfs image begins within the archive.
	Offset uint64

	// UUID is stable per archive build and names the mount directory.
	UUID string

	// MountRoot overrides root selection when non-empty.
	MountRoot string
}

// ErrNoMountRoot is returned when no candidate mount root carries mode 01777.
var ErrNoMountRoot = xerrors.New("no mount root with mode 01777")

func rootMode(path string) (uint32, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, err
	}
	return uint32(st.Mode) & 0o7777, nil
}

// findRoot picks the mount root: the archive's override if it names one
// (which must then match sharedRootMode exactly), otherwise the first
// candidate from cfg.MountRoots that does.
func findRoot(img Image, cfg Config) (string, error) {
	if img.MountRoot != "" {
		mode, err := rootMode(img.MountRoot)
		if err != nil {
			return "", xerrors.Errorf("mount root %s: %w", img.MountRoot, err)
		}
		if mode != sharedRootMode {
			return "", xerrors.Errorf("mount root %s has mode %04o: %w", img.MountRoot, mode, ErrNoMountRoot)
		}
		return img.MountRoot, nil
	}
	for _, candidate := range cfg.MountRoots {
		if mode, err := rootMode(candidate); err == nil && mode == sharedRootMode {
			return candidate, nil
		}
	}
	return "", ErrNoMountRoot
}

// mountDir returns the name of the mount directory: the archive uuid,
// suffixed with the seed and the mount namespace inode where available.
// Two processes in the same namespace with the same seed always agree on
// the name; that agreement is what lets them converge on one mount.
func mountDir(img Image, cfg Config) string {
	dir := img.UUID
	if cfg.Seed != "" && !strings.ContainsRune(cfg.Seed, os.PathSeparator) {
		dir += "-seed-" + cfg.Seed
	}
	var st unix.Stat_t
	if err := unix.Stat(cfg.NamespaceFile, &st); err == nil {
		dir += fmt.Sprintf("-ns-%d", st.Ino)
	}
	return dir
}

// Resolve maps the archive to its mountpoint:
// <root>/uid-<euid>/<uuid>[-seed-<seed>][-ns-<inode>]. It has no side
// effects and is deterministic for a fixed root mode, namespace and uid.
func Resolve(img Image, cfg Config) (string, error) {
	root, err := findRoot(img, cfg)
	if err != nil {
		return "", err
	}
	userDir := fmt.Sprintf("uid-%d", os.Geteuid())
	return filepath.Join(root, userDir, mountDir(img, cfg)), nil
}
