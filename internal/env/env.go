// Package env captures the environment-derived configuration of the
// xarfuse process. It is read once at startup; everything below main
// receives explicit values instead of consulting the environment.
package env

import (
	"os"

	"github.com/lpetre/xarfuse/internal/mount"
)

// MountSeedVar names the environment variable whose value salts the
// mountpoint. Mount namespace inodes are reused across boots and
// containers, so a uuid+namespace mountpoint can collide; setting a seed
// per deployment keeps them apart.
const MountSeedVar = "XAR_MOUNT_SEED"

// DefaultMountRoots are tried in order when the archive does not name a
// mount root.
var DefaultMountRoots = []string{"/mnt/xarfuse", "/dev/shm"}

// procMountNamespace is the handle whose inode identifies our mount
// namespace.
const procMountNamespace = "/proc/self/ns/mnt"

// MountConfig builds the mount configuration from the environment.
func MountConfig() mount.Config {
	return mount.Config{
		MountRoots:    DefaultMountRoots,
		Seed:          os.Getenv(MountSeedVar),
		NamespaceFile: procMountNamespace,
	}
}
