package mount

import "golang.org/x/sys/unix"

// macOS has no single FUSE filesystem type: the emulation layer has gone by
// several names over the years.
var fuseTypes = map[string]bool{
	"osxfuse":   true,
	"osxfusefs": true,
	"macfuse":   true,
}

// fuseMounted reports whether path is backed by a FUSE mount. Errors mean
// "not mounted": a path we cannot statfs is one we have not mounted.
func fuseMounted(path string) bool {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return false
	}
	return fuseTypes[unix.ByteSliceToString(st.Fstypename[:])]
}
