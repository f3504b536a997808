package mount

import "golang.org/x/sys/unix"

// fuseMounted reports whether path is backed by a FUSE mount. Errors mean
// "not mounted": a path we cannot statfs is one we have not mounted.
func fuseMounted(path string) bool {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return false
	}
	return st.Type == unix.FUSE_SUPER_MAGIC
}
