package mount

import (
	"path/filepath"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// lock is an advisory per-mountpoint file handle. It is never released:
// the fd lives until process exit, and its mtime (refreshed by Touch) tells
// the external reaper that the mount is still in use. It is not a mutex;
// racing mounters are reconciled by the idempotent is-mounted check.
type lock struct {
	path string
	fd   int
}

// newLock opens or creates lockfile.<basename> next to the mount directory.
func newLock(mountpoint string) (*lock, error) {
	path := filepath.Join(filepath.Dir(mountpoint), "lockfile."+filepath.Base(mountpoint))
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_CLOEXEC, 0o600)
	if err != nil {
		return nil, xerrors.Errorf("open %s: %w", path, err)
	}
	return &lock{path: path, fd: fd}, nil
}

// Touch refreshes the lockfile's modification time to now.
func (l *lock) Touch() error {
	if err := touchNow(l.fd); err != nil {
		return xerrors.Errorf("touch %s: %w", l.path, err)
	}
	return nil
}
