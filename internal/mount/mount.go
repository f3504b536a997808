// Package mount materializes a XAR archive's squashfs payload at a
// deterministic per-user, per-namespace mountpoint.
//
// Many unrelated invocations of the same archive must converge on exactly
// one live mount without a coordinator. The only shared state is the
// filesystem: every process computes the same mountpoint (Resolve), checks
// whether something already FUSE-mounted it, and only spawns the mount
// helper when nothing did. The per-mountpoint lockfile is not a mutex but
// a liveness signal: its mtime tells an external reaper the mount is in
// use. A window remains between the is-mounted check and the helper spawn;
// the helper is expected to fail cleanly on a busy mountpoint.
package mount

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/xerrors"
)

const (
	// DefaultHelper attaches a squashfs image to a mountpoint over FUSE.
	DefaultHelper = "squashfuse_ll"

	// helperTimeout is the idle-unmount timeout passed to the helper,
	// in seconds.
	helperTimeout = 870

	// The helper reporting success does not guarantee the kernel has
	// registered the mount yet, so we poll. There is no portable event
	// for mount-table changes; a tight busy-poll keeps startup latency
	// in the microseconds for the common case.
	mountDeadline = 9 * time.Second
	pollInterval  = 100 * time.Microsecond
)

// ErrMountTimeout is returned when the mount never became visible in time.
var ErrMountTimeout = xerrors.New("timed out waiting for mount")

// HelperError reports a mount helper that exited non-zero or died on a
// signal.
type HelperError struct {
	ExitCode int
	Signal   syscall.Signal // 0 unless the helper was killed
}

func (e *HelperError) Error() string {
	if e.Signal != 0 {
		return fmt.Sprintf("mount helper terminated by signal %d", e.Signal)
	}
	return fmt.Sprintf("mount helper exited with status %d", e.ExitCode)
}

// A Mounter mounts one archive. The zero values of Helper and the timing
// fields select the defaults.
type Mounter struct {
	// Archive is the path to the archive file.
	Archive string

	// Image is the parsed header view of the archive.
	Image Image

	// Config is the environment-derived resolution input.
	Config Config

	// Helper overrides DefaultHelper.
	Helper string

	mounted  func(string) bool
	deadline time.Duration
	interval time.Duration
}

// Resolve returns the mountpoint the archive would be mounted at, without
// side effects.
func (m *Mounter) Resolve() (string, error) {
	return Resolve(m.Image, m.Config)
}

// Mount drives the archive to a confirmed mount and returns the
// mountpoint: resolve, prepare the directories, open the lockfile, spawn
// the helper unless the mountpoint is already FUSE-backed, wait for the
// mount to become visible, and heartbeat the lockfile.
//
// Mounting is idempotent across processes; it is an error only if the
// helper fails or the mount never appears. Directories created before a
// failure are left in place for the next attempt.
func (m *Mounter) Mount() (string, error) {
	mountpoint, err := m.Resolve()
	if err != nil {
		return "", err
	}

	if err := makeDir(filepath.Dir(mountpoint)); err != nil {
		return "", err
	}
	lk, err := newLock(mountpoint)
	if err != nil {
		return "", err
	}
	if err := makeDir(mountpoint); err != nil {
		return "", err
	}

	if !m.isMounted(mountpoint) {
		if err := m.spawnHelper(mountpoint); err != nil {
			return "", err
		}
	} else {
		log.Printf("already mounted: %s", mountpoint)
	}

	if err := m.awaitMount(mountpoint); err != nil {
		return "", err
	}

	if err := lk.Touch(); err != nil {
		return "", err
	}
	return mountpoint, nil
}

func (m *Mounter) isMounted(mountpoint string) bool {
	if m.mounted != nil {
		return m.mounted(mountpoint)
	}
	return fuseMounted(mountpoint)
}

func (m *Mounter) spawnHelper(mountpoint string) error {
	helper := m.Helper
	if helper == "" {
		helper = DefaultHelper
	}
	opts := fmt.Sprintf("-ooffset=%d,timeout=%d", m.Image.Offset, helperTimeout)
	log.Printf("mounting %s at %s", m.Archive, mountpoint)
	cmd := exec.Command(helper, opts, m.Archive, mountpoint)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ee, ok := err.(*exec.ExitError); ok {
		ws := ee.Sys().(syscall.WaitStatus)
		if ws.Signaled() {
			return &HelperError{Signal: ws.Signal()}
		}
		return &HelperError{ExitCode: ws.ExitStatus()}
	}
	return xerrors.Errorf("%s: %w", helper, err)
}

func (m *Mounter) awaitMount(mountpoint string) error {
	deadline, interval := m.deadline, m.interval
	if deadline == 0 {
		deadline = mountDeadline
	}
	if interval == 0 {
		interval = pollInterval
	}
	start := time.Now()
	for !m.isMounted(mountpoint) {
		if time.Since(start) > deadline {
			return xerrors.Errorf("%s: %w", mountpoint, ErrMountTimeout)
		}
		time.Sleep(interval)
	}
	return nil
}

// makeDir creates dir owned by the effective uid/gid. A pre-existing
// directory is left exactly as found: repairing its mode or owner could
// clobber a concurrent mounter's state.
func makeDir(dir string) error {
	err := os.Mkdir(dir, 0o755)
	if os.IsExist(err) {
		return nil
	}
	if err != nil {
		return xerrors.Errorf("mkdir: %w", err)
	}
	log.Printf("created %s", dir)
	if err := os.Chown(dir, os.Geteuid(), os.Getegid()); err != nil {
		return xerrors.Errorf("chown %s: %w", dir, err)
	}
	return nil
}
