package mount

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/xerrors"
)

func testMounter(t *testing.T) *Mounter {
	t.Helper()
	return &Mounter{
		Archive: "/path/to/test.xar",
		Image:   Image{UUID: "d5bf49e0", Offset: 4096},
		Config: Config{
			MountRoots:    []string{sharedRoot(t)},
			NamespaceFile: "/nonexistent",
		},
	}
}

func TestMountAlreadyMounted(t *testing.T) {
	m := testMounter(t)
	m.Helper = "/nonexistent/helper" // spawning it would fail loudly
	m.mounted = func(string) bool { return true }

	mountpoint, err := m.Mount()
	if err != nil {
		t.Fatal(err)
	}

	// Directories and the heartbeat lockfile must exist even when the
	// mount was someone else's.
	if fi, err := os.Stat(mountpoint); err != nil || !fi.IsDir() {
		t.Errorf("mountpoint %s: %v", mountpoint, err)
	}
	lockfile := filepath.Join(filepath.Dir(mountpoint), "lockfile."+filepath.Base(mountpoint))
	fi, err := os.Stat(lockfile)
	if err != nil {
		t.Fatal(err)
	}
	if d := time.Since(fi.ModTime()); d < 0 || d > time.Minute {
		t.Errorf("lockfile mtime not refreshed: %v old", d)
	}
}

func TestMountTimeout(t *testing.T) {
	m := testMounter(t)
	m.Helper = "/nonexistent/helper"
	// Report mounted once to skip the helper, then never again.
	first := true
	m.mounted = func(string) bool {
		mounted := first
		first = false
		return mounted
	}
	m.deadline = 50 * time.Millisecond
	m.interval = time.Millisecond

	start := time.Now()
	_, err := m.Mount()
	elapsed := time.Since(start)
	if !xerrors.Is(err, ErrMountTimeout) {
		t.Fatalf("Mount: got %v, want ErrMountTimeout", err)
	}
	if elapsed < m.deadline {
		t.Errorf("Mount gave up after %v, before the %v deadline", elapsed, m.deadline)
	}
	if elapsed > time.Second {
		t.Errorf("Mount took %v to time out with a %v deadline", elapsed, m.deadline)
	}
}

func TestMountSpawnsHelper(t *testing.T) {
	m := testMounter(t)
	argsFile := filepath.Join(t.TempDir(), "args")
	m.Helper = fakeHelper(t, fmt.Sprintf("echo \"$@\" > %s\n", argsFile))

	// Not mounted before the spawn, mounted afterwards.
	calls := 0
	m.mounted = func(string) bool {
		calls++
		return calls > 1
	}

	mountpoint, err := m.Mount()
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.TrimSpace(string(b))
	want := fmt.Sprintf("-ooffset=4096,timeout=870 %s %s", m.Archive, mountpoint)
	if got != want {
		t.Errorf("helper argv = %q, want %q", got, want)
	}
}

func TestMountHelperNotSpawnedWhenMounted(t *testing.T) {
	m := testMounter(t)
	marker := filepath.Join(t.TempDir(), "ran")
	m.Helper = fakeHelper(t, fmt.Sprintf("touch %s\n", marker))
	m.mounted = func(string) bool { return true }

	if _, err := m.Mount(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("helper was spawned although the mountpoint was already mounted")
	}
}

func TestMountHelperExitCode(t *testing.T) {
	m := testMounter(t)
	m.Helper = fakeHelper(t, "exit 3\n")
	m.mounted = func(string) bool { return false }
	m.deadline = 10 * time.Millisecond
	m.interval = time.Millisecond

	_, err := m.Mount()
	var he *HelperError
	if !xerrors.As(err, &he) {
		t.Fatalf("Mount: got %v, want *HelperError", err)
	}
	if he.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", he.ExitCode)
	}
	if he.Signal != 0 {
		t.Errorf("Signal = %d, want 0", he.Signal)
	}
}

func TestMountDirsSurviveFailure(t *testing.T) {
	m := testMounter(t)
	m.Helper = fakeHelper(t, "exit 1\n")
	m.mounted = func(string) bool { return false }

	if _, err := m.Mount(); err == nil {
		t.Fatal("Mount: got nil error from a failing helper")
	}
	// No rollback: the next invocation reuses what this one prepared.
	mountpoint, err := m.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(mountpoint); err != nil {
		t.Errorf("mountpoint removed after failure: %v", err)
	}
}

// fakeHelper writes body into an executable shell script and returns its
// path.
func fakeHelper(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakehelper")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}
