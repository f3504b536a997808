package mount

import (
	"path/filepath"
	"testing"
)

func TestFuseMountedNonexistent(t *testing.T) {
	if fuseMounted(filepath.Join(t.TempDir(), "does-not-exist")) {
		t.Error("fuseMounted(nonexistent path) = true, want false")
	}
}

func TestFuseMountedPlainDir(t *testing.T) {
	if fuseMounted(t.TempDir()) {
		t.Error("fuseMounted(plain directory) = true, want false")
	}
}
