package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with the requested size in bytes, standing in for an
// audio recording in tests that only care about presence and size. Sizes <= 0
// produce a one-byte file so os.Stat never reports an empty upload.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		t.Fatalf("truncate %s to %d bytes: %v", path, size, err)
	}
	if _, err := f.WriteAt([]byte{0x52}, size-1); err != nil {
		f.Close()
		t.Fatalf("write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}
