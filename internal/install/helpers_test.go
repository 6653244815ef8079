package install

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// writeTree creates files (name -> content) in dir.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// readTree returns the regular files of dir as name -> content.
func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name())) //nolint:gosec // G304: test path
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		out[e.Name()] = string(data)
	}
	return out
}

func sameTree(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}

// faultFS delegates to OSFS but can fail selected operations.
type faultFS struct {
	OSFS
	failRename func(oldpath, newpath string) error
	failRemove func(path string) error
}

func (f faultFS) Rename(oldpath, newpath string) error {
	if f.failRename != nil {
		if err := f.failRename(oldpath, newpath); err != nil {
			return err
		}
	}
	return f.OSFS.Rename(oldpath, newpath)
}

func (f faultFS) RemoveAll(path string) error {
	if f.failRemove != nil {
		if err := f.failRemove(path); err != nil {
			return err
		}
	}
	return f.OSFS.RemoveAll(path)
}
