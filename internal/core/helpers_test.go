package core

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRunner stands in for the external builder. It writes artifacts into
// the location the real builder would use.
type fakeRunner struct {
	artifacts map[string]string
	subdir    bool          // also create a directory in the output
	err       error         // returned instead of building
	delay     time.Duration // simulated build time

	mu    sync.Mutex
	calls []Invocation
}

func (f *fakeRunner) Run(_ context.Context, inv Invocation) error {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return f.err
	}
	out := filepath.Join(inv.TargetDir, inv.Target, "release", "deps")
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	for name, content := range f.artifacts {
		if err := os.WriteFile(filepath.Join(out, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	if f.subdir {
		return os.MkdirAll(filepath.Join(out, "incremental"), 0o755)
	}
	return nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) last() Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

var testArtifacts = map[string]string{
	"libstd-cargo-careful.rlib":   "std",
	"libcore-cargo-careful.rlib":  "core",
	"liballoc-cargo-careful.rlib": "alloc",
}

// sourceTree creates <tmp>/library with a lock file in <tmp> and returns the
// library path.
func sourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "library")
	if err := os.MkdirAll(filepath.Join(src, "std"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Cargo.lock"), []byte("version = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return src
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		TempDir:         t.TempDir(),
		LockFileName:    "Cargo.lock",
		MetadataTag:     DefaultMetadataTag,
		InstallStrategy: InstallReplace,
		CopyConcurrency: 2,
		Logger:          slog.New(slog.DiscardHandler),
	}
}

func testLayout(t *testing.T) Layout {
	t.Helper()
	return Layout{Root: t.TempDir(), Target: "x86_64-unknown-linux-gnu"}
}

// readTree returns the regular files under dir keyed by relative path.
func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("read tree %s: %v", dir, err)
	}
	return files
}

func sameTree(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// dirNames lists the entry names directly under dir.
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
	return names
}

// renameFailFS fails renames of a staging directory onto target. Other
// renames, such as restoring a directory set aside, succeed.
type renameFailFS struct {
	target string
}

func (f renameFailFS) Rename(oldpath, newpath string) error {
	if newpath == f.target && strings.HasPrefix(filepath.Base(oldpath), "sysroot-stage-") {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrPermission}
	}
	return os.Rename(oldpath, newpath)
}

func (renameFailFS) RemoveAll(path string) error { return os.RemoveAll(path) }

func (renameFailFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
