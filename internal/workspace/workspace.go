package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/giantswarm/sysroot/internal/fileutil"
	"github.com/giantswarm/sysroot/internal/sentinel"
)

const (
	// ErrEmptySourceDir is returned when no source directory is given.
	ErrEmptySourceDir = sentinel.Error("source directory must not be empty")

	// ErrNoParent is returned when the source directory has no parent to
	// hold the lock file.
	ErrNoParent = sentinel.Error("source directory has no parent")

	// ErrLockFileMissing is returned when the lock file next to the source
	// directory cannot be found.
	ErrLockFileMissing = sentinel.Error("lock file not found")
)

const (
	manifestFileName = "Cargo.toml"
	libFileName      = "lib.rs"
	targetDirName    = "target"

	// DefaultLockFileName is the lock file copied from the parent of the
	// source directory.
	DefaultLockFileName = "Cargo.lock"
)

// Options configures New.
type Options struct {
	TempRoot     string       // parent of the workspace; "" uses os.TempDir
	LockFileName string       // "" uses DefaultLockFileName
	Logger       *slog.Logger // nil uses slog.Default
}

// Workspace is a generated build project in a private temp directory.
type Workspace struct {
	dir string
	log *slog.Logger
}

// New creates a workspace for the sources in srcDir. The lock file is taken
// from srcDir's parent and copied verbatim. On any failure the partially
// created directory is removed and nothing is left behind.
func New(srcDir string, opts Options) (*Workspace, error) {
	if srcDir == "" {
		return nil, ErrEmptySourceDir
	}
	parent := filepath.Dir(filepath.Clean(srcDir))
	if parent == filepath.Clean(srcDir) {
		return nil, fmt.Errorf("%w: %s", ErrNoParent, srcDir)
	}
	lockName := opts.LockFileName
	if lockName == "" {
		lockName = DefaultLockFileName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dir, err := os.MkdirTemp(opts.TempRoot, "sysroot-build-")
	if err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	ws := &Workspace{dir: dir, log: logger}

	if err := ws.populate(srcDir, filepath.Join(parent, lockName)); err != nil {
		ws.Close()
		return nil, err
	}
	logger.Debug("workspace prepared", "dir", dir, "src_dir", srcDir)
	return ws, nil
}

func (w *Workspace) populate(srcDir, lockSrc string) error {
	if err := fileutil.CopyFile(lockSrc, w.LockPath(), nil); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("copy lock file %s: %w", lockSrc, ErrLockFileMissing)
		}
		return fmt.Errorf("copy lock file %s: %w", lockSrc, err)
	}

	manifest, err := NewManifest(srcDir).Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(w.ManifestPath(), manifest, 0o644); err != nil {
		return fmt.Errorf("write manifest file: %w", err)
	}

	// The library contributes no code; it only exists to pull in its
	// dependencies.
	if err := os.WriteFile(w.LibPath(), nil, 0o644); err != nil {
		return fmt.Errorf("create lib file: %w", err)
	}
	return nil
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string { return w.dir }

// ManifestPath returns the generated manifest path.
func (w *Workspace) ManifestPath() string { return filepath.Join(w.dir, manifestFileName) }

// LockPath returns the copied lock file path. The copy is always named
// Cargo.lock so the builder finds it next to the manifest, whatever name
// Options.LockFileName gave the source file.
func (w *Workspace) LockPath() string { return filepath.Join(w.dir, DefaultLockFileName) }

// LibPath returns the empty library entry point.
func (w *Workspace) LibPath() string { return filepath.Join(w.dir, libFileName) }

// TargetDir is where the builder is told to put all of its output.
func (w *Workspace) TargetDir() string { return filepath.Join(w.dir, targetDirName) }

// OutputDir returns the directory holding the built artifacts for target.
func (w *Workspace) OutputDir(target string) string {
	return filepath.Join(w.TargetDir(), target, "release", "deps")
}

// Close removes the workspace tree. Failures are logged, not returned: the
// directory is uniquely named under a temp root and harmless if leaked.
func (w *Workspace) Close() {
	if w == nil || w.dir == "" {
		return
	}
	if err := os.RemoveAll(w.dir); err != nil {
		w.log.Debug("failed to remove workspace", "dir", w.dir, "err", err)
	}
}
