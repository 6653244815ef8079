package core

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/giantswarm/sysroot/internal/install"
)

// InstallStrategy controls how a staged build replaces an existing
// installation.
type InstallStrategy = install.Strategy

const (
	// InstallReplace removes the installed directory and renames the staged
	// one into place. Between the two steps the library directory is absent;
	// a failure there leaves no installation. This is the default.
	InstallReplace = install.Replace

	// InstallSwap renames the installed directory aside before renaming the
	// staged one in, and puts it back if that rename fails. The previous
	// installation survives any failed install. Costs one extra rename and a
	// transient sibling directory.
	InstallSwap = install.Swap
)

// Config holds the settings of one EnsureBuilt call. All fields are read-only
// once the call starts.
type Config struct {
	// TempDir is the parent of build workspaces. "" uses os.TempDir.
	TempDir string

	// LockFileName is the lock file copied from the parent of the source
	// directory. Default: "Cargo.lock".
	LockFileName string

	// MetadataTag is exported to the builder as __CARGO_DEFAULT_LIB_METADATA.
	// Default: "cargo-careful".
	MetadataTag string

	// InstallStrategy selects how the staged build is promoted.
	// Default: InstallReplace.
	InstallStrategy InstallStrategy

	// InstallLock serializes concurrent EnsureBuilt calls for the same target
	// across processes with a file lock. Off by default; without it the last
	// rename wins.
	InstallLock bool

	// LockTimeout bounds the wait for the install lock. 0 waits as long as
	// the caller's context allows.
	LockTimeout time.Duration

	// CopyConcurrency is the number of artifacts copied into staging at once.
	// Default: 4.
	CopyConcurrency int

	// LedgerPath is the SQLite database recording completed installs.
	// "" disables the ledger.
	LedgerPath string

	// Logger overrides the package-level logger for this call.
	Logger *slog.Logger

	// FS performs the install renames and removals. nil uses the OS.
	FS install.FS
}

// Validate checks all Config invariants and returns an error describing every
// violation found.
func (c Config) Validate() error {
	var errs []error

	if c.LockFileName == "" {
		errs = append(errs, errors.New("lock file name must not be empty"))
	} else if filepath.Base(c.LockFileName) != c.LockFileName {
		errs = append(errs, fmt.Errorf("lock file name must be a bare file name, got %q", c.LockFileName))
	}
	if c.MetadataTag == "" {
		errs = append(errs, errors.New("metadata tag must not be empty"))
	}
	if !c.InstallStrategy.IsValid() {
		errs = append(errs, fmt.Errorf("invalid install strategy: %v", c.InstallStrategy))
	}
	if c.LockTimeout < 0 {
		errs = append(errs, fmt.Errorf("lock timeout must not be negative, got %s", c.LockTimeout))
	}
	if c.CopyConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("copy concurrency must be greater than 0, got %d", c.CopyConcurrency))
	}

	return errors.Join(errs...)
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return Logger()
}

// Layout locates one target's installation under a sysroot root.
type Layout struct {
	Root   string
	Target string
}

// Validate reports an empty root or target.
func (l Layout) Validate() error {
	var errs []error
	if l.Root == "" {
		errs = append(errs, errors.New("sysroot root must not be empty"))
	}
	if l.Target == "" {
		errs = append(errs, errors.New("target must not be empty"))
	}
	return errors.Join(errs...)
}

// TargetDir is <root>/lib/rustlib/<target>.
func (l Layout) TargetDir() string {
	return filepath.Join(l.Root, "lib", "rustlib", l.Target)
}

// LibDir is <root>/lib/rustlib/<target>/lib, the installed library directory.
func (l Layout) LibDir() string {
	return filepath.Join(l.TargetDir(), "lib")
}

// LockPath is the file locked when Config.InstallLock is set. It sits beside
// the target directory so that replacing the target's contents never touches
// it.
func (l Layout) LockPath() string {
	return l.TargetDir() + ".lock"
}
