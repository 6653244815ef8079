package sysroot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/sysroot/internal/core"
	"github.com/giantswarm/sysroot/internal/ledger"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("sysroot: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("sysroot: %s must not be empty", name))
	}
}

// Option configures a Sysroot during construction via New.
//
// Several With* functions panic on invalid input. Option values are
// typically constants, so an invalid value is a programmer error and fails
// at construction instead of on the first build.
type Option func(*core.Config)

func defaultConfig() core.Config {
	return core.Config{
		LockFileName:    DefaultLockFileName,
		MetadataTag:     DefaultMetadataTag,
		InstallStrategy: DefaultInstallStrategy,
		CopyConcurrency: DefaultCopyConcurrency,
	}
}

// WithLogger sets the logger for builds of this Sysroot, overriding the
// package-level logger set with SetLogger. nil restores the package-level
// logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *core.Config) {
		c.Logger = l
	}
}

// WithTempDir sets the directory under which build workspaces are created.
//
// Default: os.TempDir().
//
// Panics if dir is empty.
func WithTempDir(dir string) Option {
	requireNonEmpty("temp directory", dir)
	return func(c *core.Config) {
		c.TempDir = dir
	}
}

// WithInstallStrategy sets how a staged build replaces the installed one.
//
// Default: InstallReplace.
//
// Panics if s is not a recognized strategy.
func WithInstallStrategy(s InstallStrategy) Option {
	if !s.IsValid() {
		panic(fmt.Sprintf("sysroot: invalid install strategy: %v", s))
	}
	return func(c *core.Config) {
		c.InstallStrategy = s
	}
}

// WithInstallLock serializes EnsureBuilt calls for the same root and target,
// including calls from other processes, with a file lock next to the target
// directory. A caller that waited for the lock re-reads the fingerprint and
// skips the build if another caller already installed it.
//
// Default: off.
func WithInstallLock() Option {
	return func(c *core.Config) {
		c.InstallLock = true
	}
}

// WithLockTimeout bounds the wait for the install lock. It has no effect
// without WithInstallLock.
//
// Default: no bound beyond the context passed to EnsureBuilt.
//
// Panics if d <= 0.
func WithLockTimeout(d time.Duration) Option {
	requirePositive("lock timeout", d)
	return func(c *core.Config) {
		c.LockTimeout = d
	}
}

// WithCopyConcurrency sets how many artifacts are copied into staging at once.
//
// Default: 4.
//
// Panics if n <= 0.
func WithCopyConcurrency(n int) Option {
	requirePositive("copy concurrency", n)
	return func(c *core.Config) {
		c.CopyConcurrency = n
	}
}

// WithLedger records every completed installation in a SQLite database at
// path, created if needed. A failure to record is logged and does not fail
// the build. Use History to read the records back.
//
// Panics if path is empty or contains '?' or '#', which the SQLite URI form
// cannot carry.
func WithLedger(path string) Option {
	requireNonEmpty("ledger path", path)
	if err := ledger.ValidatePath(path); err != nil {
		panic(fmt.Sprintf("sysroot: %v", err))
	}
	return func(c *core.Config) {
		c.LedgerPath = path
	}
}

// WithMetadataTag sets the value of __CARGO_DEFAULT_LIB_METADATA passed to
// the builder.
//
// Default: "cargo-careful".
//
// Panics if tag is empty.
func WithMetadataTag(tag string) Option {
	requireNonEmpty("metadata tag", tag)
	return func(c *core.Config) {
		c.MetadataTag = tag
	}
}

// WithLockFileName sets the name of the lock file copied from the parent of
// the source directory.
//
// Default: "Cargo.lock".
//
// Panics if name is empty.
func WithLockFileName(name string) Option {
	requireNonEmpty("lock file name", name)
	return func(c *core.Config) {
		c.LockFileName = name
	}
}
