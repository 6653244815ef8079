package sysroot

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/giantswarm/sysroot/internal/core"
	"github.com/giantswarm/sysroot/internal/fingerprint"
	"github.com/giantswarm/sysroot/internal/ledger"
)

// Fingerprint identifies an installed build. It is stored in decimal in the
// library directory's .cargo-careful-hash file.
type Fingerprint = fingerprint.Fingerprint

// FingerprintFileName is the reserved file in the library directory that
// holds the fingerprint.
const FingerprintFileName = fingerprint.FileName

// Result describes the installation after a successful EnsureBuilt.
type Result = core.Result

// BuildRecord is one installation recorded in the ledger.
type BuildRecord = ledger.Record

// Sysroot locates one target's installation under a root directory. It is an
// immutable value and safe for concurrent use.
type Sysroot struct {
	root   string
	target string
	cfg    core.Config
}

// New returns a Sysroot for target under root.
//
// Panics if root or target is empty.
func New(root, target string, opts ...Option) Sysroot {
	requireNonEmpty("root", root)
	requireNonEmpty("target", target)

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("sysroot: invalid configuration: %v", err))
	}
	return Sysroot{root: filepath.Clean(root), target: target, cfg: cfg}
}

func (s Sysroot) layout() core.Layout {
	return core.Layout{Root: s.root, Target: s.target}
}

// Root returns the sysroot root directory.
func (s Sysroot) Root() string { return s.root }

// Target returns the target triple.
func (s Sysroot) Target() string { return s.target }

// TargetDir returns <root>/lib/rustlib/<target>.
func (s Sysroot) TargetDir() string { return s.layout().TargetDir() }

// LibDir returns <root>/lib/rustlib/<target>/lib, the installed library
// directory.
func (s Sysroot) LibDir() string { return s.layout().LibDir() }

// FingerprintPath returns the path of the fingerprint file in LibDir.
func (s Sysroot) FingerprintPath() string { return fingerprint.Path(s.LibDir()) }

// InstalledFingerprint returns the fingerprint of the current installation.
// The boolean is false when there is no installation or its fingerprint file
// is unreadable.
func (s Sysroot) InstalledFingerprint() (Fingerprint, bool) {
	return fingerprint.Read(s.LibDir())
}

// Fingerprint returns the fingerprint EnsureBuilt would install for srcDir
// and version. A relative srcDir is resolved against the working directory.
func (s Sysroot) Fingerprint(srcDir string, version VersionInfo) (Fingerprint, error) {
	if srcDir == "" {
		return 0, ErrEmptySourceDir
	}
	abs, err := filepath.Abs(srcDir)
	if err != nil {
		return 0, fmt.Errorf("resolve source directory: %w", err)
	}
	return fingerprint.Compute(abs, version.Identity()), nil
}

// EnsureBuilt makes LibDir hold a build of the library sources in srcDir for
// version. If the installed fingerprint already matches, it returns
// immediately with Result.Built false and does not call runner.
//
// Otherwise it generates a build workspace (copying the lock file from
// srcDir's parent), runs runner once, stages the produced artifacts inside
// Root, and installs them with the configured InstallStrategy. Any failure
// before the install step leaves the existing installation untouched.
//
// ctx bounds the wait for the install lock and is checked before the build
// starts. A build that has started is not interrupted.
func (s Sysroot) EnsureBuilt(
	ctx context.Context,
	srcDir string,
	mode BuildMode,
	version VersionInfo,
	runner Runner,
) (*Result, error) {
	return core.Ensure(ctx, s.layout(), core.Request{
		SrcDir:  srcDir,
		Mode:    mode,
		Version: version,
		Runner:  runner,
	}, s.cfg)
}

// History returns up to limit recorded installations of this target, newest
// first. limit <= 0 returns all of them. Returns ErrNoLedger unless the
// Sysroot was created WithLedger.
func (s Sysroot) History(ctx context.Context, limit int) ([]BuildRecord, error) {
	return core.History(ctx, s.cfg.LedgerPath, s.target, limit)
}
