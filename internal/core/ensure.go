package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/giantswarm/sysroot/internal/fingerprint"
	"github.com/giantswarm/sysroot/internal/install"
	"github.com/giantswarm/sysroot/internal/ledger"
	"github.com/giantswarm/sysroot/internal/sentinel"
	"github.com/giantswarm/sysroot/internal/workspace"
)

const (
	// ErrNilRunner is returned when no Runner is supplied.
	ErrNilRunner = sentinel.Error("runner must not be nil")

	// ErrInvalidMode is returned for an unknown BuildMode value.
	ErrInvalidMode = sentinel.Error("invalid build mode")

	// ErrNoLedger is returned by History when no ledger path is configured.
	ErrNoLedger = sentinel.Error("build ledger not configured")
)

// Request describes what to build.
type Request struct {
	SrcDir  string
	Mode    BuildMode
	Version VersionInfo
	Runner  Runner
}

// Result describes the installation after a successful Ensure.
type Result struct {
	LibDir      string
	Fingerprint fingerprint.Fingerprint
	Built       bool     // false when the existing installation was current
	Artifacts   []string // installed file names; nil when Built is false
}

// Ensure makes the installation under layout match req. When the stored
// fingerprint equals the computed one nothing is touched. Otherwise the
// library is built in a private workspace, staged next to the installation,
// and promoted with cfg.InstallStrategy. Failures before the promotion leave
// the existing installation as it was.
func Ensure(ctx context.Context, layout Layout, req Request, cfg Config) (*Result, error) {
	if err := errors.Join(layout.Validate(), cfg.Validate()); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if req.Runner == nil {
		return nil, ErrNilRunner
	}
	if !req.Mode.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, req.Mode)
	}
	if req.SrcDir == "" {
		return nil, workspace.ErrEmptySourceDir
	}
	srcDir, err := filepath.Abs(req.SrcDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source directory: %w", err)
	}

	log := cfg.logger().With("target", layout.Target)
	fp := fingerprint.Compute(srcDir, req.Version.Identity())
	libDir := layout.LibDir()

	if current(libDir, fp) {
		log.Debug("sysroot up to date", "lib_dir", libDir, "fingerprint", fp)
		return &Result{LibDir: libDir, Fingerprint: fp}, nil
	}

	if cfg.InstallLock {
		lock, err := acquire(ctx, layout.LockPath(), cfg.LockTimeout, log)
		if err != nil {
			return nil, err
		}
		defer lock.Release()

		// Another process may have installed the same build while we waited.
		if current(libDir, fp) {
			log.Debug("sysroot installed by another process", "lib_dir", libDir, "fingerprint", fp)
			return &Result{LibDir: libDir, Fingerprint: fp}, nil
		}
	}

	return rebuild(ctx, layout, req, cfg, srcDir, fp, log)
}

// current reports whether the installation in libDir carries fp.
func current(libDir string, fp fingerprint.Fingerprint) bool {
	stored, ok := fingerprint.Read(libDir)
	return ok && stored == fp
}

func acquire(ctx context.Context, path string, timeout time.Duration, log *slog.Logger) (*install.Lock, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	lock, err := install.AcquireLock(ctx, path, log)
	if err != nil {
		return nil, err
	}
	if waited := time.Since(start); waited > time.Second {
		log.Info("acquired install lock", "path", path, "waited", waited.Round(time.Millisecond))
	}
	return lock, nil
}

func rebuild(
	ctx context.Context,
	layout Layout,
	req Request,
	cfg Config,
	srcDir string,
	fp fingerprint.Fingerprint,
	log *slog.Logger,
) (*Result, error) {
	start := time.Now()
	libDir := layout.LibDir()

	ws, err := workspace.New(srcDir, workspace.Options{
		TempRoot:     cfg.TempDir,
		LockFileName: cfg.LockFileName,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("prepare build workspace: %w", err)
	}
	defer ws.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inv := Invocation{
		Mode:         req.Mode,
		ManifestPath: ws.ManifestPath(),
		Target:       layout.Target,
		TargetDir:    ws.TargetDir(),
		MetadataTag:  cfg.MetadataTag,
		LogDir:       ws.Dir(),
	}
	log.Info("building sysroot", "mode", req.Mode, "src_dir", srcDir, "workspace", ws.Dir())
	if err := req.Runner.Run(ctx, inv); err != nil {
		if errors.Is(err, ErrBuildFailed) || errors.Is(err, ErrBuildLaunch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	staging, err := install.NewStaging(layout.Root, log)
	if err != nil {
		return nil, fmt.Errorf("prepare staging: %w", err)
	}
	defer staging.Discard()

	artifacts, err := staging.Collect(ctx, ws.OutputDir(layout.Target), cfg.CopyConcurrency)
	if err != nil {
		return nil, fmt.Errorf("stage build output: %w", err)
	}
	if err := staging.WriteFingerprint(fp); err != nil {
		return nil, fmt.Errorf("stage fingerprint: %w", err)
	}
	if err := install.Install(cfg.FS, staging, libDir, cfg.InstallStrategy, log); err != nil {
		return nil, fmt.Errorf("install sysroot into %s: %w", libDir, err)
	}

	elapsed := time.Since(start)
	log.Info("sysroot installed",
		"lib_dir", libDir,
		"fingerprint", fp,
		"artifacts", len(artifacts),
		"elapsed", elapsed.Round(time.Millisecond),
	)

	if cfg.LedgerPath != "" {
		record(ctx, cfg.LedgerPath, ledger.Record{
			Target:      layout.Target,
			LibDir:      libDir,
			Fingerprint: fp,
			SrcDir:      srcDir,
			Commit:      req.Version.Commit,
			Mode:        req.Mode.String(),
			Artifacts:   len(artifacts),
			Duration:    elapsed,
			FinishedAt:  time.Now(),
		}, log)
	}

	return &Result{LibDir: libDir, Fingerprint: fp, Built: true, Artifacts: artifacts}, nil
}

// record appends r to the ledger at path. The installation is already in
// place, so failures are logged and not returned.
func record(ctx context.Context, path string, r ledger.Record, log *slog.Logger) {
	l, err := ledger.Open(ctx, path, log)
	if err != nil {
		log.Warn("failed to open build ledger", "path", path, "err", err)
		return
	}
	defer func() {
		if err := l.Close(); err != nil {
			log.Debug("failed to close build ledger", "path", path, "err", err)
		}
	}()
	if err := l.Append(ctx, r); err != nil {
		log.Warn("failed to record build", "path", path, "err", err)
	}
}

// History returns up to limit installs of target recorded in the ledger at
// path, newest first. limit <= 0 returns all of them.
func History(ctx context.Context, path, target string, limit int) ([]ledger.Record, error) {
	if path == "" {
		return nil, ErrNoLedger
	}
	l, err := ledger.Open(ctx, path, Logger())
	if err != nil {
		return nil, fmt.Errorf("open build ledger: %w", err)
	}
	defer l.Close() //nolint:errcheck // read-only use

	return l.History(ctx, target, limit)
}
