package sysroot

import (
	"log/slog"
	"time"
)

// ConfigSnapshot holds a copy of the configuration fields set by options.
// Exported only via export_test.go so that the _test package can verify
// option closures without reaching into internals.
type ConfigSnapshot struct {
	TempDir         string
	LockFileName    string
	MetadataTag     string
	InstallStrategy InstallStrategy
	InstallLock     bool
	LockTimeout     time.Duration
	CopyConcurrency int
	LedgerPath      string
	Logger          *slog.Logger
}

// ApplyOptionsForTesting applies opts to the default configuration and
// returns a snapshot of the result.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return ConfigSnapshot{
		TempDir:         cfg.TempDir,
		LockFileName:    cfg.LockFileName,
		MetadataTag:     cfg.MetadataTag,
		InstallStrategy: cfg.InstallStrategy,
		InstallLock:     cfg.InstallLock,
		LockTimeout:     cfg.LockTimeout,
		CopyConcurrency: cfg.CopyConcurrency,
		LedgerPath:      cfg.LedgerPath,
		Logger:          cfg.Logger,
	}
}
