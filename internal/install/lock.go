package install

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/sysroot/internal/fileutil"
	"github.com/gofrs/flock"
)

// lockRetryInterval is how often a contended install lock is retried.
const lockRetryInterval = 50 * time.Millisecond

// Lock is an exclusive cross-process lock guarding one sysroot target.
type Lock struct {
	fl  *flock.Flock
	log *slog.Logger
}

// AcquireLock blocks until the lock at path is held or ctx is done.
func AcquireLock(ctx context.Context, path string, logger *slog.Logger) (*Lock, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, fmt.Errorf("prepare install lock: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquire install lock %s: %w", path, err)
	}
	if !locked {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquire install lock %s: %w", path, ctx.Err())
		}
		return nil, fmt.Errorf("acquire install lock %s: lock not acquired", path)
	}
	return &Lock{fl: fl, log: logger}, nil
}

// Release unlocks and closes the lock file. The file itself stays on disk;
// deleting it could split waiters across two different inodes.
func (l *Lock) Release() {
	if l == nil || l.fl == nil {
		return
	}
	if err := l.fl.Close(); err != nil {
		l.log.Debug("failed to release install lock", "path", l.fl.Path(), "err", err)
	}
}
