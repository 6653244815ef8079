package install

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/giantswarm/sysroot/internal/fileutil"
	"github.com/giantswarm/sysroot/internal/sentinel"
)

const (
	// ErrInstallIndeterminate marks install failures after which the
	// previous installation may be gone and the new one is not in place.
	// Manual cleanup of the library directory is required.
	ErrInstallIndeterminate = sentinel.Error("sysroot installation left in an indeterminate state")

	// ErrAlreadyPromoted is returned when a Staging is installed twice.
	ErrAlreadyPromoted = sentinel.Error("staging directory already installed")

	// ErrInvalidStrategy is returned for an unknown Strategy value.
	ErrInvalidStrategy = sentinel.Error("invalid install strategy")
)

// Install promotes staging to libDir using strategy. fsys nil means OSFS.
func Install(fsys FS, staging *Staging, libDir string, strategy Strategy, logger *slog.Logger) error {
	if staging.promoted {
		return ErrAlreadyPromoted
	}
	if !strategy.IsValid() {
		return fmt.Errorf("%w: %v", ErrInvalidStrategy, strategy)
	}
	if fsys == nil {
		fsys = OSFS{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	exists, err := fileutil.Exists(libDir)
	if err != nil {
		return fmt.Errorf("inspect installed library dir: %w", err)
	}

	switch strategy {
	case Swap:
		err = swap(fsys, staging.dir, libDir, exists, logger)
	default:
		err = replace(fsys, staging.dir, libDir, exists)
	}
	if err != nil {
		return err
	}

	staging.promoted = true
	logger.Debug("library directory installed", "lib_dir", libDir, "strategy", strategy)
	return nil
}

func replace(fsys FS, stagingDir, libDir string, exists bool) error {
	if exists {
		// Clear out potentially outdated artifacts. From here on a failure
		// leaves no usable installation.
		if err := fsys.RemoveAll(libDir); err != nil {
			return fmt.Errorf("%w: clean sysroot target dir: %w", ErrInstallIndeterminate, err)
		}
	}
	if err := fsys.MkdirAll(filepath.Dir(libDir), 0o755); err != nil {
		return wrapIndeterminate(exists, fmt.Errorf("create target directory: %w", err))
	}
	if err := fsys.Rename(stagingDir, libDir); err != nil {
		return wrapIndeterminate(exists, fmt.Errorf("install sysroot: %w", err))
	}
	return nil
}

func swap(fsys FS, stagingDir, libDir string, exists bool, logger *slog.Logger) error {
	if err := fsys.MkdirAll(filepath.Dir(libDir), 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	var aside string
	if exists {
		aside = fmt.Sprintf("%s.old-%d-%d", libDir, os.Getpid(), time.Now().UnixNano())
		if err := fsys.Rename(libDir, aside); err != nil {
			return fmt.Errorf("move previous installation aside: %w", err)
		}
	}

	if err := fsys.Rename(stagingDir, libDir); err != nil {
		installErr := fmt.Errorf("install sysroot: %w", err)
		if aside == "" {
			return installErr
		}
		if rbErr := fsys.Rename(aside, libDir); rbErr != nil {
			return fmt.Errorf("%w: %w", ErrInstallIndeterminate,
				errors.Join(installErr, fmt.Errorf("restore previous installation from %s: %w", aside, rbErr)))
		}
		return installErr
	}

	if aside != "" {
		if err := fsys.RemoveAll(aside); err != nil {
			logger.Warn("failed to remove previous installation", "dir", aside, "err", err)
		}
	}
	return nil
}

func wrapIndeterminate(removed bool, err error) error {
	if removed {
		return fmt.Errorf("%w: %w", ErrInstallIndeterminate, err)
	}
	return err
}
