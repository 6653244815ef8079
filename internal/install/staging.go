package install

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/giantswarm/sysroot/internal/fileutil"
	"github.com/giantswarm/sysroot/internal/fingerprint"
	"github.com/giantswarm/sysroot/internal/sentinel"
	"golang.org/x/sync/errgroup"
)

const (
	// ErrUnexpectedDirectory is returned when the builder's output directory
	// contains a subdirectory. The protocol only knows a flat layout.
	ErrUnexpectedDirectory = sentinel.Error("builder output directory must not contain directories")

	// ErrUnexpectedEntry is returned for output entries that are neither
	// regular files nor directories (symlinks, sockets, devices).
	ErrUnexpectedEntry = sentinel.Error("builder output directory contains a non-regular file")
)

// artifactCopyOptions keeps the builder's permissions and flushes each
// artifact to disk before the staging directory can be renamed into place,
// so a crash after the rename never exposes empty files.
var artifactCopyOptions = fileutil.CopyFileOptions{PreserveMode: true, Sync: true}

// DefaultCopyConcurrency bounds parallel artifact copies.
const DefaultCopyConcurrency = 4

// Staging is a populated-but-not-yet-installed library directory.
type Staging struct {
	dir      string
	promoted bool
	log      *slog.Logger
}

// NewStaging creates an empty staging directory inside root, creating root
// if needed. root must be on the same filesystem as the install target.
func NewStaging(root string, logger *slog.Logger) (*Staging, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := fileutil.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("prepare staging root: %w", err)
	}
	dir, err := os.MkdirTemp(root, "sysroot-stage-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Staging{dir: dir, log: logger}, nil
}

// Dir returns the staging directory path.
func (s *Staging) Dir() string { return s.dir }

// Collect copies every file in outDir into the staging directory, keeping
// names and permissions, and returns the sorted artifact names. The whole
// listing is validated before the first copy, so a layout violation never
// leaves a partially populated staging directory behind.
func (s *Staging) Collect(ctx context.Context, outDir string, concurrency int) ([]string, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("read builder output dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch {
		case entry.IsDir():
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedDirectory, filepath.Join(outDir, entry.Name()))
		case !entry.Type().IsRegular():
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedEntry, filepath.Join(outDir, entry.Name()))
		}
		names = append(names, entry.Name())
	}

	if concurrency <= 0 {
		concurrency = DefaultCopyConcurrency
	}
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, name := range names {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			src := filepath.Join(outDir, name)
			if err := fileutil.CopyFile(src, filepath.Join(s.dir, name), &artifactCopyOptions); err != nil {
				return fmt.Errorf("copy artifact %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.Sort(names)
	return names, nil
}

// WriteFingerprint records fp in the staging directory under the reserved
// file name.
func (s *Staging) WriteFingerprint(fp fingerprint.Fingerprint) error {
	return fingerprint.Write(s.dir, fp)
}

// Discard removes the staging directory unless Install consumed it.
func (s *Staging) Discard() {
	if s == nil || s.promoted {
		return
	}
	if err := os.RemoveAll(s.dir); err != nil {
		s.log.Debug("failed to remove staging dir", "dir", s.dir, "err", err)
	}
}
