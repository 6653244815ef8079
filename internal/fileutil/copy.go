package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/giantswarm/sysroot/internal/sentinel"
)

// ErrEmptySrc is returned when a source path is empty.
const ErrEmptySrc = sentinel.Error("source path must not be empty")

// ErrEmptyDst is returned when a destination path is empty.
const ErrEmptyDst = sentinel.Error("destination path must not be empty")

// ErrNotRegular is returned when the copy source is not a regular file.
const ErrNotRegular = sentinel.Error("source is not a regular file")

// CopyFileOptions configures CopyFile.
type CopyFileOptions struct {
	PreserveMode bool // reuse the source file's permission bits
	Sync         bool // fsync dst before close
}

// CopyFile copies the regular file src to dst, creating dst's parent
// directory. A nil opts copies with mode 0644 and no sync. On any failure
// the partially written dst is removed.
func CopyFile(src, dst string, opts *CopyFileOptions) (retErr error) {
	if src == "" {
		return ErrEmptySrc
	}
	if dst == "" {
		return ErrEmptyDst
	}

	var o CopyFileOptions
	if opts != nil {
		o = *opts
	}

	if err := EnsureDirForFile(dst); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}

	srcFile, err := os.Open(src) //nolint:gosec // G304: paths come from the build workspace
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if closeErr := srcFile.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close source: %w", closeErr)
		}
	}()

	info, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", src, ErrNotRegular)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode(o, info)) //nolint:gosec // G304: controlled path
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}

	return finish(dstFile, o.Sync)
}

// finish syncs when asked and closes f.
func finish(f *os.File, doSync bool) error {
	if doSync {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return fmt.Errorf("sync: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

func fileMode(o CopyFileOptions, src os.FileInfo) os.FileMode {
	if o.PreserveMode {
		return src.Mode().Perm()
	}
	return 0o644
}
