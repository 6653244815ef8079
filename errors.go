package sysroot

import (
	"github.com/giantswarm/sysroot/internal/core"
	"github.com/giantswarm/sysroot/internal/install"
	"github.com/giantswarm/sysroot/internal/workspace"
)

// Sentinel errors for error inspection with errors.Is.
const (
	// ErrLockFileMissing is returned when the lock file next to the source
	// directory does not exist. Nothing is built or installed.
	ErrLockFileMissing = workspace.ErrLockFileMissing

	// ErrEmptySourceDir is returned when EnsureBuilt is given an empty
	// source directory.
	ErrEmptySourceDir = workspace.ErrEmptySourceDir

	// ErrNoParent is returned when the source directory is a filesystem root
	// and so has no parent to hold the lock file.
	ErrNoParent = workspace.ErrNoParent

	// ErrBuildLaunch is returned when the builder cannot be started.
	ErrBuildLaunch = core.ErrBuildLaunch

	// ErrBuildFailed is returned when the builder ran and failed. Errors
	// from the command runner are *BuildError values carrying the exit code.
	ErrBuildFailed = core.ErrBuildFailed

	// ErrUnexpectedDirectory is returned when the builder's output directory
	// contains a subdirectory. The installation is not touched.
	ErrUnexpectedDirectory = install.ErrUnexpectedDirectory

	// ErrUnexpectedEntry is returned when the builder's output directory
	// contains something that is neither a file nor a directory.
	ErrUnexpectedEntry = install.ErrUnexpectedEntry

	// ErrInstallIndeterminate is returned when the install failed after the
	// previous installation may already have been removed.
	ErrInstallIndeterminate = install.ErrInstallIndeterminate

	// ErrNilRunner is returned when EnsureBuilt is given a nil Runner.
	ErrNilRunner = core.ErrNilRunner

	// ErrInvalidMode is returned for an unknown BuildMode value.
	ErrInvalidMode = core.ErrInvalidMode

	// ErrNoLedger is returned by History when WithLedger was not given.
	ErrNoLedger = core.ErrNoLedger

	// ErrNotVersionOutput is returned by ParseVersionVerbose for text that is
	// not verbose compiler version output.
	ErrNotVersionOutput = core.ErrNotVersionOutput

	// ErrNoCommitHash is returned by ParseVersionVerbose when the output has
	// no commit-hash line.
	ErrNoCommitHash = core.ErrNoCommitHash
)
