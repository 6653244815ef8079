package sysroot

import (
	"github.com/giantswarm/sysroot/internal/core"
	"github.com/giantswarm/sysroot/internal/install"
	"github.com/giantswarm/sysroot/internal/workspace"
)

// Default configuration values for New.
const (
	// DefaultLockFileName is the lock file copied from the parent of the
	// source directory into the build workspace.
	DefaultLockFileName = workspace.DefaultLockFileName

	// DefaultMetadataTag is exported to the builder as
	// __CARGO_DEFAULT_LIB_METADATA so the built libraries get symbol names
	// distinct from the toolchain's own copies.
	DefaultMetadataTag = core.DefaultMetadataTag

	// DefaultCopyConcurrency is the number of artifacts copied into staging
	// at once.
	DefaultCopyConcurrency = install.DefaultCopyConcurrency

	// DefaultInstallStrategy removes the old library directory before
	// renaming the new one into place.
	DefaultInstallStrategy = InstallReplace
)
