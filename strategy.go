package sysroot

import "github.com/giantswarm/sysroot/internal/core"

// InstallStrategy controls how a freshly staged build replaces an existing
// installation.
//
// InstallStrategy is a type alias so that the IsValid and String methods of
// the underlying type are part of the public API.
type InstallStrategy = core.InstallStrategy

const (
	// InstallReplace removes the installed library directory recursively and
	// then renames the staging directory into its place. If the process dies
	// or the rename fails between the two steps, no installation is left;
	// the failure is reported as ErrInstallIndeterminate and the next
	// EnsureBuilt rebuilds. This is the default.
	InstallReplace = core.InstallReplace

	// InstallSwap renames the installed directory aside, renames the staging
	// directory in, and only then deletes the old one. A failed rename puts
	// the old directory back, so a failed install never loses the previous
	// installation.
	InstallSwap = core.InstallSwap
)

// BuildMode selects between a full build and a type-check-only build.
// Both are staged and installed the same way.
type BuildMode = core.BuildMode

const (
	// BuildModeBuild runs the builder's "build" subcommand.
	BuildModeBuild = core.BuildModeBuild

	// BuildModeCheck runs the builder's "check" subcommand, producing
	// metadata-only artifacts.
	BuildModeCheck = core.BuildModeCheck
)
