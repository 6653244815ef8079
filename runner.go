package sysroot

import (
	"os/exec"

	"github.com/giantswarm/sysroot/internal/core"
)

// Runner executes the external build. Implementations must block until the
// build has finished and leave its outputs under
// <Invocation.TargetDir>/<target>/release/deps.
type Runner = core.Runner

// Invocation describes one external build.
type Invocation = core.Invocation

// BuildError reports a builder that ran and exited unsuccessfully. It
// matches ErrBuildFailed with errors.Is.
type BuildError = core.BuildError

// VersionInfo identifies the toolchain a sysroot is built for. Only the
// commit (or, when it is unknown, the release) feeds the fingerprint.
type VersionInfo = core.VersionInfo

// NewCommandRunner returns a Runner that calls factory for each build and
// appends the build arguments and environment to the returned command.
// factory typically returns exec.Command("cargo") plus any toolchain
// selection arguments.
//
// The command's output is kept in log files inside the build workspace;
// set Stdout or Stderr on the command to also stream it. A command that
// exits non-zero yields a *BuildError.
//
// Panics if factory is nil.
func NewCommandRunner(factory func() *exec.Cmd) Runner {
	return core.NewCommandRunner(factory, nil)
}

// ParseVersionVerbose parses the output of "rustc -vV".
func ParseVersionVerbose(output string) (VersionInfo, error) {
	return core.ParseVersionVerbose(output)
}
