package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/giantswarm/sysroot/internal/process"
	"github.com/giantswarm/sysroot/internal/sentinel"
)

const (
	// ErrBuildLaunch is returned when the builder process cannot be started.
	ErrBuildLaunch = sentinel.Error("sysroot build could not be launched")

	// ErrBuildFailed is returned when the builder ran and reported failure.
	ErrBuildFailed = sentinel.Error("sysroot build failed")
)

const (
	// TargetDirEnv points the builder at the workspace's output tree.
	TargetDirEnv = "CARGO_TARGET_DIR"

	// MetadataEnv tags the produced libraries so they do not collide with
	// the toolchain's own copies.
	MetadataEnv = "__CARGO_DEFAULT_LIB_METADATA"

	// DefaultMetadataTag is the value assigned to MetadataEnv.
	DefaultMetadataTag = "cargo-careful"
)

// builderLogName is the prefix of the builder's log files in the workspace.
const builderLogName = "build"

// Invocation is everything a Runner needs to build one workspace.
type Invocation struct {
	Mode         BuildMode
	ManifestPath string
	Target       string
	TargetDir    string
	MetadataTag  string
	LogDir       string // directory for builder logs; removed with the workspace
}

// Args returns the builder arguments, without the program name.
func (inv Invocation) Args() []string {
	return []string{
		inv.Mode.Subcommand(),
		"--release",
		"--manifest-path", inv.ManifestPath,
		"--target", inv.Target,
	}
}

// Env returns the environment entries added to the builder's environment.
func (inv Invocation) Env() []string {
	tag := inv.MetadataTag
	if tag == "" {
		tag = DefaultMetadataTag
	}
	return []string{
		TargetDirEnv + "=" + inv.TargetDir,
		MetadataEnv + "=" + tag,
	}
}

// Runner executes the external build described by an Invocation and blocks
// until it completes. A nil error means the build succeeded and its outputs
// are in the invocation's target dir.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// BuildError reports a builder that ran and exited unsuccessfully.
type BuildError struct {
	Target     string
	Mode       BuildMode
	Code       int    // -1 when terminated by a signal
	StderrTail string // trailing stderr output
	Err        error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %s for %s exited with code %d", ErrBuildFailed, e.Mode.Subcommand(), e.Target, e.Code)
}

// Unwrap exposes ErrBuildFailed and the underlying error.
func (e *BuildError) Unwrap() []error {
	return []error{ErrBuildFailed, e.Err}
}

// CommandRunner runs a command produced by a factory, such as the toolchain's
// cargo with any toolchain-selection arguments already applied.
type CommandRunner struct {
	factory func() *exec.Cmd
	logger  *slog.Logger
}

var _ Runner = (*CommandRunner)(nil)

// NewCommandRunner returns a Runner that calls factory once per build and
// appends the invocation's arguments and environment to the command. The
// command inherits the current environment when factory leaves Env nil.
func NewCommandRunner(factory func() *exec.Cmd, logger *slog.Logger) *CommandRunner {
	if factory == nil {
		panic("sysroot: command factory must not be nil")
	}
	return &CommandRunner{factory: factory, logger: logger}
}

// Run starts the command and waits for it. ctx is only checked before the
// launch; a running build is never interrupted.
func (r *CommandRunner) Run(ctx context.Context, inv Invocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := r.logger
	if log == nil {
		log = Logger()
	}

	cmd := r.factory()
	if cmd == nil {
		return fmt.Errorf("%w: %w", ErrBuildLaunch, process.ErrNilCmd)
	}
	cmd.Args = append(cmd.Args, inv.Args()...)
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, inv.Env()...)

	err := process.Run(cmd, inv.LogDir, builderLogName, log)
	if err == nil {
		return nil
	}
	var exit *process.ExitError
	if errors.As(err, &exit) {
		return &BuildError{
			Target:     inv.Target,
			Mode:       inv.Mode,
			Code:       exit.Code,
			StderrTail: exit.StderrTail,
			Err:        err,
		}
	}
	return fmt.Errorf("%w: %w", ErrBuildLaunch, err)
}
