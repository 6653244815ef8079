package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/giantswarm/sysroot/internal/sentinel"
)

const (
	// ErrNilCmd is returned when Run is given a nil command.
	ErrNilCmd = sentinel.Error("cmd must not be nil")

	// ErrEmptyCmdPath is returned when the command has no executable path.
	ErrEmptyCmdPath = sentinel.Error("cmd.Path must not be empty")

	// ErrEmptyLogDir is returned when no log directory is given.
	ErrEmptyLogDir = sentinel.Error("log directory must not be empty")

	// ErrStart wraps failures to launch the command at all.
	ErrStart = sentinel.Error("process failed to start")

	// ErrExit is matched by every *ExitError.
	ErrExit = sentinel.Error("process exited unsuccessfully")
)

// ExitError describes a command that started but did not exit cleanly.
type ExitError struct {
	Name       string
	Code       int            // -1 when terminated by a signal
	Signal     syscall.Signal // zero unless terminated by a signal
	StdoutPath string
	StderrPath string
	StderrTail string // last bytes of stderr, read before the log dir goes away
	Err        error
}

func (e *ExitError) Error() string {
	if e.Signal != 0 {
		return fmt.Sprintf("%s: terminated by signal %v (see %s)", e.Name, e.Signal, e.StderrPath)
	}
	return fmt.Sprintf("%s: exit status %d (see %s)", e.Name, e.Code, e.StderrPath)
}

// Unwrap exposes both ErrExit and the underlying *exec.ExitError.
func (e *ExitError) Unwrap() []error {
	return []error{ErrExit, e.Err}
}

// Run starts cmd with stdout/stderr captured in log files under logDir and
// blocks until it exits. Writers already set on cmd keep receiving output;
// the log files are added alongside them. If cmd.Dir is empty it is set to
// logDir.
//
// There is no timeout; the caller's only control is not calling Run.
func Run(cmd *exec.Cmd, logDir, name string, logger *slog.Logger) error {
	if cmd == nil {
		return ErrNilCmd
	}
	if cmd.Path == "" {
		return ErrEmptyCmdPath
	}
	if logDir == "" {
		return ErrEmptyLogDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cmd.Dir == "" {
		cmd.Dir = logDir
	}
	configureSysProcAttr(cmd)

	logs, err := startCmd(cmd, logDir, name)
	if err != nil {
		return err
	}
	defer logs.Close()

	start := time.Now()
	logger.Debug("process started", "process", name, "pid", cmd.Process.Pid, "args", cmd.Args[1:])

	waitErr := cmd.Wait()
	logger.Debug("process exited", "process", name, "elapsed", time.Since(start).Round(time.Millisecond), "err", waitErr)

	return interpretExit(waitErr, name, &logs)
}

// startCmd wires the log files and starts cmd. The logs are closed again if
// the start fails.
func startCmd(cmd *exec.Cmd, logDir, name string) (LogFiles, error) {
	logs, err := NewLogFiles(logDir, name)
	if err != nil {
		return LogFiles{}, fmt.Errorf("create %s logs: %w", name, err)
	}
	cmd.Stdout = tee(cmd.Stdout, logs.stdoutFile)
	cmd.Stderr = tee(cmd.Stderr, logs.stderrFile)

	if err := cmd.Start(); err != nil {
		logs.Close()
		return LogFiles{}, fmt.Errorf("%w: %s: %w", ErrStart, name, err)
	}
	return logs, nil
}

// interpretExit turns the result of cmd.Wait into nil or an *ExitError.
// Wait errors that are not exit statuses (I/O copy failures) are reported
// with code -1.
func interpretExit(err error, name string, logs *LogFiles) error {
	if err == nil {
		return nil
	}
	exit := &ExitError{
		Name:       name,
		Code:       -1,
		StdoutPath: logs.StdoutPath(),
		StderrPath: logs.StderrPath(),
		StderrTail: readTail(logs.StderrPath(), stderrTailSize),
		Err:        err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exit.Code = exitErr.ExitCode()
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			exit.Signal = status.Signal()
		}
	}
	return exit
}

func tee(existing io.Writer, f *os.File) io.Writer {
	if existing == nil {
		return f
	}
	return io.MultiWriter(existing, f)
}

// stderrTailSize bounds how much of a failed build's stderr is kept in the
// error.
const stderrTailSize = 4 << 10

// readTail returns up to n trailing bytes of the file at path, or "" if it
// cannot be read.
func readTail(path string, n int64) string {
	f, err := os.Open(path) //nolint:gosec // G304: path is our own log file
	if err != nil {
		return ""
	}
	defer f.Close() //nolint:errcheck // read-only

	info, err := f.Stat()
	if err != nil {
		return ""
	}
	offset := max(info.Size()-n, 0)
	buf := make([]byte, info.Size()-offset)
	if _, err := f.ReadAt(buf, offset); err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return string(buf)
}
