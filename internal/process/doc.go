// Package process runs an external command to completion with its stdout and
// stderr captured in log files.
//
// Run is the only entry point. It distinguishes a command that could not be
// launched (ErrStart) from one that ran and failed (ErrExit, carried by an
// *ExitError with the exit code or terminating signal and the log paths).
// Output is never parsed; only the exit status matters.
package process
