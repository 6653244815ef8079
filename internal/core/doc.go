// Package core implements the sysroot build-and-install protocol behind the
// public sysroot package: fingerprint comparison, workspace generation, the
// external build, artifact staging, and promotion of the staged directory
// into the installed library directory.
package core
