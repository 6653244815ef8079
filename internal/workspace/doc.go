// Package workspace builds the throwaway project the external builder is
// pointed at: a fresh temp directory holding a copy of the toolchain's lock
// file, a generated manifest that pulls in the standard library crates from
// the source tree as path dependencies, and an empty library entry point.
//
// A Workspace is owned by exactly one build attempt and is removed by Close.
package workspace
