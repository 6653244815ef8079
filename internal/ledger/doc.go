// Package ledger keeps a SQLite history of sysroot installations: which
// target was built from which sources and toolchain commit, the fingerprint
// that was installed, how many artifacts it held and how long it took.
//
// The ledger is informational. The fingerprint file inside the installed
// library directory stays the only input to the rebuild decision.
package ledger
