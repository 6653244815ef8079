// Package fingerprint computes and persists the value that decides whether
// an installed sysroot is current.
//
// The fingerprint covers only the source directory path and the toolchain
// commit, not the directory contents; a recursive content hash of the
// standard library sources costs more than the rebuild check is worth. A
// fingerprint file that is present and equal to the freshly computed value
// proves the installation is up to date. Anything else means rebuild.
package fingerprint
