// Package install moves built artifacts into a sysroot.
//
// Artifacts are first copied into a Staging directory created inside the
// sysroot root, which keeps it on the same filesystem as the final library
// directory. Install then promotes the staging directory with a single
// rename, so observers see either the previous or the new library
// directory, never a half-copied one.
//
// Two strategies exist. Replace removes the old directory and renames the
// new one in, leaving a short window in which the library directory is
// absent. Swap renames the old directory aside first and only deletes it
// once the new one is in place, restoring it if the promotion fails.
package install
