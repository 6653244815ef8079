// Package sysroot builds a compiler standard-library sysroot from source and
// installs it under a sysroot root directory, rebuilding only when the
// source location or the toolchain changes.
//
// The installed layout is
//
//	<root>/lib/rustlib/<target>/lib/
//	    *.rlib, *.rmeta, ...     artifacts produced by the build
//	    .cargo-careful-hash      fingerprint of the installed build
//
// # Basic Usage
//
//	out, err := exec.Command("rustc", "-vV").Output()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	version, err := sysroot.ParseVersionVerbose(string(out))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sr := sysroot.New(root, "x86_64-unknown-linux-gnu")
//	runner := sysroot.NewCommandRunner(func() *exec.Cmd {
//	    return exec.Command("cargo", "+nightly")
//	})
//	res, err := sr.EnsureBuilt(ctx, rustSrc+"/library", sysroot.BuildModeBuild, version, runner)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("sysroot at", res.LibDir, "rebuilt:", res.Built)
//
// # Fingerprint
//
// The fingerprint is a 64-bit hash of the absolute source directory path and
// the toolchain commit. It does not look at the contents of the source tree:
// editing the sources in place does not trigger a rebuild.
//
// # Installation
//
// The build runs in a private temporary workspace. Its outputs are copied
// into a staging directory created inside root, so that the final rename
// never crosses a filesystem boundary. By default the existing library
// directory is removed and the staging directory is renamed into its place
// ([InstallReplace]); [InstallSwap] keeps the previous installation until the
// new one is in place.
//
// # Concurrency
//
// Calls for different roots or targets are independent. Concurrent calls for
// the same target race and the last rename wins, unless [WithInstallLock] is
// given, in which case they are serialized with a file lock and only one of
// them builds.
//
// # Logging
//
// The library logs through log/slog. Use [SetLogger] to route the output, or
// [WithLogger] to override it for one Sysroot.
package sysroot
