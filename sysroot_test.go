package sysroot_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/giantswarm/sysroot"
)

const testTarget = "x86_64-unknown-linux-gnu"

// countingRunner writes a fixed set of artifacts where the builder would and
// counts how often it ran.
type countingRunner struct {
	files map[string]string
	runs  atomic.Int32
}

func (r *countingRunner) Run(_ context.Context, inv sysroot.Invocation) error {
	r.runs.Add(1)
	out := filepath.Join(inv.TargetDir, inv.Target, "release", "deps")
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	for name, content := range r.files {
		if err := os.WriteFile(filepath.Join(out, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// rustSource creates <tmp>/rust/library with <tmp>/rust/Cargo.lock.
func rustSource(t *testing.T) string {
	t.Helper()
	rust := filepath.Join(t.TempDir(), "rust")
	src := filepath.Join(rust, "library")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(rust, "Cargo.lock"), []byte("# lock\nversion = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return src
}

func newSysroot(t *testing.T, opts ...sysroot.Option) sysroot.Sysroot {
	t.Helper()
	opts = append([]sysroot.Option{
		sysroot.WithTempDir(t.TempDir()),
		sysroot.WithLogger(slog.New(slog.DiscardHandler)),
	}, opts...)
	return sysroot.New(t.TempDir(), testTarget, opts...)
}

func TestEnsureBuilt_Scenario(t *testing.T) {
	t.Parallel()
	sr := newSysroot(t, sysroot.WithLedger(filepath.Join(t.TempDir(), "ledger.db")))
	src := rustSource(t)
	version := sysroot.VersionInfo{Commit: "abc123"}
	runner := &countingRunner{files: map[string]string{
		"libstd-a.rlib":  "std",
		"libcore-b.rlib": "core",
	}}

	if _, ok := sr.InstalledFingerprint(); ok {
		t.Fatal("fresh sysroot reports an installed fingerprint")
	}

	res, err := sr.EnsureBuilt(context.Background(), src, sysroot.BuildModeBuild, version, runner)
	if err != nil {
		t.Fatalf("EnsureBuilt: %v", err)
	}
	if !res.Built || runner.runs.Load() != 1 {
		t.Fatalf("Built = %v, runs = %d; want one build", res.Built, runner.runs.Load())
	}

	wantLib := filepath.Join(sr.Root(), "lib", "rustlib", testTarget, "lib")
	if sr.LibDir() != wantLib || res.LibDir != wantLib {
		t.Errorf("LibDir = %q / %q, want %q", sr.LibDir(), res.LibDir, wantLib)
	}

	entries, err := os.ReadDir(wantLib)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	wantNames := []string{sysroot.FingerprintFileName, "libcore-b.rlib", "libstd-a.rlib"}
	if !slices.Equal(names, wantNames) {
		t.Errorf("installed entries = %v, want %v", names, wantNames)
	}

	fp, err := sr.Fingerprint(src, version)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	data, err := os.ReadFile(sr.FingerprintPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != strconv.FormatUint(uint64(fp), 10) {
		t.Errorf("fingerprint file = %q, want %d", data, uint64(fp))
	}
	if got, ok := sr.InstalledFingerprint(); !ok || got != fp {
		t.Errorf("InstalledFingerprint = %v, %v; want %v", got, ok, fp)
	}

	// Second call is a no-op.
	res, err = sr.EnsureBuilt(context.Background(), src, sysroot.BuildModeBuild, version, runner)
	if err != nil {
		t.Fatalf("second EnsureBuilt: %v", err)
	}
	if res.Built || runner.runs.Load() != 1 {
		t.Errorf("second call: Built = %v, runs = %d; want no build", res.Built, runner.runs.Load())
	}

	history, err := sr.History(context.Background(), 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Commit != "abc123" || history[0].Fingerprint != fp {
		t.Errorf("History = %+v", history)
	}
}

func TestEnsureBuilt_CorruptFingerprintRebuilds(t *testing.T) {
	t.Parallel()
	sr := newSysroot(t, sysroot.WithInstallStrategy(sysroot.InstallSwap))
	src := rustSource(t)
	version := sysroot.VersionInfo{Commit: "abc123"}
	runner := &countingRunner{files: map[string]string{"libstd.rlib": "std"}}

	if _, err := sr.EnsureBuilt(context.Background(), src, sysroot.BuildModeBuild, version, runner); err != nil {
		t.Fatalf("EnsureBuilt: %v", err)
	}
	if err := os.WriteFile(sr.FingerprintPath(), []byte("not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := sr.EnsureBuilt(context.Background(), src, sysroot.BuildModeBuild, version, runner)
	if err != nil {
		t.Fatalf("EnsureBuilt after corruption: %v", err)
	}
	if !res.Built || runner.runs.Load() != 2 {
		t.Errorf("Built = %v, runs = %d; want a rebuild", res.Built, runner.runs.Load())
	}
	if _, ok := sr.InstalledFingerprint(); !ok {
		t.Error("fingerprint unreadable after rebuild")
	}
}

func TestEnsureBuilt_MissingLockFile(t *testing.T) {
	t.Parallel()
	sr := newSysroot(t)
	src := filepath.Join(t.TempDir(), "library")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	runner := &countingRunner{}

	_, err := sr.EnsureBuilt(context.Background(), src, sysroot.BuildModeBuild, sysroot.VersionInfo{Commit: "abc123"}, runner)
	if !errors.Is(err, sysroot.ErrLockFileMissing) {
		t.Fatalf("EnsureBuilt error = %v, want ErrLockFileMissing", err)
	}
	if runner.runs.Load() != 0 {
		t.Errorf("runner ran %d times", runner.runs.Load())
	}
}

func TestHistory_WithoutLedger(t *testing.T) {
	t.Parallel()
	if _, err := newSysroot(t).History(context.Background(), 0); !errors.Is(err, sysroot.ErrNoLedger) {
		t.Errorf("History error = %v, want ErrNoLedger", err)
	}
}

func TestSysrootLocators(t *testing.T) {
	t.Parallel()
	sr := sysroot.New("/opt/sysroot/", "riscv64gc-unknown-linux-gnu")

	if sr.Root() != "/opt/sysroot" {
		t.Errorf("Root() = %q", sr.Root())
	}
	if sr.Target() != "riscv64gc-unknown-linux-gnu" {
		t.Errorf("Target() = %q", sr.Target())
	}
	if want := "/opt/sysroot/lib/rustlib/riscv64gc-unknown-linux-gnu"; sr.TargetDir() != want {
		t.Errorf("TargetDir() = %q, want %q", sr.TargetDir(), want)
	}
	if want := "/opt/sysroot/lib/rustlib/riscv64gc-unknown-linux-gnu/lib/.cargo-careful-hash"; sr.FingerprintPath() != want {
		t.Errorf("FingerprintPath() = %q, want %q", sr.FingerprintPath(), want)
	}
	if _, err := sr.Fingerprint("", sysroot.VersionInfo{}); !errors.Is(err, sysroot.ErrEmptySourceDir) {
		t.Errorf("Fingerprint(\"\") error = %v", err)
	}
}
