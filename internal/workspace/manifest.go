package workspace

import (
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Source tree subdirectories wired into the manifest.
const (
	StdCrate            = "std"
	TestCrate           = "test"
	WorkspaceCoreCrate  = "rustc-std-workspace-core"
	WorkspaceAllocCrate = "rustc-std-workspace-alloc"
	WorkspaceStdCrate   = "rustc-std-workspace-std"
)

// patchRegistry is the registry whose shim crates are redirected to the
// source tree.
const patchRegistry = "crates-io"

// shimCrates are patched in so the standard library's own workspace
// dependencies resolve to the local sources.
var shimCrates = []string{WorkspaceCoreCrate, WorkspaceAllocCrate, WorkspaceStdCrate}

// stdFeatures are enabled on the std dependency.
var stdFeatures = []string{"panic_unwind", "backtrace"}

// Manifest is the generated package manifest.
type Manifest struct {
	Package      Package                          `toml:"package"`
	Lib          Lib                              `toml:"lib"`
	Dependencies map[string]Dependency            `toml:"dependencies"`
	Patch        map[string]map[string]Dependency `toml:"patch"`
}

// Package pins the identifying metadata so the manifest is reproducible.
type Package struct {
	Authors []string `toml:"authors"`
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
}

// Lib points at the empty entry point.
type Lib struct {
	Path string `toml:"path"`
}

// Dependency is a path dependency.
type Dependency struct {
	Features []string `toml:"features,omitempty"`
	Path     string   `toml:"path"`
}

// NewManifest returns the manifest for the standard library sources under
// srcDir. srcDir should be absolute; the builder resolves relative paths
// against the workspace, not the caller's working directory.
func NewManifest(srcDir string) Manifest {
	patches := make(map[string]Dependency, len(shimCrates))
	for _, name := range shimCrates {
		patches[name] = Dependency{Path: filepath.Join(srcDir, name)}
	}
	return Manifest{
		Package: Package{
			Authors: []string{"The Rust Project Developers"},
			Name:    "sysroot",
			Version: "0.0.0",
		},
		Lib: Lib{Path: libFileName},
		Dependencies: map[string]Dependency{
			StdCrate:  {Features: stdFeatures, Path: filepath.Join(srcDir, StdCrate)},
			TestCrate: {Path: filepath.Join(srcDir, TestCrate)},
		},
		Patch: map[string]map[string]Dependency{patchRegistry: patches},
	}
}

// Render encodes the manifest. Map keys are emitted sorted, so equal
// manifests render to identical bytes.
func (m Manifest) Render() ([]byte, error) {
	out, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return out, nil
}

// ParseManifest decodes a manifest written by Render.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}
