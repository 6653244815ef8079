package sysroot

import (
	"log/slog"

	"github.com/giantswarm/sysroot/internal/core"
)

// SetLogger replaces the package-level logger used by sysroot. The provided
// logger should already carry any desired attributes; sysroot adds only
// per-call ones such as "target".
//
// If l is nil, the logger resets to slog.Default() with a "component"
// attribute, re-derived on the next use. Call SetLogger(nil) after
// slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with EnsureBuilt; a build already
// in progress may keep logging to the previous logger.
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
