package core

import "fmt"

// BuildMode selects the builder subcommand. Both modes go through the same
// stage-and-install protocol.
type BuildMode int

const (
	// BuildModeBuild compiles the library fully. This is the default.
	BuildModeBuild BuildMode = iota

	// BuildModeCheck only type-checks, producing metadata artifacts.
	BuildModeCheck
)

// IsValid reports whether m is a recognized BuildMode value.
func (m BuildMode) IsValid() bool {
	switch m {
	case BuildModeBuild, BuildModeCheck:
		return true
	default:
		return false
	}
}

// Subcommand returns the builder subcommand for m.
func (m BuildMode) Subcommand() string {
	if m == BuildModeCheck {
		return "check"
	}
	return "build"
}

// String returns the name of the mode.
func (m BuildMode) String() string {
	switch m {
	case BuildModeBuild:
		return "build"
	case BuildModeCheck:
		return "check"
	default:
		return fmt.Sprintf("BuildMode(%d)", int(m))
	}
}
