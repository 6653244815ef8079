package install

import "fmt"

// Strategy selects how Install replaces an existing library directory.
type Strategy int

const (
	// Replace removes the existing directory, then renames the staging
	// directory into place. Between the two steps the library directory
	// does not exist, and if the rename fails the old installation is gone.
	Replace Strategy = iota

	// Swap renames the existing directory aside, renames the staging
	// directory into place, and only then deletes the old directory. If
	// the promotion fails the old directory is renamed back, leaving the
	// previous installation untouched.
	Swap
)

// IsValid reports whether s is a known strategy.
func (s Strategy) IsValid() bool {
	switch s {
	case Replace, Swap:
		return true
	default:
		return false
	}
}

func (s Strategy) String() string {
	switch s {
	case Replace:
		return "InstallReplace"
	case Swap:
		return "InstallSwap"
	default:
		return fmt.Sprintf("InstallStrategy(%d)", int(s))
	}
}
