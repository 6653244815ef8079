package core

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/giantswarm/sysroot/internal/sentinel"
)

const (
	// ErrNotVersionOutput is returned when the text does not start with a
	// compiler version banner.
	ErrNotVersionOutput = sentinel.Error("not verbose compiler version output")

	// ErrNoCommitHash is returned when the version output carries no
	// commit-hash line at all.
	ErrNoCommitHash = sentinel.Error("version output has no commit-hash")
)

// unknownValue is what the compiler prints for fields it was built without.
const unknownValue = "unknown"

// VersionInfo identifies the toolchain the library is built for.
type VersionInfo struct {
	Banner     string // first line, e.g. "rustc 1.80.0-nightly (abc123 2024-05-01)"
	Release    string
	Commit     string // "" when the toolchain was built without git metadata
	CommitDate string
	Host       string
	LLVM       string
}

// Identity is the string folded into the fingerprint. It is the commit when
// known and the release otherwise, so toolchains built without git metadata
// still invalidate on upgrade.
func (v VersionInfo) Identity() string {
	if v.Commit != "" {
		return v.Commit
	}
	return "release:" + v.Release
}

// ParseVersionVerbose parses the output of "rustc -vV": a banner line followed
// by "key: value" lines. Unknown keys are ignored.
func ParseVersionVerbose(output string) (VersionInfo, error) {
	var (
		info      VersionInfo
		sawCommit bool
	)
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if info.Banner == "" {
			if !strings.HasPrefix(line, "rustc ") {
				return VersionInfo{}, fmt.Errorf("%w: %q", ErrNotVersionOutput, line)
			}
			info.Banner = line
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == unknownValue {
			value = ""
		}
		switch strings.TrimSpace(key) {
		case "release":
			info.Release = value
		case "commit-hash":
			info.Commit = value
			sawCommit = true
		case "commit-date":
			info.CommitDate = value
		case "host":
			info.Host = value
		case "LLVM version":
			info.LLVM = value
		}
	}
	if err := sc.Err(); err != nil {
		return VersionInfo{}, fmt.Errorf("read version output: %w", err)
	}
	if info.Banner == "" {
		return VersionInfo{}, ErrNotVersionOutput
	}
	if !sawCommit {
		return VersionInfo{}, ErrNoCommitHash
	}
	return info, nil
}
