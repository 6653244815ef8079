package fingerprint

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio/maybe"
	"github.com/zeebo/blake3"
)

// FileName is the reserved name of the fingerprint file inside the
// installed library directory.
const FileName = ".cargo-careful-hash"

// Fingerprint is an opaque 64-bit summary of the build inputs.
type Fingerprint uint64

// String returns the decimal form written to disk.
func (f Fingerprint) String() string {
	return strconv.FormatUint(uint64(f), 10)
}

// Compute derives the fingerprint of a source directory and toolchain
// commit. Each field is length-prefixed so adjacent fields cannot shift
// bytes between each other.
func Compute(srcDir, commit string) Fingerprint {
	h := blake3.New()
	writeField(h, filepath.Clean(srcDir))
	writeField(h, commit)
	sum := h.Sum(nil)
	return Fingerprint(binary.LittleEndian.Uint64(sum[:8]))
}

func writeField(h *blake3.Hasher, s string) {
	var n [binary.MaxVarintLen64]byte
	_, _ = h.Write(n[:binary.PutUvarint(n[:], uint64(len(s)))]) // Hasher.Write never fails
	_, _ = h.Write([]byte(s))
}

// Path returns the fingerprint file path inside libDir.
func Path(libDir string) string {
	return filepath.Join(libDir, FileName)
}

// Read returns the fingerprint stored in libDir. The boolean is false when
// the file is missing, unreadable, or does not hold a decimal uint64; all of
// these mean the installation must be rebuilt, so no error is reported.
func Read(libDir string) (Fingerprint, bool) {
	data, err := os.ReadFile(Path(libDir)) //nolint:gosec // G304: path derived from the sysroot handle
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return Fingerprint(v), true
}

// Write stores fp in dir as a single decimal line. On platforms with atomic
// rename the file is replaced atomically so a reader never sees a truncated
// value; elsewhere it is written in place.
func Write(dir string, fp Fingerprint) error {
	if err := maybe.WriteFile(Path(dir), []byte(fp.String()), 0o644); err != nil {
		return fmt.Errorf("write fingerprint file: %w", err)
	}
	return nil
}
