package sentinel

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  Error
		want string
	}{
		"build failure":  {err: Error("sysroot build failed"), want: "sysroot build failed"},
		"empty message":  {err: Error(""), want: ""},
		"with separator": {err: Error("lock file: missing"), want: "lock file: missing"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestError_MatchesThroughWrapping(t *testing.T) {
	t.Parallel()

	const errStage = Error("stage failed")

	t.Run("direct", func(t *testing.T) {
		t.Parallel()

		if !errors.Is(errStage, errStage) {
			t.Error("errors.Is should match the same constant")
		}
	})

	t.Run("wrapped twice", func(t *testing.T) {
		t.Parallel()

		wrapped := fmt.Errorf("ensure: %w", fmt.Errorf("collect: %w", errStage))
		if !errors.Is(wrapped, errStage) {
			t.Error("errors.Is should see through two levels of wrapping")
		}
	})

	t.Run("other constant", func(t *testing.T) {
		t.Parallel()

		const errOther = Error("install failed")
		if errors.Is(errStage, errOther) {
			t.Error("distinct constants must not match")
		}
	})

	t.Run("errors.New with same text", func(t *testing.T) {
		t.Parallel()

		if errors.Is(errStage, errors.New("stage failed")) {
			t.Error("a pointer error with the same text must not match")
		}
	})
}
