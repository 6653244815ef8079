package install

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireLock_Exclusive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lib", "rustlib", "x86_64-unknown-linux-gnu.lock")

	first, err := AcquireLock(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("AcquireLock() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if _, err := AcquireLock(ctx, path, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("contended AcquireLock() error = %v, want deadline exceeded", err)
	}

	first.Release()

	second, err := AcquireLock(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("AcquireLock() after release error: %v", err)
	}
	second.Release()

	var nilLock *Lock
	nilLock.Release()
}
