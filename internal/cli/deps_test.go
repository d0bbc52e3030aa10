package cli

import (
	"os"
	"path/filepath"
	"testing"

	siteerrors "github.com/ksyq12/sitectl/internal/errors"
)

func TestExistingParent(t *testing.T) {
	dir := t.TempDir()
	if got := existingParent(filepath.Join(dir, "a", "b")); got != dir {
		t.Errorf("existingParent() = %s, want %s", got, dir)
	}
	if got := existingParent(dir); got != dir {
		t.Errorf("existingParent() = %s, want %s", got, dir)
	}
}

func TestRealRootChecker_RequireWritable(t *testing.T) {
	r := &realRootChecker{}
	if err := r.RequireWritable(filepath.Join(t.TempDir(), "staging")); err != nil {
		t.Errorf("writable temp dir rejected: %v", err)
	}

	if os.Geteuid() == 0 {
		t.Skip("root can write anywhere")
	}
	locked := t.TempDir()
	if err := os.Chmod(locked, 0555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	err := r.RequireWritable(filepath.Join(locked, "sites-available"))
	if !siteerrors.Is(err, siteerrors.ErrPermissionDenied) {
		t.Errorf("expected permission error, got %v", err)
	}
}
