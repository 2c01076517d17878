package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lessonvault/internal/logging"
)

func TestCreateAndRemove(t *testing.T) {
	root := t.TempDir()
	dir, err := Create(root, "run1", "cls/42")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if filepath.Base(dir.Path) != "run1-cls_42" {
		t.Fatalf("unexpected scratch name %q", dir.Path)
	}
	if err := os.WriteFile(filepath.Join(dir.Path, "concat.txt"), []byte("file 'a'"), 0o644); err != nil {
		t.Fatalf("write into scratch: %v", err)
	}
	if err := dir.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(dir.Path); !os.IsNotExist(err) {
		t.Fatalf("expected scratch removed, stat err=%v", err)
	}
}

func TestCreateRequiresRoot(t *testing.T) {
	if _, err := Create("  ", "run", "1"); err == nil || !strings.Contains(err.Error(), "staging root") {
		t.Fatalf("expected root error, got %v", err)
	}
}

func TestCleanStaleIgnoresMissingRoot(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		purge := CleanStale(dir, time.Hour, "", logging.NewNop())
		if len(purge.Removed) != 0 || purge.Err != nil {
			t.Errorf("expected empty purge for %q, got %+v", dir, purge)
		}
	}
}

func TestCleanStaleRemovesOldDirectories(t *testing.T) {
	root := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)

	oldDir := filepath.Join(root, "a1b2c3d4-7")
	liveDir := filepath.Join(root, "cafe0001-7")
	recentDir := filepath.Join(root, "e5f6a7b8-7")
	for _, dir := range []string{oldDir, liveDir, recentDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	for _, dir := range []string{oldDir, liveDir} {
		if err := os.Chtimes(dir, old, old); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	purge := CleanStale(root, time.Hour, "cafe0001", logging.NewNop())
	if purge.Err != nil {
		t.Fatalf("unexpected error: %v", purge.Err)
	}
	if len(purge.Removed) != 1 || purge.Removed[0] != oldDir {
		t.Fatalf("expected only %s removed, got %v", oldDir, purge.Removed)
	}
	for _, dir := range []string{liveDir, recentDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("%s should remain: %v", dir, err)
		}
	}
}

func TestCleanStaleDisabledWithZeroAge(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "x"), 0o755); err != nil {
		t.Fatal(err)
	}
	if purge := CleanStale(root, 0, "", nil); len(purge.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", purge.Removed)
	}
}
