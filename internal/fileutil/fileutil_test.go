package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp4")

	ok, err := Exists(path)
	if err != nil || ok {
		t.Fatalf("expected missing file, got ok=%v err=%v", ok, err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err = Exists(path)
	if err != nil || !ok {
		t.Fatalf("expected existing file, got ok=%v err=%v", ok, err)
	}
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.txt")
	if err := WriteFileAtomic(path, []byte("first"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected mode %v", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, found %d entries", len(entries))
	}
}

func TestMoveDir(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "Physics")
	dst := filepath.Join(root, "Physics-Li")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "1-Intro.mp4"), []byte("v"), 0o644); err != nil {
		t.Fatal(err)
	}

	moved, err := MoveDir(src, dst)
	if err != nil || !moved {
		t.Fatalf("expected move, got moved=%v err=%v", moved, err)
	}
	if _, err := os.Stat(filepath.Join(dst, "1-Intro.mp4")); err != nil {
		t.Fatalf("expected file in destination: %v", err)
	}

	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	moved, err = MoveDir(src, dst)
	if err != nil || moved {
		t.Fatalf("expected no move when destination exists, got moved=%v err=%v", moved, err)
	}
}

func TestRemoveQuietly(t *testing.T) {
	if err := RemoveQuietly(filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Fatalf("expected nil for missing file, got %v", err)
	}
}
