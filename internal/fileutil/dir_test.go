package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	t.Run("creates nested directories", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "a", "b", "c")
		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir() failed: %v", err)
		}
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat created dir: %v", err)
		}
		if !info.IsDir() {
			t.Error("created path is not a directory")
		}
	})

	t.Run("existing directory is fine", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir() on existing dir failed: %v", err)
		}
	})
}

func TestEnsureDirForFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "sub", "history.db")
	if err := EnsureDirForFile(file); err != nil {
		t.Fatalf("EnsureDirForFile() failed: %v", err)
	}
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("file creation after EnsureDirForFile failed: %v", err)
	}
}
