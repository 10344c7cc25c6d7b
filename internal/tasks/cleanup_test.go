package tasks

import (
	"os"
	"path/filepath"
	"testing"

	zdxtest "github.com/desertthunder/zdx/internal/testing"
)

func TestPurge(t *testing.T) {
	t.Run("removes nested files and directories", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "2024-06-20")
		nested := filepath.Join(root, "extras")
		if err := os.MkdirAll(nested, 0755); err != nil {
			t.Fatal(err)
		}
		for _, p := range []string{
			filepath.Join(root, "a.mp4"),
			filepath.Join(root, "b.m4a"),
			filepath.Join(nested, "c.vtt"),
		} {
			if err := os.WriteFile(p, []byte("data"), 0644); err != nil {
				t.Fatal(err)
			}
		}

		if err := NewCleanupManager(nil).Purge(root); err != nil {
			t.Fatalf("Purge() failed: %v", err)
		}
		zdxtest.AssertFileMissing(t, root)
	})

	t.Run("missing root is a no-op", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "never-created")
		if err := NewCleanupManager(nil).Purge(root); err != nil {
			t.Errorf("Purge() of missing root must be nil, got %v", err)
		}
	})
}
