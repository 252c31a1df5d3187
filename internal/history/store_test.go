package history

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
)

func openTestStore(tb testing.TB, path string) *Store {
	tb.Helper()
	store, err := Open(context.Background(), path, nil)
	if err != nil {
		tb.Fatalf("Open() failed: %v", err)
	}
	tb.Cleanup(func() {
		if err := store.Close(); err != nil {
			tb.Errorf("Close() failed: %v", err)
		}
	})
	return store
}

func TestStore_LaunchAndCompletion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "history.db"))

	id, err := store.RecordLaunch(ctx, "echo a | wc -l", false, []int{100, 101})
	if err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}
	if err := store.RecordCompletion(ctx, id, []int{0, 0}); err != nil {
		t.Fatalf("RecordCompletion() failed: %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Command != "echo a | wc -l" {
		t.Errorf("Command = %q, want %q", e.Command, "echo a | wc -l")
	}
	if e.Background {
		t.Error("Background = true, want false")
	}
	if !slices.Equal(e.Pids, []int{100, 101}) {
		t.Errorf("Pids = %v, want [100 101]", e.Pids)
	}
	if !slices.Equal(e.ExitCodes, []int{0, 0}) {
		t.Errorf("ExitCodes = %v, want [0 0]", e.ExitCodes)
	}
	if e.StartedAt.IsZero() {
		t.Error("StartedAt is zero")
	}
	if e.FinishedAt.IsZero() {
		t.Error("FinishedAt is zero after completion")
	}
}

func TestStore_PendingEntryHasNoCompletion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "history.db"))

	if _, err := store.RecordLaunch(ctx, "sleep 30 &", true, []int{200}); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}

	entries, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	e := entries[0]
	if !e.Background {
		t.Error("Background = false, want true")
	}
	if e.ExitCodes != nil {
		t.Errorf("ExitCodes = %v, want nil for pending entry", e.ExitCodes)
	}
	if !e.FinishedAt.IsZero() {
		t.Error("FinishedAt set for pending entry")
	}
}

func TestStore_RecentOrderAndLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "history.db"))

	for _, cmd := range []string{"first", "second", "third"} {
		if _, err := store.RecordLaunch(ctx, cmd, false, []int{1}); err != nil {
			t.Fatalf("RecordLaunch(%q) failed: %v", cmd, err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Command != "third" || entries[1].Command != "second" {
		t.Errorf("Recent order = [%q %q], want newest first", entries[0].Command, entries[1].Command)
	}
}

func TestOpen_ExistingDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store := openTestStore(t, path)
	if _, err := store.RecordLaunch(ctx, "ls -l", false, []int{42}); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}

	// Reopening must find the schema already present and keep prior rows.
	again, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer again.Close() //nolint:errcheck // test cleanup

	entries, err := again.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Command != "ls -l" {
		t.Errorf("reopened store lost data: %+v", entries)
	}
}

func TestOpen_CreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store := openTestStore(t, path)
	if _, err := store.RecordLaunch(context.Background(), "ps", false, []int{7}); err != nil {
		t.Fatalf("RecordLaunch() failed: %v", err)
	}
}
