package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{VideoURL: "https://youtube.com/watch?v=a", Title: "First", Format: "mp3", Extension: "mp3", CreatedAt: base},
		{VideoURL: "https://youtube.com/watch?v=b", Title: "Second", Format: "mp3", Extension: "webm", Transcoded: true, CreatedAt: base.Add(time.Minute)},
	}
	for _, e := range entries {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(Recent) = %d, want 2", len(got))
	}
	if got[0].Title != "Second" {
		t.Errorf("Recent[0].Title = %q, want newest first", got[0].Title)
	}
	if !got[0].Transcoded {
		t.Error("Recent[0].Transcoded = false, want true")
	}
	if !got[0].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("Recent[0].CreatedAt = %v, want %v", got[0].CreatedAt, base.Add(time.Minute))
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, Entry{VideoURL: "https://youtube.com/watch?v=x"}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len(Recent) = %d, want 3", len(got))
	}
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		e := Entry{VideoURL: "https://youtube.com/watch?v=x", Title: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	removed, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune() removed = %d, want 2", removed)
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 || got[0].Title != "d" || got[1].Title != "c" {
		t.Errorf("Recent after prune = %+v, want newest two", got)
	}
}
