package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"jukebot/internal/core"
)

func TestMemoryStore_PendingLifecycle(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	entries := []core.QueueEntry{
		{ID: "1", Title: "First", Artist: "A", Requester: "Alice"},
		{ID: "2", Title: "Second", Artist: "B", Requester: "Bob"},
		{ID: "3", Title: "Third", Artist: "C", Requester: "Carol"},
	}
	for _, entry := range entries {
		if err := st.InsertPending(ctx, entry); err != nil {
			t.Fatalf("InsertPending(%s) error: %v", entry.ID, err)
		}
	}

	pending, err := st.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending() error: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("ListPending() returned %d entries, want 3", len(pending))
	}
	// Insertion order is preserved.
	for i, entry := range entries {
		if pending[i].ID != entry.ID {
			t.Errorf("pending[%d].ID = %q, want %q", i, pending[i].ID, entry.ID)
		}
	}

	if err := st.DeletePending(ctx, "2"); err != nil {
		t.Fatalf("DeletePending() error: %v", err)
	}
	pending, _ = st.ListPending(ctx)
	if len(pending) != 2 || pending[0].ID != "1" || pending[1].ID != "3" {
		t.Errorf("pending after delete = %+v", pending)
	}

	if err := st.DeletePending(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeletePending(missing) = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_PlayedSince(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	records := []core.PlayRecord{
		{Title: "Yesterday", Artist: "A", PlayedAt: cutoff.Add(-time.Hour)},
		{Title: "Midnight", Artist: "B", PlayedAt: cutoff},
		{Title: "Today", Artist: "C", PlayedAt: cutoff.Add(time.Hour)},
	}
	for _, record := range records {
		if err := st.AppendHistory(ctx, record); err != nil {
			t.Fatalf("AppendHistory() error: %v", err)
		}
	}

	pairs, err := st.PlayedSince(ctx, cutoff)
	if err != nil {
		t.Fatalf("PlayedSince() error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("PlayedSince() returned %d pairs, want 2: %v", len(pairs), pairs)
	}
	if _, ok := pairs[PairKey("Midnight", "B")]; !ok {
		t.Error("PlayedSince() excluded a record played exactly at the cutoff")
	}
	if _, ok := pairs[PairKey("Yesterday", "A")]; ok {
		t.Error("PlayedSince() included a record played before the cutoff")
	}
}

func TestMemoryStore_ArchivePlayed(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if err := st.InsertPending(ctx, core.QueueEntry{ID: "1", Title: "Song", Artist: "A"}); err != nil {
		t.Fatalf("InsertPending() error: %v", err)
	}

	record := core.PlayRecord{Title: "Song", Artist: "A", Requester: "Alice", PlayedAt: time.Now()}
	if err := st.ArchivePlayed(ctx, "1", record); err != nil {
		t.Fatalf("ArchivePlayed() error: %v", err)
	}

	pending, _ := st.ListPending(ctx)
	if len(pending) != 0 {
		t.Errorf("pending after archive = %+v, want empty", pending)
	}
	history, _ := st.ListHistory(ctx)
	if len(history) != 1 || history[0].Title != "Song" {
		t.Errorf("history after archive = %+v", history)
	}
}

func TestPairKey_DistinguishesPairs(t *testing.T) {
	// Titles and artists containing separators must not collide.
	if PairKey("a - b", "c") == PairKey("a", "b - c") {
		t.Error("PairKey() collides on hyphenated input")
	}
	if PairKey("Hurt", "Nine Inch Nails") == PairKey("Hurt", "Johnny Cash") {
		t.Error("PairKey() collides on covers")
	}
}
