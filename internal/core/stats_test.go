package core

import (
	"testing"
	"time"
)

func playedAt(h int) time.Time {
	return time.Date(2025, 6, 1, h, 0, 0, 0, time.UTC)
}

func TestTopSongs(t *testing.T) {
	records := []PlayRecord{
		{Title: "Alpha", Artist: "A", PlayedAt: playedAt(10)},
		{Title: "Beta", Artist: "B", PlayedAt: playedAt(11)},
		{Title: "Alpha", Artist: "A", PlayedAt: playedAt(12)},
		{Title: "Alpha", Artist: "A", PlayedAt: playedAt(13)},
		{Title: "Beta", Artist: "B", PlayedAt: playedAt(14)},
		{Title: "Gamma", Artist: "C", PlayedAt: playedAt(15)},
	}

	top := TopSongs(records, 2)
	if len(top) != 2 {
		t.Fatalf("TopSongs() returned %d entries, want 2", len(top))
	}
	if top[0].Key != "Alpha - A" || top[0].Count != 3 {
		t.Errorf("top[0] = %+v, want Alpha - A x3", top[0])
	}
	if top[1].Key != "Beta - B" || top[1].Count != 2 {
		t.Errorf("top[1] = %+v, want Beta - B x2", top[1])
	}
}

func TestTopSongs_SameTitleDifferentArtist(t *testing.T) {
	records := []PlayRecord{
		{Title: "Hurt", Artist: "Nine Inch Nails", PlayedAt: playedAt(10)},
		{Title: "Hurt", Artist: "Johnny Cash", PlayedAt: playedAt(11)},
	}

	top := TopSongs(records, 0)
	if len(top) != 2 {
		t.Fatalf("TopSongs() merged distinct songs: %+v", top)
	}
}

func TestTopSongs_TiesKeepFirstSeenOrder(t *testing.T) {
	records := []PlayRecord{
		{Title: "First", Artist: "A", PlayedAt: playedAt(10)},
		{Title: "Second", Artist: "B", PlayedAt: playedAt(11)},
		{Title: "Third", Artist: "C", PlayedAt: playedAt(12)},
	}

	top := TopSongs(records, 0)
	want := []string{"First - A", "Second - B", "Third - C"}
	for i, key := range want {
		if top[i].Key != key {
			t.Errorf("top[%d].Key = %q, want %q", i, top[i].Key, key)
		}
	}
}

func TestTopArtists_SplitsCredits(t *testing.T) {
	records := []PlayRecord{
		{Title: "Collab", Artist: "Alice, Bob", PlayedAt: playedAt(10)},
		{Title: "Solo", Artist: "Alice", PlayedAt: playedAt(11)},
		{Title: "Another", Artist: "Bob, Carol", PlayedAt: playedAt(12)},
	}

	top := TopArtists(records, 0)
	if len(top) != 3 {
		t.Fatalf("TopArtists() returned %d entries, want 3: %+v", len(top), top)
	}

	counts := make(map[string]int)
	for _, entry := range top {
		counts[entry.Key] = entry.Count
	}
	if counts["Alice"] != 2 || counts["Bob"] != 2 || counts["Carol"] != 1 {
		t.Errorf("TopArtists() counts = %v", counts)
	}
	// Alice appears first: tied with Bob but seen earlier.
	if top[0].Key != "Alice" {
		t.Errorf("top[0].Key = %q, want Alice", top[0].Key)
	}
}

func TestTopEntries_EmptyHistory(t *testing.T) {
	if got := TopSongs(nil, 10); len(got) != 0 {
		t.Errorf("TopSongs(nil) = %+v, want empty", got)
	}
	if got := TopArtists(nil, 10); len(got) != 0 {
		t.Errorf("TopArtists(nil) = %+v, want empty", got)
	}
}
