package store

import (
	"fmt"
	"testing"
)

func TestPlayedTodaySet_AddHasClear(t *testing.T) {
	set := NewPlayedTodaySet(100, 0.001)

	if set.Has("Song", "Artist") {
		t.Error("Has() = true on empty set")
	}

	set.Add("Song", "Artist")
	if !set.Has("Song", "Artist") {
		t.Error("Has() = false after Add()")
	}
	if set.Size() != 1 {
		t.Errorf("Size() = %d, want 1", set.Size())
	}

	// Adding the same pair twice is idempotent.
	set.Add("Song", "Artist")
	if set.Size() != 1 {
		t.Errorf("Size() = %d after duplicate Add, want 1", set.Size())
	}

	// Same title, different artist is a different pair.
	set.Add("Song", "Other Artist")
	if set.Size() != 2 {
		t.Errorf("Size() = %d, want 2", set.Size())
	}

	set.Clear()
	if set.Size() != 0 {
		t.Errorf("Size() = %d after Clear, want 0", set.Size())
	}
	if set.Has("Song", "Artist") {
		t.Error("Has() = true after Clear()")
	}
}

func TestPlayedTodaySet_Load(t *testing.T) {
	set := NewPlayedTodaySet(100, 0.001)
	set.Add("Stale", "Pair")

	set.Load(map[string]struct{}{
		PairKey("Alpha", "A"): {},
		PairKey("Beta", "B"):  {},
	})

	if set.Has("Stale", "Pair") {
		t.Error("Load() kept a pre-existing pair")
	}
	if !set.Has("Alpha", "A") || !set.Has("Beta", "B") {
		t.Error("Load() dropped loaded pairs")
	}
	if set.Size() != 2 {
		t.Errorf("Size() = %d, want 2", set.Size())
	}
}

func TestPlayedTodaySet_BoundedSize(t *testing.T) {
	const limit = 10
	set := NewPlayedTodaySet(limit, 0.001)

	for i := 0; i < limit*3; i++ {
		set.Add(fmt.Sprintf("Song %d", i), "Artist")
	}

	if set.Size() > limit {
		t.Errorf("Size() = %d, want at most %d", set.Size(), limit)
	}
	// The newest pair survives eviction.
	if !set.Has(fmt.Sprintf("Song %d", limit*3-1), "Artist") {
		t.Error("newest pair was evicted")
	}
}
