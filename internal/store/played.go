package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// PlayedTodaySet is the thread-safe cache of (title, artist) pairs played
// since the last local-midnight reset. A Bloom filter front-loads the common
// negative lookup; the LRU bounds memory on pathological days. The set is
// reconstructible at any time from the history store via PlayedSince, which
// is exactly how it is rebuilt after a restart.
type PlayedTodaySet struct {
	pairs             map[string]struct{}
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, struct{}]
	mutex             sync.RWMutex
	maxPairs          int
	falsePositiveRate float64
}

// NewPlayedTodaySet creates a set bounded to maxPairs entries.
func NewPlayedTodaySet(maxPairs int, falsePositiveRate float64) *PlayedTodaySet {
	lruCache, _ := lru.New[string, struct{}](maxPairs)

	return &PlayedTodaySet{
		pairs:             make(map[string]struct{}),
		bloom:             bloom.NewWithEstimates(uint(maxPairs), falsePositiveRate),
		lru:               lruCache,
		maxPairs:          maxPairs,
		falsePositiveRate: falsePositiveRate,
	}
}

// Has reports whether the pair was played inside the current day window.
func (ps *PlayedTodaySet) Has(title, artist string) bool {
	key := PairKey(title, artist)

	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	if !ps.bloom.TestString(key) {
		return false
	}

	_, exists := ps.pairs[key]
	return exists
}

// Add records a played pair.
func (ps *PlayedTodaySet) Add(title, artist string) {
	key := PairKey(title, artist)

	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	if _, exists := ps.pairs[key]; exists {
		return
	}

	ps.pairs[key] = struct{}{}
	ps.bloom.AddString(key)
	ps.lru.Add(key, struct{}{})

	if len(ps.pairs) > ps.maxPairs {
		ps.evictOldest()
	}
}

// Load replaces the set contents with the given pair keys, as produced by
// Store.PlayedSince.
func (ps *PlayedTodaySet) Load(pairs map[string]struct{}) {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	ps.reset()

	for key := range pairs {
		ps.pairs[key] = struct{}{}
		ps.bloom.AddString(key)
		ps.lru.Add(key, struct{}{})
	}

	for len(ps.pairs) > ps.maxPairs {
		ps.evictOldest()
	}
}

// Clear empties the set. Called by the daily reset scheduler at midnight.
func (ps *PlayedTodaySet) Clear() {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()
	ps.reset()
}

// Size returns the number of pairs currently held.
func (ps *PlayedTodaySet) Size() int {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()
	return len(ps.pairs)
}

func (ps *PlayedTodaySet) reset() {
	ps.pairs = make(map[string]struct{})
	ps.bloom = bloom.NewWithEstimates(uint(ps.maxPairs), ps.falsePositiveRate)
	ps.lru.Purge()
}

func (ps *PlayedTodaySet) evictOldest() {
	oldestKey, _, ok := ps.lru.GetOldest()
	if !ok {
		return
	}

	delete(ps.pairs, oldestKey)
	ps.lru.Remove(oldestKey)
}
