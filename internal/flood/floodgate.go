// Package flood provides per-identity rate limiting for search requests.
package flood

import (
	"sync"
	"time"
)

const (
	// windowDuration is the fixed sliding window for rate limiting
	windowDuration = 60 * time.Second
	// cleanupInterval is how often idle entries are swept
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long before an idle identity entry is removed
	idleTimeout = 10 * time.Minute
)

// Floodgate limits how many search requests a single identity may issue per
// minute, using a sliding window of timestamps.
type Floodgate struct {
	limitPerMinute int
	entries        map[string]*identityEntry
	mutex          sync.Mutex
	stopCleanup    chan struct{}
}

type identityEntry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// New creates a Floodgate allowing limitPerMinute requests per identity. A
// non-positive limit disables limiting.
func New(limitPerMinute int) *Floodgate {
	fg := &Floodgate{
		limitPerMinute: limitPerMinute,
		entries:        make(map[string]*identityEntry),
		stopCleanup:    make(chan struct{}),
	}

	go fg.cleanup()

	return fg
}

// Stop stops the background cleanup goroutine.
func (fg *Floodgate) Stop() {
	close(fg.stopCleanup)
}

// Allow reports whether a request from the identity should be processed, and
// records it when allowed.
func (fg *Floodgate) Allow(identity string) bool {
	if fg.limitPerMinute <= 0 {
		return true
	}

	now := time.Now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.entries[identity]
	if !exists {
		entry = &identityEntry{
			timestamps: make([]time.Time, 0, fg.limitPerMinute+1),
		}
		fg.entries[identity] = entry
	}

	entry.lastSeen = now

	windowStart := now.Add(-windowDuration)
	valid := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	entry.timestamps = valid

	if len(entry.timestamps) >= fg.limitPerMinute {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

func (fg *Floodgate) cleanup() {
	fg.performCleanup()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fg.performCleanup()
		case <-fg.stopCleanup:
			return
		}
	}
}

func (fg *Floodgate) performCleanup() {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	cutoff := time.Now().Add(-idleTimeout)
	for identity, entry := range fg.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(fg.entries, identity)
		}
	}
}
