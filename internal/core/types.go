package core

import (
	"context"
	"time"
)

// PlaceholderArtworkURL is used when the search provider returns no album art.
const PlaceholderArtworkURL = "https://placehold.co/300x300?text=%E2%99%AA"

// ArtistSeparator joins multiple credited artists into one display string and
// is the split convention for per-artist statistics.
const ArtistSeparator = ", "

// Candidate is a track returned by the resolver, not yet committed to any
// queue. Artist holds all credited artists joined with ArtistSeparator.
type Candidate struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	ArtworkURL string  `json:"artwork_url"`
	Score      float64 `json:"-"`
}

// QueueEntry is a confirmed, pending-to-be-played track.
type QueueEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ArtworkURL  string `json:"artwork_url"`
	PlayedToday bool   `json:"played_today"`
	Requester   string `json:"requester"`
}

// PlayRecord is an archived play. History is append-only; records are never
// mutated or deleted.
type PlayRecord struct {
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Requester string    `json:"requester"`
	PlayedAt  time.Time `json:"played_at"`
}

// ConfirmResult is the outcome of a confirmation attempt.
type ConfirmResult int

const (
	// ConfirmAdded means the track was appended to the queue.
	ConfirmAdded ConfirmResult = iota
	// ConfirmExpired means the presented token was missing, stale, or
	// already redeemed.
	ConfirmExpired
	// ConfirmDuplicate means an entry with the same title and artist is
	// already pending. The token is consumed regardless.
	ConfirmDuplicate
)

// TrackResolver resolves free-text queries to candidate tracks, best match
// first. An empty result is not an error.
type TrackResolver interface {
	Resolve(ctx context.Context, query string) ([]Candidate, error)
}

// Store is the persistence boundary for the pending queue and play history.
// The in-memory queue stays authoritative for the running process; the store
// is its durability mirror and the source for restart recovery. Implemented
// by the adapters in internal/store.
type Store interface {
	ListPending(ctx context.Context) ([]QueueEntry, error)
	InsertPending(ctx context.Context, entry QueueEntry) error
	DeletePending(ctx context.Context, id string) error

	ListHistory(ctx context.Context) ([]PlayRecord, error)
	AppendHistory(ctx context.Context, record PlayRecord) error
	// PlayedSince returns the set of (title, artist) pair keys of records
	// played at or after the given instant.
	PlayedSince(ctx context.Context, since time.Time) (map[string]struct{}, error)

	Ping(ctx context.Context) error
	Close() error
}

// Archiver is optionally implemented by stores with multi-write transactions:
// ArchivePlayed appends the record and deletes the pending entry as one
// atomic unit.
type Archiver interface {
	ArchivePlayed(ctx context.Context, pendingID string, record PlayRecord) error
}

// Broadcaster fans out queue snapshots to connected display clients.
type Broadcaster interface {
	Broadcast(entries []QueueEntry)
}

// PlayedSet is the ephemeral set of (title, artist) pairs played since the
// last local-midnight reset. It caches a filter over the history store.
type PlayedSet interface {
	Has(title, artist string) bool
	Add(title, artist string)
	Load(pairs map[string]struct{})
	Clear()
	Size() int
}
