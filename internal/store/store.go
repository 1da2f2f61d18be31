// Package store provides the persistence adapters behind core.Store, plus the
// played-today set. Available backends: in-memory, SQLite, PostgreSQL, and
// Redis.
package store

import (
	"errors"

	"jukebot/internal/core"
)

// ErrNotFound is returned when a referenced pending entry does not exist.
var ErrNotFound = errors.New("store: entry not found")

// PairKey builds the canonical (title, artist) key used by PlayedSince
// results and the played-today set.
func PairKey(title, artist string) string {
	return title + "\x1f" + artist
}

var (
	_ core.Store    = (*MemoryStore)(nil)
	_ core.Archiver = (*MemoryStore)(nil)
	_ core.Store    = (*SQLiteStore)(nil)
	_ core.Archiver = (*SQLiteStore)(nil)
	_ core.Store    = (*PostgresStore)(nil)
	_ core.Archiver = (*PostgresStore)(nil)
	_ core.Store    = (*RedisStore)(nil)

	_ core.PlayedSet = (*PlayedTodaySet)(nil)
)
