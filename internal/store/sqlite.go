package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// SQLite driver registration.
	_ "github.com/mattn/go-sqlite3"

	"jukebot/internal/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pending (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	artist TEXT NOT NULL,
	artwork_url TEXT NOT NULL,
	played_today INTEGER NOT NULL,
	requester TEXT NOT NULL,
	inserted_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	artist TEXT NOT NULL,
	requester TEXT NOT NULL,
	played_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_played_at ON history (played_at);
`

// SQLiteStore persists the pending queue and play history in a local SQLite
// database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ListPending(ctx context.Context) ([]core.QueueEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, artist, artwork_url, played_today, requester
		 FROM pending ORDER BY inserted_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}
	defer rows.Close()

	var entries []core.QueueEntry
	for rows.Next() {
		var entry core.QueueEntry
		var playedToday int
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Artist,
			&entry.ArtworkURL, &playedToday, &entry.Requester); err != nil {
			return nil, fmt.Errorf("failed to scan pending entry: %w", err)
		}
		entry.PlayedToday = playedToday != 0
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) InsertPending(ctx context.Context, entry core.QueueEntry) error {
	playedToday := 0
	if entry.PlayedToday {
		playedToday = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending (id, title, artist, artwork_url, played_today, requester, inserted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Title, entry.Artist, entry.ArtworkURL,
		playedToday, entry.Requester, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert pending entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeletePending(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pending WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListHistory(ctx context.Context) ([]core.PlayRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, artist, requester, played_at FROM history ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []core.PlayRecord
	for rows.Next() {
		var record core.PlayRecord
		var playedAt int64
		if err := rows.Scan(&record.Title, &record.Artist, &record.Requester, &playedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		record.PlayedAt = time.Unix(0, playedAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) AppendHistory(ctx context.Context, record core.PlayRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (title, artist, requester, played_at) VALUES (?, ?, ?, ?)`,
		record.Title, record.Artist, record.Requester, record.PlayedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PlayedSince(ctx context.Context, since time.Time) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, artist FROM history WHERE played_at >= ?`, since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query played pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string]struct{})
	for rows.Next() {
		var title, artist string
		if err := rows.Scan(&title, &artist); err != nil {
			return nil, fmt.Errorf("failed to scan played pair: %w", err)
		}
		pairs[PairKey(title, artist)] = struct{}{}
	}
	return pairs, rows.Err()
}

// ArchivePlayed implements Archiver: the history append and the pending
// delete commit as one transaction.
func (s *SQLiteStore) ArchivePlayed(ctx context.Context, pendingID string, record core.PlayRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history (title, artist, requester, played_at) VALUES (?, ?, ?, ?)`,
		record.Title, record.Artist, record.Requester, record.PlayedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending WHERE id = ?`, pendingID); err != nil {
		return fmt.Errorf("failed to delete pending entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit played transition: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
