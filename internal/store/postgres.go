package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"jukebot/internal/core"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS pending (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	artist TEXT NOT NULL,
	artwork_url TEXT NOT NULL,
	played_today BOOLEAN NOT NULL,
	requester TEXT NOT NULL,
	inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS history (
	seq BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	artist TEXT NOT NULL,
	requester TEXT NOT NULL,
	played_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_played_at ON history (played_at);
`

// PostgresStore persists the pending queue and play history in PostgreSQL
// through a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database named by dsn and ensures the
// schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize postgres schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]core.QueueEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, artist, artwork_url, played_today, requester
		 FROM pending ORDER BY inserted_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}
	defer rows.Close()

	var entries []core.QueueEntry
	for rows.Next() {
		var entry core.QueueEntry
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Artist,
			&entry.ArtworkURL, &entry.PlayedToday, &entry.Requester); err != nil {
			return nil, fmt.Errorf("failed to scan pending entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) InsertPending(ctx context.Context, entry core.QueueEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pending (id, title, artist, artwork_url, played_today, requester)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Title, entry.Artist, entry.ArtworkURL,
		entry.PlayedToday, entry.Requester)
	if err != nil {
		return fmt.Errorf("failed to insert pending entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeletePending(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pending WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListHistory(ctx context.Context) ([]core.PlayRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT title, artist, requester, played_at FROM history ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []core.PlayRecord
	for rows.Next() {
		var record core.PlayRecord
		if err := rows.Scan(&record.Title, &record.Artist,
			&record.Requester, &record.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *PostgresStore) AppendHistory(ctx context.Context, record core.PlayRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO history (title, artist, requester, played_at) VALUES ($1, $2, $3, $4)`,
		record.Title, record.Artist, record.Requester, record.PlayedAt)
	if err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	return nil
}

func (s *PostgresStore) PlayedSince(ctx context.Context, since time.Time) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT title, artist FROM history WHERE played_at >= $1`, since)
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

// ArchivePlayed implements Archiver using a single transaction.
func (s *PostgresStore) ArchivePlayed(ctx context.Context, pendingID string, record core.PlayRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx,
		`INSERT INTO history (title, artist, requester, played_at) VALUES ($1, $2, $3, $4)`,
		record.Title, record.Artist, record.Requester, record.PlayedAt); err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pending WHERE id = $1`, pendingID); err != nil {
		return fmt.Errorf("failed to delete pending entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit played transition: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
