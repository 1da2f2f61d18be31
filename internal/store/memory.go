package store

import (
	"context"
	"sync"
	"time"

	"jukebot/internal/core"
)

// MemoryStore keeps pending entries and history in process memory. It backs
// deployments that accept losing durability across restarts, and tests.
type MemoryStore struct {
	mutex   sync.RWMutex
	pending []core.QueueEntry
	history []core.PlayRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) ListPending(_ context.Context) ([]core.QueueEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]core.QueueEntry, len(s.pending))
	copy(out, s.pending)
	return out, nil
}

func (s *MemoryStore) InsertPending(_ context.Context, entry core.QueueEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.pending = append(s.pending, entry)
	return nil
}

func (s *MemoryStore) DeletePending(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, entry := range s.pending {
		if entry.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListHistory(_ context.Context) ([]core.PlayRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]core.PlayRecord, len(s.history))
	copy(out, s.history)
	return out, nil
}

func (s *MemoryStore) AppendHistory(_ context.Context, record core.PlayRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.history = append(s.history, record)
	return nil
}

func (s *MemoryStore) PlayedSince(_ context.Context, since time.Time) (map[string]struct{}, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	pairs := make(map[string]struct{})
	for _, record := range s.history {
		if !record.PlayedAt.Before(since) {
			pairs[PairKey(record.Title, record.Artist)] = struct{}{}
		}
	}
	return pairs, nil
}

// ArchivePlayed implements Archiver. Both writes happen under one lock, so a
// concurrent reader never sees the entry gone without its history record.
func (s *MemoryStore) ArchivePlayed(_ context.Context, pendingID string, record core.PlayRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.history = append(s.history, record)
	for i, entry := range s.pending {
		if entry.ID == pendingID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
