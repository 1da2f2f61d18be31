package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueueManager owns the shared pending queue and applies every state
// transition to it. All mutation from the chat path (confirmed inserts) and
// the display path (removals, played transitions) is serialized through one
// mutex; in particular the duplicate check runs under the same lock as the
// append, so two confirmations racing through their I/O suspensions can never
// both pass it.
type QueueManager struct {
	store       Store
	played      PlayedSet
	registry    *ConfirmRegistry
	broadcaster Broadcaster
	logger      *zap.Logger
	timezone    *time.Location
	now         func() time.Time

	mutex    sync.Mutex
	entries  []QueueEntry
	inflight map[string]chan struct{}
}

// NewQueueManager creates a queue manager. The timezone bounds the
// played-today day window.
func NewQueueManager(
	st Store,
	played PlayedSet,
	registry *ConfirmRegistry,
	broadcaster Broadcaster,
	timezone *time.Location,
	logger *zap.Logger,
) *QueueManager {
	return &QueueManager{
		store:       st,
		played:      played,
		registry:    registry,
		broadcaster: broadcaster,
		logger:      logger,
		timezone:    timezone,
		now:         time.Now,
		inflight:    make(map[string]chan struct{}),
	}
}

// Load hydrates the in-memory queue and the played-today set from the store.
// Called once at startup; a failure here is fatal because running without the
// configured store would silently degrade durability.
func (m *QueueManager) Load(ctx context.Context) error {
	pending, err := m.store.ListPending(ctx)
	if err != nil {
		return err
	}

	pairs, err := m.store.PlayedSince(ctx, m.startOfToday())
	if err != nil {
		return err
	}

	m.mutex.Lock()
	m.entries = pending
	m.mutex.Unlock()

	m.played.Load(pairs)

	m.logger.Info("Queue state loaded",
		zap.Int("pending", len(pending)),
		zap.Int("playedToday", len(pairs)))
	return nil
}

// HasBeenPlayedToday reports whether the (title, artist) pair was played
// since the last local midnight.
func (m *QueueManager) HasBeenPlayedToday(title, artist string) bool {
	return m.played.Has(title, artist)
}

// Confirm runs the AwaitingConfirmation → Queued transition. The token is
// redeemed first and is consumed even when the attempt then fails as a
// duplicate, so a stale confirmation UI cannot spam duplicate attempts.
func (m *QueueManager) Confirm(
	ctx context.Context,
	identity, token string,
	candidate Candidate,
	playedToday bool,
	requester string,
) ConfirmResult {
	if !m.registry.Redeem(identity, token) {
		m.logger.Debug("Confirmation token rejected",
			zap.String("identity", identity))
		return ConfirmExpired
	}

	entry := QueueEntry{
		ID:          uuid.NewString(),
		Title:       candidate.Title,
		Artist:      candidate.Artist,
		ArtworkURL:  candidate.ArtworkURL,
		PlayedToday: playedToday,
		Requester:   requester,
	}

	m.mutex.Lock()
	for _, existing := range m.entries {
		if existing.Title == entry.Title && existing.Artist == entry.Artist {
			m.mutex.Unlock()
			m.logger.Debug("Duplicate confirmation rejected",
				zap.String("title", entry.Title),
				zap.String("artist", entry.Artist))
			return ConfirmDuplicate
		}
	}
	m.entries = append(m.entries, entry)
	done := make(chan struct{})
	m.inflight[entry.ID] = done
	snapshot := m.snapshotLocked()
	m.mutex.Unlock()

	// Durability is fire-and-forget relative to the user-facing reply; the
	// in-memory queue remains authoritative for the running process. The
	// insert stays tracked in inflight until it lands so a removal of the
	// same entry cannot reach the store first.
	persistCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			m.mutex.Lock()
			delete(m.inflight, entry.ID)
			m.mutex.Unlock()
			close(done)
		}()
		if err := m.store.InsertPending(persistCtx, entry); err != nil {
			m.logger.Error("Failed to persist pending entry",
				zap.String("id", entry.ID),
				zap.String("title", entry.Title),
				zap.Error(err))
		}
	}()

	m.broadcast(snapshot)

	m.logger.Info("Track queued",
		zap.String("id", entry.ID),
		zap.String("title", entry.Title),
		zap.String("artist", entry.Artist),
		zap.String("requester", requester))
	return ConfirmAdded
}

// MarkPlayed runs the Queued → Played transition: the entry is archived to
// history, added to the played-today set, and removed from the queue. An id
// no longer present is a no-op; two moderators racing on the same entry is
// expected, not an error.
func (m *QueueManager) MarkPlayed(ctx context.Context, id string) {
	m.mutex.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mutex.Unlock()
		m.logger.Debug("Mark-played for unknown entry, ignoring",
			zap.String("id", id))
		return
	}

	entry := m.entries[idx]
	record := PlayRecord{
		Title:     entry.Title,
		Artist:    entry.Artist,
		Requester: entry.Requester,
		PlayedAt:  m.now().In(m.timezone),
	}

	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
	insert := m.inflight[id]
	snapshot := m.snapshotLocked()
	m.mutex.Unlock()

	m.played.Add(entry.Title, entry.Artist)

	m.awaitInsert(insert)

	// The history append happens before the removal broadcast, so a stats
	// read never observes the song gone from the queue without its record.
	m.archive(ctx, entry.ID, record)

	m.broadcast(snapshot)

	m.logger.Info("Track marked played",
		zap.String("id", entry.ID),
		zap.String("title", entry.Title),
		zap.String("artist", entry.Artist))
}

// archive writes the play record and deletes the pending mirror, in one
// transaction when the store supports it. Failures are logged; the in-memory
// transition is never rolled back.
func (m *QueueManager) archive(ctx context.Context, pendingID string, record PlayRecord) {
	if archiver, ok := m.store.(Archiver); ok {
		if err := archiver.ArchivePlayed(ctx, pendingID, record); err != nil {
			m.logger.Error("Failed to archive played track",
				zap.String("id", pendingID),
				zap.String("title", record.Title),
				zap.Error(err))
		}
		return
	}

	if err := m.store.AppendHistory(ctx, record); err != nil {
		m.logger.Error("Failed to append play history",
			zap.String("title", record.Title),
			zap.Error(err))
	}
	if err := m.store.DeletePending(ctx, pendingID); err != nil {
		m.logger.Warn("Failed to delete pending mirror",
			zap.String("id", pendingID),
			zap.Error(err))
	}
}

// Remove runs the Queued → Removed transition: moderator deletion, no history
// write. Removing an absent id is a no-op.
func (m *QueueManager) Remove(ctx context.Context, id string) {
	m.mutex.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mutex.Unlock()
		m.logger.Debug("Removal of unknown entry, ignoring",
			zap.String("id", id))
		return
	}

	entry := m.entries[idx]
	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
	insert := m.inflight[id]
	snapshot := m.snapshotLocked()
	m.mutex.Unlock()

	m.awaitInsert(insert)

	if err := m.store.DeletePending(ctx, id); err != nil {
		m.logger.Warn("Failed to delete pending entry",
			zap.String("id", id),
			zap.Error(err))
	}

	m.broadcast(snapshot)

	m.logger.Info("Track removed from queue",
		zap.String("id", entry.ID),
		zap.String("title", entry.Title))
}

// Snapshot returns a copy of the current queue in display order.
func (m *QueueManager) Snapshot() []QueueEntry {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.snapshotLocked()
}

// Size returns the number of pending entries.
func (m *QueueManager) Size() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.entries)
}

// ResetPlayedToday clears the played-today window. Called by the daily reset
// scheduler at local midnight.
func (m *QueueManager) ResetPlayedToday() {
	cleared := m.played.Size()
	m.played.Clear()
	m.logger.Info("Played-today window reset",
		zap.Int("cleared", cleared))
}

func (m *QueueManager) startOfToday() time.Time {
	now := m.now().In(m.timezone)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, m.timezone)
}

// awaitInsert blocks until the entry's pending insert has landed. A pending
// row may only be deleted after the insert it shadows, otherwise the store
// keeps an orphan row that Load would resurrect after a restart.
func (m *QueueManager) awaitInsert(insert chan struct{}) {
	if insert != nil {
		<-insert
	}
}

func (m *QueueManager) indexLocked(id string) int {
	for i, entry := range m.entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

func (m *QueueManager) snapshotLocked() []QueueEntry {
	out := make([]QueueEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *QueueManager) broadcast(snapshot []QueueEntry) {
	if m.broadcaster == nil {
		return
	}
	m.broadcaster.Broadcast(snapshot)
}
