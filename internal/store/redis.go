package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jukebot/internal/core"
)

const (
	redisPendingKey      = "jukebot:pending"       // hash id -> entry JSON
	redisPendingOrderKey = "jukebot:pending:order" // list of ids, insertion order
	redisHistoryKey      = "jukebot:history"       // list of record JSON, append order
)

// RedisStore persists the pending queue and play history in Redis. Pending
// entries live in a hash with a companion list preserving insertion order;
// history is an RPUSH-only list.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects using a redis:// URL.
func NewRedisStore(url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opt)}, nil
}

func (s *RedisStore) ListPending(ctx context.Context) ([]core.QueueEntry, error) {
	ids, err := s.client.LRange(ctx, redisPendingOrderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending order: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	raw, err := s.client.HMGet(ctx, redisPendingKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending entries: %w", err)
	}

	entries := make([]core.QueueEntry, 0, len(raw))
	for _, v := range raw {
		data, ok := v.(string)
		if !ok {
			// Order list can briefly reference an id deleted from the
			// hash; skip it.
			continue
		}
		var entry core.QueueEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode pending entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RedisStore) InsertPending(ctx context.Context, entry core.QueueEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode pending entry: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisPendingKey, entry.ID, data)
	pipe.RPush(ctx, redisPendingOrderKey, entry.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert pending entry: %w", err)
	}
	return nil
}

func (s *RedisStore) DeletePending(ctx context.Context, id string) error {
	removed, err := s.client.HDel(ctx, redisPendingKey, id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete pending entry: %w", err)
	}
	if err := s.client.LRem(ctx, redisPendingOrderKey, 1, id).Err(); err != nil {
		return fmt.Errorf("failed to delete pending order entry: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) ListHistory(ctx context.Context) ([]core.PlayRecord, error) {
	raw, err := s.client.LRange(ctx, redisHistoryKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	records := make([]core.PlayRecord, 0, len(raw))
	for _, data := range raw {
		var record core.PlayRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("failed to decode history record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *RedisStore) AppendHistory(ctx context.Context, record core.PlayRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode history record: %w", err)
	}
	if err := s.client.RPush(ctx, redisHistoryKey, data).Err(); err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	return nil
}

func (s *RedisStore) PlayedSince(ctx context.Context, since time.Time) (map[string]struct{}, error) {
	pairs := make(map[string]struct{})

	// Walk newest-first and stop at the first record before the cutoff;
	// history is stored in append (chronological) order.
	length, err := s.client.LLen(ctx, redisHistoryKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to measure history: %w", err)
	}

	const batchSize = 256
	for end := length - 1; end >= 0; end -= batchSize {
		start := end - batchSize + 1
		if start < 0 {
			start = 0
		}
		raw, err := s.client.LRange(ctx, redisHistoryKey, start, end).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		for i := len(raw) - 1; i >= 0; i-- {
			var record core.PlayRecord
			if err := json.Unmarshal([]byte(raw[i]), &record); err != nil {
				return nil, fmt.Errorf("failed to decode history record: %w", err)
			}
			if record.PlayedAt.Before(since) {
				return pairs, nil
			}
			pairs[PairKey(record.Title, record.Artist)] = struct{}{}
		}
	}
	return pairs, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
