// Package kvstore provides the Redis-backed key-value boundary used for
// session extras, form drafts, and the statistics cache.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store reads and writes JSON blobs under a key prefix with a default TTL.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  *Stats
}

// Stats tracks store operation counters.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
	Errors  uint64 `json:"errors"`
}

// NewStore creates a store over an existing Redis client.
func NewStore(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		stats:  &Stats{},
	}
}

// Get retrieves a blob into dest. It returns false on a miss. A blob that
// fails to unmarshal is treated as absent and the bad key is deleted, so a
// corrupt value can never wedge its key.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	fullKey := s.prefix + key

	data, err := s.client.Get(ctx, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddUint64(&s.stats.Misses, 1)
			return false, nil
		}
		atomic.AddUint64(&s.stats.Errors, 1)
		return false, fmt.Errorf("kvstore get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		atomic.AddUint64(&s.stats.Errors, 1)
		_ = s.client.Del(ctx, fullKey).Err()
		return false, nil
	}

	atomic.AddUint64(&s.stats.Hits, 1)
	return true, nil
}

// Set stores a blob with the default TTL.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

// SetWithTTL stores a blob with a custom TTL. A zero TTL means no expiry.
func (s *Store) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	fullKey := s.prefix + key

	data, err := json.Marshal(value)
	if err != nil {
		atomic.AddUint64(&s.stats.Errors, 1)
		return fmt.Errorf("kvstore marshal error: %w", err)
	}

	if err := s.client.Set(ctx, fullKey, data, ttl).Err(); err != nil {
		atomic.AddUint64(&s.stats.Errors, 1)
		return fmt.Errorf("kvstore set error: %w", err)
	}

	atomic.AddUint64(&s.stats.Sets, 1)
	return nil
}

// Delete removes a blob. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		atomic.AddUint64(&s.stats.Errors, 1)
		return fmt.Errorf("kvstore delete error: %w", err)
	}
	atomic.AddUint64(&s.stats.Deletes, 1)
	return nil
}

// DeletePattern removes every key under the prefix matching the pattern.
func (s *Store) DeletePattern(ctx context.Context, pattern string) error {
	fullPattern := s.prefix + pattern

	var cursor uint64
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			atomic.AddUint64(&s.stats.Errors, 1)
			return fmt.Errorf("kvstore scan error: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				atomic.AddUint64(&s.stats.Errors, 1)
				return fmt.Errorf("kvstore delete error: %w", err)
			}
			atomic.AddUint64(&s.stats.Deletes, uint64(len(keys)))
		}
		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

// StatsSnapshot returns a copy of the current counters.
func (s *Store) StatsSnapshot() Stats {
	return Stats{
		Hits:    atomic.LoadUint64(&s.stats.Hits),
		Misses:  atomic.LoadUint64(&s.stats.Misses),
		Sets:    atomic.LoadUint64(&s.stats.Sets),
		Deletes: atomic.LoadUint64(&s.stats.Deletes),
		Errors:  atomic.LoadUint64(&s.stats.Errors),
	}
}
