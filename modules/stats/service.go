// Package stats serves cached statistics snapshots over the task set.
package stats

import (
	"context"
	"log"
	"sync"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/modules/kvstore"
	"github.com/example/taskboard/modules/tasks"
	"golang.org/x/sync/singleflight"
)

// globalKey caches the snapshot for requests without an owner scope.
const globalKey = "all"

// Service computes statistics snapshots with a cache-aside store in front.
// Concurrent recomputes for the same owner collapse through singleflight.
type Service struct {
	taskPort tasks.TaskPort
	sfGroup  singleflight.Group

	mu    sync.RWMutex
	store *kvstore.Store
}

// NewService creates a new statistics service.
func NewService(taskPort tasks.TaskPort) *Service {
	return &Service{
		taskPort: taskPort,
	}
}

// SetStore wires the snapshot cache. Without it every request computes
// directly, which is correct, just slower.
func (s *Service) SetStore(store *kvstore.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

func (s *Service) cacheStore() *kvstore.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

func cacheKey(ownerID string) string {
	if ownerID == "" {
		return globalKey
	}
	return ownerID
}

// Snapshot returns the statistics snapshot for an owner's visible task
// set. The second return reports whether it came from cache.
func (s *Service) Snapshot(ctx context.Context, ownerID string) (*domain.Snapshot, bool, error) {
	key := cacheKey(ownerID)
	store := s.cacheStore()

	if store != nil {
		var cached domain.Snapshot
		found, err := store.Get(ctx, key, &cached)
		if err != nil {
			// Cache errors fall through to a direct compute.
			log.Printf("[stats] Cache error for %s: %v", key, err)
		}
		if found {
			return &cached, true, nil
		}
	}

	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		taskSet, err := s.taskPort.ListOwnerTasks(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		return domain.ComputeSnapshot(taskSet, time.Now()), nil
	})
	if err != nil {
		return nil, false, err
	}
	snap := val.(*domain.Snapshot)

	if store != nil {
		if err := store.Set(ctx, key, snap); err != nil {
			log.Printf("[stats] Warning: failed to cache snapshot for %s: %v", key, err)
		}
	}

	return snap, false, nil
}

// Invalidate drops the cached snapshot for an owner. A mutation to an
// unowned task is visible to everyone, so it flushes the whole cache.
func (s *Service) Invalidate(ctx context.Context, ownerID string) {
	store := s.cacheStore()
	if store == nil {
		return
	}

	var err error
	if ownerID == "" {
		err = store.DeletePattern(ctx, "*")
	} else {
		err = store.Delete(ctx, cacheKey(ownerID))
	}
	if err != nil {
		log.Printf("[stats] Warning: failed to invalidate snapshot cache: %v", err)
	}
}
