package stats

import (
	domain "github.com/example/taskboard/domain/task"
)

// SnapshotRequest asks for the statistics snapshot of an owner's task set.
type SnapshotRequest struct {
	OwnerID string `json:"owner_id"`
}

// SnapshotResponse carries the snapshot and whether it was served from cache.
type SnapshotResponse struct {
	Snapshot *domain.Snapshot `json:"snapshot"`
	Cached   bool             `json:"cached"`
}
