package stats

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	domain "github.com/example/taskboard/domain/task"
)

// fakeTaskPort implements tasks.TaskPort over a fixed task set.
type fakeTaskPort struct {
	tasks map[string][]*domain.Task
	err   error
	calls int64
}

func (f *fakeTaskPort) ListOwnerTasks(_ context.Context, ownerID string) ([]*domain.Task, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks[ownerID], nil
}

func TestSnapshotWithoutStore(t *testing.T) {
	port := &fakeTaskPort{
		tasks: map[string][]*domain.Task{
			"u1": {
				{ID: "1", Status: domain.StatusCompleted, Category: domain.CategoryExam, Priority: domain.PriorityHigh},
				{ID: "2", Status: domain.StatusPending, Category: domain.CategoryExam, Priority: domain.PriorityLow},
			},
		},
	}
	svc := NewService(port)

	snap, cached, err := svc.Snapshot(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if cached {
		t.Error("cached = true without a store")
	}
	if snap.Total != 2 || snap.Completed != 1 {
		t.Errorf("snapshot = total %d completed %d", snap.Total, snap.Completed)
	}
	if snap.CompletionRate != 50 {
		t.Errorf("CompletionRate = %d, want 50", snap.CompletionRate)
	}
}

func TestSnapshotEmptyOwner(t *testing.T) {
	svc := NewService(&fakeTaskPort{tasks: map[string][]*domain.Task{}})

	snap, _, err := svc.Snapshot(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Total != 0 || snap.CompletionRate != 0 {
		t.Errorf("empty snapshot = %+v", snap)
	}
}

func TestSnapshotPortError(t *testing.T) {
	svc := NewService(&fakeTaskPort{err: errors.New("tasks module down")})

	if _, _, err := svc.Snapshot(context.Background(), "u1"); err == nil {
		t.Error("Snapshot() error = nil, want error")
	}
}

func TestSnapshotConcurrentRequestsCollapse(t *testing.T) {
	port := &fakeTaskPort{
		tasks: map[string][]*domain.Task{
			"u1": {{ID: "1", Status: domain.StatusPending, Category: domain.CategoryOther, Priority: domain.PriorityLow}},
		},
	}
	svc := NewService(port)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, _, err := svc.Snapshot(ctx, "u1"); err != nil {
				t.Errorf("Snapshot() error = %v", err)
			}
		}()
	}
	wg.Wait()

	// Singleflight collapses concurrent computes; far fewer port calls
	// than requests.
	if calls := atomic.LoadInt64(&port.calls); calls >= n {
		t.Errorf("port calls = %d, want fewer than %d", calls, n)
	}
}

func TestInvalidateWithoutStore(t *testing.T) {
	svc := NewService(&fakeTaskPort{})

	// No store wired: invalidation is a no-op, not a panic.
	svc.Invalidate(context.Background(), "u1")
	svc.Invalidate(context.Background(), "")
}
