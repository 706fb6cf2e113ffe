package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/modules/kvstore"
	"github.com/example/taskboard/modules/tasks"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// StatsModule serves statistics snapshots and keeps the cache honest by
// consuming task mutation events.
type StatsModule struct {
	service       *Service
	taskContainer mono.ServiceContainer
}

// Compile-time interface checks.
var _ mono.Module = (*StatsModule)(nil)
var _ mono.ServiceProviderModule = (*StatsModule)(nil)
var _ mono.DependentModule = (*StatsModule)(nil)
var _ mono.EventConsumerModule = (*StatsModule)(nil)

// NewModule creates a new StatsModule.
func NewModule() *StatsModule {
	return &StatsModule{}
}

// Name returns the module name.
func (m *StatsModule) Name() string {
	return "stats"
}

// Dependencies returns the list of module dependencies.
func (m *StatsModule) Dependencies() []string {
	return []string{"tasks"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *StatsModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "tasks" {
		m.taskContainer = container
		m.service = NewService(tasks.NewTaskAdapter(container))
	}
}

// SetStore wires the snapshot cache. Called from main after the kvstore
// module is up.
func (m *StatsModule) SetStore(store *kvstore.Store) {
	if m.service != nil {
		m.service.SetStore(store)
	}
}

// Start starts the module.
func (m *StatsModule) Start(_ context.Context) error {
	if m.service == nil {
		return fmt.Errorf("tasks dependency not set")
	}
	log.Println("[stats] Module started (depends on: tasks)")
	return nil
}

// Stop stops the module.
func (m *StatsModule) Stop(_ context.Context) error {
	log.Println("[stats] Module stopped")
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *StatsModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "stats.snapshot", json.Unmarshal, json.Marshal, m.handleSnapshot,
	); err != nil {
		return fmt.Errorf("failed to register stats.snapshot service: %w", err)
	}

	log.Printf("[stats] Registered services: stats.snapshot")
	return nil
}

// RegisterEventConsumers subscribes to every task mutation so cached
// snapshots never outlive a change.
func (m *StatsModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, domain.CreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, domain.UpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, domain.DeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[stats] Registered event consumers: TaskCreated, TaskUpdated, TaskDeleted")
	return nil
}

func (m *StatsModule) handleSnapshot(ctx context.Context, req SnapshotRequest, _ *mono.Msg) (SnapshotResponse, error) {
	snap, cached, err := m.service.Snapshot(ctx, req.OwnerID)
	if err != nil {
		return SnapshotResponse{}, err
	}
	return SnapshotResponse{
		Snapshot: snap,
		Cached:   cached,
	}, nil
}

func (m *StatsModule) handleTaskCreated(ctx context.Context, event domain.CreatedEvent, _ *mono.Msg) error {
	m.service.Invalidate(ctx, event.OwnerID)
	return nil
}

func (m *StatsModule) handleTaskUpdated(ctx context.Context, event domain.UpdatedEvent, _ *mono.Msg) error {
	m.service.Invalidate(ctx, event.OwnerID)
	return nil
}

func (m *StatsModule) handleTaskDeleted(ctx context.Context, event domain.DeletedEvent, _ *mono.Msg) error {
	m.service.Invalidate(ctx, event.OwnerID)
	return nil
}
