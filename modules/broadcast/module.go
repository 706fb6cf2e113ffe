package broadcast

import (
	"context"
	"fmt"
	"log"

	domain "github.com/example/taskboard/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// BroadcastModule consumes task mutation events and fans them out to
// connected WebSocket clients through the Hub.
type BroadcastModule struct {
	hub    *Hub
	cancel context.CancelFunc
}

// Compile-time interface checks.
var _ mono.Module = (*BroadcastModule)(nil)
var _ mono.EventConsumerModule = (*BroadcastModule)(nil)
var _ mono.HealthCheckableModule = (*BroadcastModule)(nil)

// NewModule creates a new BroadcastModule.
func NewModule() *BroadcastModule {
	return &BroadcastModule{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// GetHub returns the hub so the HTTP layer can attach WebSocket clients.
func (m *BroadcastModule) GetHub() *Hub {
	return m.hub
}

// Start starts the hub's main loop.
func (m *BroadcastModule) Start(_ context.Context) error {
	hubCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.hub.Run(hubCtx)

	log.Println("[broadcast] Module started")
	return nil
}

// Stop stops the hub and closes all client connections.
func (m *BroadcastModule) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
		m.hub.Wait()
	}
	log.Println("[broadcast] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "Broadcast hub is running",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// RegisterEventConsumers subscribes to task mutation events.
func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, domain.CreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, domain.UpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, domain.DeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[broadcast] Registered event consumers: TaskCreated, TaskUpdated, TaskDeleted")
	return nil
}

// Notification is the message shape pushed to WebSocket clients.
type Notification struct {
	Type   string `json:"type"`
	TaskID string `json:"task_id"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

func (m *BroadcastModule) handleTaskCreated(_ context.Context, event domain.CreatedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(event.OwnerID, "task.created", Notification{
		Type:   "task.created",
		TaskID: event.TaskID,
		Title:  event.Title,
	})
	return nil
}

func (m *BroadcastModule) handleTaskUpdated(_ context.Context, event domain.UpdatedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(event.OwnerID, "task.updated", Notification{
		Type:   "task.updated",
		TaskID: event.TaskID,
		Title:  event.Title,
		Status: event.Status,
	})
	return nil
}

func (m *BroadcastModule) handleTaskDeleted(_ context.Context, event domain.DeletedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(event.OwnerID, "task.deleted", Notification{
		Type:   "task.deleted",
		TaskID: event.TaskID,
	})
	return nil
}
