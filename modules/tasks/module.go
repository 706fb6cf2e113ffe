package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/modules/kvstore"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TasksModule provides the task repository and task services.
type TasksModule struct {
	db       *gorm.DB
	repo     Repository
	eventBus mono.EventBus
	dbPath   string

	mu     sync.RWMutex
	drafts *kvstore.Store
}

// Compile-time interface checks.
var _ mono.Module = (*TasksModule)(nil)
var _ mono.ServiceProviderModule = (*TasksModule)(nil)
var _ mono.EventEmitterModule = (*TasksModule)(nil)
var _ mono.HealthCheckableModule = (*TasksModule)(nil)

// NewModule creates a new TasksModule.
func NewModule(dbPath string) *TasksModule {
	return &TasksModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *TasksModule) Name() string {
	return "tasks"
}

// SetEventBus receives the application event bus.
func (m *TasksModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TasksModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		domain.CreatedV1.ToBase(),
		domain.UpdatedV1.ToBase(),
		domain.DeletedV1.ToBase(),
	}
}

// SetDraftStore wires the key-value store backing creation-form drafts.
// Called from main after the kvstore module is up; draft services return
// ErrDraftsUnavailable until then.
func (m *TasksModule) SetDraftStore(store *kvstore.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts = store
}

// Start opens the task database.
func (m *TasksModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	m.repo = NewRepository(db)

	log.Printf("[tasks] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *TasksModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[tasks] Module stopped")
	return nil
}

// Health reports database connectivity and the stored task count.
func (m *TasksModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil || m.repo == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}
	count, err := m.repo.CountAll()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("task count failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
			"tasks":    count,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TasksModule) RegisterServices(container mono.ServiceContainer) error {
	register := func(name string, fn func() error) error {
		if err := fn(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
		return nil
	}

	if err := register("task.create", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.create", json.Unmarshal, json.Marshal, m.createTask)
	}); err != nil {
		return err
	}
	if err := register("task.get", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.get", json.Unmarshal, json.Marshal, m.getTask)
	}); err != nil {
		return err
	}
	if err := register("task.list", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.list", json.Unmarshal, json.Marshal, m.listTasks)
	}); err != nil {
		return err
	}
	if err := register("task.update", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.update", json.Unmarshal, json.Marshal, m.updateTask)
	}); err != nil {
		return err
	}
	if err := register("task.delete", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.delete", json.Unmarshal, json.Marshal, m.deleteTask)
	}); err != nil {
		return err
	}
	if err := register("task.toggle-status", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.toggle-status", json.Unmarshal, json.Marshal, m.toggleStatus)
	}); err != nil {
		return err
	}
	if err := register("task.duplicate", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.duplicate", json.Unmarshal, json.Marshal, m.duplicateTask)
	}); err != nil {
		return err
	}
	if err := register("task.list-owner", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.list-owner", json.Unmarshal, json.Marshal, m.listOwnerTasks)
	}); err != nil {
		return err
	}
	if err := register("task.save-draft", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.save-draft", json.Unmarshal, json.Marshal, m.saveDraft)
	}); err != nil {
		return err
	}
	if err := register("task.get-draft", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.get-draft", json.Unmarshal, json.Marshal, m.getDraft)
	}); err != nil {
		return err
	}
	if err := register("task.discard-draft", func() error {
		return helper.RegisterTypedRequestReplyService(
			container, "task.discard-draft", json.Unmarshal, json.Marshal, m.discardDraft)
	}); err != nil {
		return err
	}

	log.Printf("[tasks] Registered services: task.create, task.get, task.list, task.update, task.delete, task.toggle-status, task.duplicate, task.list-owner, task.save-draft, task.get-draft, task.discard-draft")
	return nil
}
