package task

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// CreatedEvent is emitted when a new task is created (including duplicates).
type CreatedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.TaskCreated
var CreatedV1 = helper.EventDefinition[CreatedEvent](
	"task", "TaskCreated", "v1",
)

// UpdatedEvent is emitted when a task is edited or its status is toggled.
type UpdatedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	OwnerID   string    `json:"owner_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.TaskUpdated
var UpdatedV1 = helper.EventDefinition[UpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// DeletedEvent is emitted when a task is deleted.
type DeletedEvent struct {
	TaskID    string    `json:"task_id"`
	OwnerID   string    `json:"owner_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// DeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.TaskDeleted
var DeletedV1 = helper.EventDefinition[DeletedEvent](
	"task", "TaskDeleted", "v1",
)
