package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/taskboard/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort is the interface other modules use to reach task services.
type TaskPort interface {
	ListOwnerTasks(ctx context.Context, ownerID string) ([]*domain.Task, error)
}

// TaskAdapter implements TaskPort over the service container.
type TaskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new TaskAdapter.
func NewTaskAdapter(container mono.ServiceContainer) *TaskAdapter {
	return &TaskAdapter{
		container: container,
	}
}

// ListOwnerTasks fetches the complete visible task set for a user.
func (a *TaskAdapter) ListOwnerTasks(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	req := ListOwnerTasksRequest{OwnerID: ownerID}
	var resp ListOwnerTasksResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"task.list-owner",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("task.list-owner request failed: %w", err)
	}

	return resp.Tasks, nil
}
