package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// visibleTo reports whether a task may be read or mutated by a user.
// Unowned tasks are visible to everyone.
func visibleTo(t *domain.Task, userID string) bool {
	return t.OwnerID == "" || t.OwnerID == userID
}

// findVisible loads a task and hides it behind ErrNotFound when the
// requester may not see it.
func (m *TasksModule) findVisible(taskID, requesterID string) (*domain.Task, error) {
	t, err := m.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(t, requesterID) {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// createTask handles the task.create service request.
func (m *TasksModule) createTask(_ context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	category, ok := domain.ParseCategory(req.Category)
	if !ok {
		return TaskResponse{}, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority, ok = domain.ParsePriority(req.Priority)
		if !ok {
			return TaskResponse{}, fmt.Errorf("%w: invalid priority", domain.ErrValidation)
		}
	}

	status := domain.StatusPending
	if req.Status != "" {
		status, ok = domain.ParseStatus(req.Status)
		if !ok {
			return TaskResponse{}, fmt.Errorf("%w: invalid status", domain.ErrValidation)
		}
	}

	now := time.Now()
	t := &domain.Task{
		ID:             uuid.New().String(),
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Category:       category,
		Priority:       priority,
		Status:         status,
		DueDate:        req.DueDate,
		Assignee:       req.Assignee,
		Tags:           req.Tags,
		EstimatedHours: req.EstimatedHours,
		OwnerID:        req.OwnerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := t.Validate(); err != nil {
		return TaskResponse{}, err
	}
	if err := m.repo.Create(t); err != nil {
		return TaskResponse{}, err
	}

	m.publishCreated(t)
	return toTaskResponse(t, now), nil
}

// getTask handles the task.get service request.
func (m *TasksModule) getTask(_ context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.findVisible(req.TaskID, req.RequesterID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(t, time.Now()), nil
}

// listTasks handles the task.list service request: the visible set is
// filtered and sorted by the query engine, then paginated.
func (m *TasksModule) listTasks(_ context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	all, err := m.repo.ListByOwner(req.OwnerID)
	if err != nil {
		return ListTasksResponse{}, err
	}

	filtered := domain.Apply(all, domain.Filter{
		Search:   req.Search,
		Category: req.Category,
		Priority: req.Priority,
		Status:   req.Status,
	}, domain.Sort{
		Field:      req.SortBy,
		Descending: req.SortDesc,
	})

	page := domain.Paginate(filtered, req.Page, req.PageSize)

	now := time.Now()
	resp := ListTasksResponse{
		Tasks:      make([]TaskResponse, 0, len(page.Tasks)),
		Total:      page.Total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages,
	}
	for _, t := range page.Tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(t, now))
	}
	return resp, nil
}

// updateTask handles the task.update service request.
func (m *TasksModule) updateTask(_ context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.findVisible(req.TaskID, req.RequesterID)
	if err != nil {
		return TaskResponse{}, err
	}

	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		category, ok := domain.ParseCategory(*req.Category)
		if !ok {
			return TaskResponse{}, fmt.Errorf("%w: invalid category", domain.ErrValidation)
		}
		t.Category = category
	}
	if req.Priority != nil {
		priority, ok := domain.ParsePriority(*req.Priority)
		if !ok {
			return TaskResponse{}, fmt.Errorf("%w: invalid priority", domain.ErrValidation)
		}
		t.Priority = priority
	}
	if req.Status != nil {
		status, ok := domain.ParseStatus(*req.Status)
		if !ok {
			return TaskResponse{}, fmt.Errorf("%w: invalid status", domain.ErrValidation)
		}
		t.Status = status
	}
	if req.ClearDueDate {
		t.DueDate = nil
	} else if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.Assignee != nil {
		t.Assignee = *req.Assignee
	}
	if req.Tags != nil {
		t.Tags = *req.Tags
	}
	if req.EstimatedHours != nil {
		t.EstimatedHours = *req.EstimatedHours
	}
	if req.ActualHours != nil {
		t.ActualHours = *req.ActualHours
	}
	t.UpdatedAt = time.Now()

	if err := t.Validate(); err != nil {
		return TaskResponse{}, err
	}
	if err := m.repo.Update(t); err != nil {
		return TaskResponse{}, err
	}

	m.publishUpdated(t)
	return toTaskResponse(t, t.UpdatedAt), nil
}

// deleteTask handles the task.delete service request.
func (m *TasksModule) deleteTask(_ context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	t, err := m.findVisible(req.TaskID, req.RequesterID)
	if err != nil {
		return DeleteTaskResponse{Deleted: false, ID: req.TaskID}, err
	}

	if err := m.repo.Delete(req.TaskID); err != nil {
		return DeleteTaskResponse{Deleted: false, ID: req.TaskID}, err
	}

	m.publishDeleted(t)
	return DeleteTaskResponse{Deleted: true, ID: req.TaskID}, nil
}

// toggleStatus handles the task.toggle-status service request, advancing
// the status one step: Pending -> In Progress -> Completed -> Pending.
func (m *TasksModule) toggleStatus(_ context.Context, req ToggleStatusRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.findVisible(req.TaskID, req.RequesterID)
	if err != nil {
		return TaskResponse{}, err
	}

	t.Status = t.Status.Next()
	t.UpdatedAt = time.Now()

	if err := m.repo.Update(t); err != nil {
		return TaskResponse{}, err
	}

	m.publishUpdated(t)
	return toTaskResponse(t, t.UpdatedAt), nil
}

// duplicateTask handles the task.duplicate service request. The copy gets
// a fresh identity and timestamps, starts Pending, and belongs to the
// requester.
func (m *TasksModule) duplicateTask(_ context.Context, req DuplicateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	src, err := m.findVisible(req.TaskID, req.RequesterID)
	if err != nil {
		return TaskResponse{}, err
	}

	now := time.Now()
	copyTask := &domain.Task{
		ID:             uuid.New().String(),
		Title:          src.Title + " (Copy)",
		Description:    src.Description,
		Category:       src.Category,
		Priority:       src.Priority,
		Status:         domain.StatusPending,
		DueDate:        src.DueDate,
		Assignee:       src.Assignee,
		Tags:           append([]string(nil), src.Tags...),
		EstimatedHours: src.EstimatedHours,
		OwnerID:        req.RequesterID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if len(copyTask.Title) > domain.MaxTitleLen {
		copyTask.Title = copyTask.Title[:domain.MaxTitleLen]
	}

	if err := m.repo.Create(copyTask); err != nil {
		return TaskResponse{}, err
	}

	m.publishCreated(copyTask)
	return toTaskResponse(copyTask, now), nil
}

// listOwnerTasks handles the task.list-owner service request, returning
// the complete unfiltered visible set. The statistics module computes
// snapshots from this.
func (m *TasksModule) listOwnerTasks(_ context.Context, req ListOwnerTasksRequest, _ *mono.Msg) (ListOwnerTasksResponse, error) {
	all, err := m.repo.ListByOwner(req.OwnerID)
	if err != nil {
		return ListOwnerTasksResponse{}, err
	}
	return ListOwnerTasksResponse{Tasks: all}, nil
}

// Event publication is best effort; a bus failure never fails the operation.

func (m *TasksModule) publishCreated(t *domain.Task) {
	if m.eventBus == nil {
		return
	}
	event := domain.CreatedEvent{
		TaskID:    t.ID,
		Title:     t.Title,
		OwnerID:   t.OwnerID,
		CreatedAt: t.CreatedAt,
	}
	if err := domain.CreatedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[tasks] Warning: failed to publish TaskCreated event for task %s: %v", t.ID, err)
	}
}

func (m *TasksModule) publishUpdated(t *domain.Task) {
	if m.eventBus == nil {
		return
	}
	event := domain.UpdatedEvent{
		TaskID:    t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		OwnerID:   t.OwnerID,
		UpdatedAt: t.UpdatedAt,
	}
	if err := domain.UpdatedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[tasks] Warning: failed to publish TaskUpdated event for task %s: %v", t.ID, err)
	}
}

func (m *TasksModule) publishDeleted(t *domain.Task) {
	if m.eventBus == nil {
		return
	}
	event := domain.DeletedEvent{
		TaskID:    t.ID,
		OwnerID:   t.OwnerID,
		DeletedAt: time.Now(),
	}
	if err := domain.DeletedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[tasks] Warning: failed to publish TaskDeleted event for task %s: %v", t.ID, err)
	}
}
