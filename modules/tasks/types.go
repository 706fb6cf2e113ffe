package tasks

import (
	"time"

	domain "github.com/example/taskboard/domain/task"
)

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category"`
	Priority       string     `json:"priority,omitempty"`
	Status         string     `json:"status,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Assignee       string     `json:"assignee,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	EstimatedHours float64    `json:"estimated_hours,omitempty"`
	OwnerID        string     `json:"owner_id"`
}

// GetTaskRequest represents a single-task fetch.
type GetTaskRequest struct {
	TaskID      string `json:"task_id"`
	RequesterID string `json:"requester_id"`
}

// ListTasksRequest represents a filtered, sorted, paginated list request.
type ListTasksRequest struct {
	OwnerID  string `json:"owner_id"`
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
	SortBy   string `json:"sort_by,omitempty"`
	SortDesc bool   `json:"sort_desc,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
}

// ListTasksResponse carries one page of tasks plus pagination metadata.
type ListTasksResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// UpdateTaskRequest represents a partial task update. Nil fields are left
// unchanged.
type UpdateTaskRequest struct {
	TaskID         string     `json:"task_id"`
	RequesterID    string     `json:"requester_id"`
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Category       *string    `json:"category,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	Status         *string    `json:"status,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ClearDueDate   bool       `json:"clear_due_date,omitempty"`
	Assignee       *string    `json:"assignee,omitempty"`
	Tags           *[]string  `json:"tags,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
}

// DeleteTaskRequest represents a task deletion request.
type DeleteTaskRequest struct {
	TaskID      string `json:"task_id"`
	RequesterID string `json:"requester_id"`
}

// DeleteTaskResponse confirms a deletion.
type DeleteTaskResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// ToggleStatusRequest advances a task's status one step in the workflow.
type ToggleStatusRequest struct {
	TaskID      string `json:"task_id"`
	RequesterID string `json:"requester_id"`
}

// DuplicateTaskRequest copies an existing task for the requester.
type DuplicateTaskRequest struct {
	TaskID      string `json:"task_id"`
	RequesterID string `json:"requester_id"`
}

// ListOwnerTasksRequest fetches the complete visible task set for a user,
// unfiltered. Used by the statistics module.
type ListOwnerTasksRequest struct {
	OwnerID string `json:"owner_id"`
}

// ListOwnerTasksResponse carries the complete visible task set.
type ListOwnerTasksResponse struct {
	Tasks []*domain.Task `json:"tasks"`
}

// TaskResponse is the external representation of a task.
type TaskResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category"`
	CategorySlug   string     `json:"category_slug"`
	Priority       string     `json:"priority"`
	PrioritySlug   string     `json:"priority_slug"`
	Status         string     `json:"status"`
	StatusSlug     string     `json:"status_slug"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Overdue        bool       `json:"overdue"`
	Assignee       string     `json:"assignee,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	EstimatedHours float64    `json:"estimated_hours"`
	ActualHours    float64    `json:"actual_hours"`
	OwnerID        string     `json:"owner_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SaveDraftRequest stores an in-progress creation form snapshot.
type SaveDraftRequest struct {
	OwnerID string       `json:"owner_id"`
	Draft   DraftPayload `json:"draft"`
}

// SaveDraftResponse reports whether the draft was written. Saved is false
// when the payload was unchanged since the last save.
type SaveDraftResponse struct {
	Saved   bool      `json:"saved"`
	SavedAt time.Time `json:"saved_at"`
}

// GetDraftRequest fetches a user's stored draft.
type GetDraftRequest struct {
	OwnerID string `json:"owner_id"`
}

// GetDraftResponse carries a stored draft, if any.
type GetDraftResponse struct {
	Found   bool         `json:"found"`
	Draft   DraftPayload `json:"draft,omitempty"`
	SavedAt time.Time    `json:"saved_at,omitempty"`
}

// DiscardDraftRequest removes a user's stored draft.
type DiscardDraftRequest struct {
	OwnerID string `json:"owner_id"`
}

// DiscardDraftResponse confirms a draft discard.
type DiscardDraftResponse struct {
	Discarded bool `json:"discarded"`
}

func toTaskResponse(t *domain.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Category:       string(t.Category),
		CategorySlug:   t.Category.Slug(),
		Priority:       string(t.Priority),
		PrioritySlug:   t.Priority.Slug(),
		Status:         string(t.Status),
		StatusSlug:     t.Status.Slug(),
		DueDate:        t.DueDate,
		Overdue:        t.Overdue(now),
		Assignee:       t.Assignee,
		Tags:           t.Tags,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		OwnerID:        t.OwnerID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
