package task

import (
	"strings"
	"time"
)

// Status represents the workflow state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists all valid statuses in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Rank returns the fixed ordering rank used by the relevance sort.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusInProgress:
		return 2
	case StatusCompleted:
		return 3
	}
	return 0
}

// Slug returns the canonical derived key for the status.
func (s Status) Slug() string {
	return Slug(string(s))
}

// Valid reports whether the status is one of the fixed values.
func (s Status) Valid() bool {
	return s.Rank() != 0
}

// Next returns the status a toggle advances to: Pending -> In Progress -> Completed -> Pending.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// ParseStatus resolves a status from any of its historical spellings
// ("In Progress", "in-progress", "inprogress") to the canonical value.
func ParseStatus(s string) (Status, bool) {
	for _, status := range Statuses {
		if Slug(s) == status.Slug() || normalize(s) == normalize(string(status)) {
			return status, true
		}
	}
	return "", false
}

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists all valid priorities from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank returns the fixed ordering rank: High=3, Medium=2, Low=1.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

// Slug returns the canonical derived key for the priority.
func (p Priority) Slug() string {
	return Slug(string(p))
}

// Valid reports whether the priority is one of the fixed values.
func (p Priority) Valid() bool {
	return p.Rank() != 0
}

// ParsePriority resolves a priority string case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	for _, priority := range Priorities {
		if normalize(s) == normalize(string(priority)) {
			return priority, true
		}
	}
	return "", false
}

// Category represents the academic category of a task.
type Category string

const (
	CategoryAssignment Category = "Assignment"
	CategoryExam       Category = "Exam"
	CategoryProject    Category = "Project"
	CategoryReading    Category = "Reading"
	CategoryResearch   Category = "Research"
	CategoryOther      Category = "Other"
)

// Categories lists the fixed category set.
var Categories = []Category{
	CategoryAssignment,
	CategoryExam,
	CategoryProject,
	CategoryReading,
	CategoryResearch,
	CategoryOther,
}

// Slug returns the canonical derived key for the category.
func (c Category) Slug() string {
	return Slug(string(c))
}

// Valid reports whether the category is one of the fixed values.
func (c Category) Valid() bool {
	for _, category := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ParseCategory resolves a category string case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, category := range Categories {
		if normalize(s) == normalize(string(category)) {
			return category, true
		}
	}
	return "", false
}

// Slug converts a display value to its single canonical derived key:
// lowercase with spaces and underscores replaced by hyphens. Every map key
// or wire value derived from an enum goes through this function, as do the
// snake_case sort field names clients send.
func Slug(s string) string {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
	return strings.ReplaceAll(s, "_", "-")
}

// normalize strips spaces and hyphens for lenient enum parsing.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}

const (
	// MaxTitleLen bounds the task title length.
	MaxTitleLen = 200
	// MaxDescriptionLen bounds the task description length.
	MaxDescriptionLen = 2000
)

// Task is the core domain entity representing one academic to-do item.
type Task struct {
	ID             string     `gorm:"primarykey;size:36" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Description    string     `gorm:"size:2000" json:"description"`
	Category       Category   `gorm:"size:50;not null" json:"category"`
	Priority       Priority   `gorm:"size:20;not null" json:"priority"`
	Status         Status     `gorm:"size:20;not null" json:"status"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Assignee       string     `gorm:"size:100" json:"assignee,omitempty"`
	Tags           []string   `gorm:"serializer:json" json:"tags,omitempty"`
	EstimatedHours float64    `gorm:"not null;default:0" json:"estimated_hours"`
	ActualHours    float64    `gorm:"not null;default:0" json:"actual_hours"`
	OwnerID        string     `gorm:"size:36;index" json:"owner_id,omitempty"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// Validate checks the entity invariants. It returns an ErrValidation-wrapped
// error naming the offending field.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return validationError("title is required")
	}
	if len(t.Title) > MaxTitleLen {
		return validationError("title exceeds maximum length")
	}
	if len(t.Description) > MaxDescriptionLen {
		return validationError("description exceeds maximum length")
	}
	if !t.Category.Valid() {
		return validationError("category is required")
	}
	if !t.Priority.Valid() {
		return validationError("invalid priority")
	}
	if !t.Status.Valid() {
		return validationError("invalid status")
	}
	if t.EstimatedHours < 0 {
		return validationError("estimated hours must be non-negative")
	}
	if t.ActualHours < 0 {
		return validationError("actual hours must be non-negative")
	}
	return nil
}

// Overdue reports whether the task is past due at the given instant.
// The comparison is date-only: a task due today is not overdue.
func (t *Task) Overdue(now time.Time) bool {
	if t.Status == StatusCompleted || t.DueDate == nil {
		return false
	}
	due := dateOf(*t.DueDate)
	return due.Before(dateOf(now))
}

// dateOf truncates an instant to its calendar date in the instant's location.
func dateOf(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}
