package tasks

import (
	"errors"
	"fmt"

	domain "github.com/example/taskboard/domain/task"
	"gorm.io/gorm"
)

// Repository is the task persistence boundary. The GORM/SQLite adapter is
// the only implementation today; a server/database swap stays behind this
// interface without touching the query or statistics engines.
type Repository interface {
	Create(t *domain.Task) error
	FindByID(id string) (*domain.Task, error)
	Update(t *domain.Task) error
	Delete(id string) error
	ListByOwner(ownerID string) ([]*domain.Task, error)
	CountAll() (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a GORM-backed task repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create saves a new task.
func (r *gormRepository) Create(t *domain.Task) error {
	if err := r.db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *gormRepository) FindByID(id string) (*domain.Task, error) {
	var t domain.Task
	if err := r.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// Update persists a mutated task. Identifier, creation timestamp, and owner
// are never written.
func (r *gormRepository) Update(t *domain.Task) error {
	result := r.db.Model(&domain.Task{}).
		Where("id = ?", t.ID).
		Select("*").
		Omit("id", "created_at", "owner_id").
		Updates(t)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a task. Deleting an absent task is an error, not a no-op.
func (r *gormRepository) Delete(id string) error {
	result := r.db.Delete(&domain.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByOwner returns the tasks visible to a user: their own plus unowned
// tasks, which remain globally visible (legacy shared-task behavior).
func (r *gormRepository) ListByOwner(ownerID string) ([]*domain.Task, error) {
	var result []*domain.Task
	query := r.db.Order("created_at")
	if ownerID != "" {
		query = query.Where("owner_id = ? OR owner_id = ''", ownerID)
	}
	if err := query.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return result, nil
}

// CountAll returns the total number of stored tasks.
func (r *gormRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.Model(&domain.Task{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}
