package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/casapps/tasktracker/src/internal/database/models"
)

// TaskRepository provides data access methods for tasks
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task. An unknown owner surfaces as a ConstraintForeignKey StoreError.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return wrapError("insert", "tasks", r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error)
}

// GetByID loads one task or returns ErrNotFound
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapError("select", "tasks", err)
	}
	return &task, nil
}

// Lock checks that a task exists and, where the store supports it, holds its row
// for the rest of the surrounding transaction. Returns ErrNotFound when absent.
func (r *TaskRepository) Lock(ctx context.Context, id uint) error {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return wrapError("select", "tasks", err)
	}
	if len(ids) == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the task row only; children must already be gone
func (r *TaskRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	return result.RowsAffected, wrapError("delete", "tasks", result.Error)
}

// Count returns the total number of tasks
func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Count(&count).Error
	return count, wrapError("count", "tasks", err)
}

// Exists reports whether a task with the given id exists
func (r *TaskRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Count(&count).Error
	return count > 0, wrapError("count", "tasks", err)
}
