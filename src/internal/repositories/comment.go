package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/casapps/tasktracker/src/internal/database/models"
)

// CommentRepository provides data access methods for comments
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment. An unknown task or author is a ConstraintForeignKey StoreError.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return wrapError("insert", "comments", r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

// DeleteByTask removes every comment on a task
func (r *CommentRepository) DeleteByTask(ctx context.Context, taskID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&models.Comment{})
	return result.RowsAffected, wrapError("delete", "comments", result.Error)
}

// CountByTask returns the number of comments on a task
func (r *CommentRepository) CountByTask(ctx context.Context, taskID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("task_id = ?", taskID).Count(&count).Error
	return count, wrapError("count", "comments", err)
}

// Count returns the total number of comments
func (r *CommentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error
	return count, wrapError("count", "comments", err)
}
