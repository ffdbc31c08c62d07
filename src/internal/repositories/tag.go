package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/casapps/tasktracker/src/internal/database/models"
)

// TagRepository provides data access methods for tags and task-tag links
type TagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create inserts a tag. A taken name surfaces as a ConstraintUnique StoreError.
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return wrapError("insert", "tags", r.db.WithContext(ctx).Create(tag).Error)
}

// Resolve inserts a tag by name, or resolves to the existing row when the name is taken.
// The conflict is settled by the store in the same statement, so concurrent callers
// asking for the same new name all land on one row.
func (r *TagRepository) Resolve(ctx context.Context, name string) (*models.Tag, error) {
	db := r.db.WithContext(ctx)

	tag := &models.Tag{Name: name}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(tag).Error
	if err != nil {
		if Classify(err) != ConstraintUnique {
			return nil, wrapError("upsert", "tags", err)
		}
		// Lost an insert race on a store without a native conflict clause
		tag = &models.Tag{}
	}

	// Only postgres reliably reports the id of a row kept by the conflict clause
	if tag.ID == 0 || db.Dialector.Name() != "postgres" {
		resolved := &models.Tag{}
		if err := db.Where("name = ?", name).First(resolved).Error; err != nil {
			return nil, wrapError("select", "tags", err)
		}
		tag = resolved
	}
	return tag, nil
}

// Link attaches a tag to a task. Linking an already linked pair is a no-op.
func (r *TagRepository) Link(ctx context.Context, taskID, tagID uint) error {
	link := &models.TaskTag{TaskID: taskID, TagID: tagID}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link).Error
	return wrapError("insert", "task_tags", err)
}

// UnlinkTask removes every tag link of a task, leaving the tags themselves in place
func (r *TagRepository) UnlinkTask(ctx context.Context, taskID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&models.TaskTag{})
	return result.RowsAffected, wrapError("delete", "task_tags", result.Error)
}

// CountLinks returns the total number of task-tag links
func (r *TagRepository) CountLinks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskTag{}).Count(&count).Error
	return count, wrapError("count", "task_tags", err)
}

// Count returns the total number of tags
func (r *TagRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Count(&count).Error
	return count, wrapError("count", "tags", err)
}
