// Package relations runs the multi-table writes that must succeed or fail as a whole:
// linking tags to a task and deleting a task together with everything that references it.
package relations

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/repositories"
)

// Manager orchestrates transactional writes across tasks, tags, task_tags and comments
type Manager struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewManager creates a new relationship manager
func NewManager(db *gorm.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		db:     db,
		logger: logger,
	}
}

// LinkResult describes the tags a task was linked to
type LinkResult struct {
	TaskID uint
	TagIDs []uint
}

// LinkTags resolves every name to a tag row, creating missing ones, and links each to the task.
// Repeated names and already linked pairs are no-ops. Returns repositories.ErrNotFound
// when the task does not exist; any failure rolls back every tag and link made by the call.
func (m *Manager) LinkTags(ctx context.Context, taskID uint, names []string) (*LinkResult, error) {
	result := &LinkResult{TaskID: taskID}

	err := repositories.WithTx(ctx, m.db, func(tx *gorm.DB) error {
		tasks := repositories.NewTaskRepository(tx)
		tags := repositories.NewTagRepository(tx)

		if err := tasks.Lock(ctx, taskID); err != nil {
			return err
		}

		tagIDs := make([]uint, 0, len(names))
		for _, name := range names {
			tag, err := tags.Resolve(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to resolve tag %q: %w", name, err)
			}
			tagIDs = append(tagIDs, tag.ID)
		}

		for _, tagID := range tagIDs {
			if err := tags.Link(ctx, taskID, tagID); err != nil {
				return fmt.Errorf("failed to link tag %d: %w", tagID, err)
			}
		}

		result.TagIDs = tagIDs
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Linked tags", "task_id", taskID, "tags", len(result.TagIDs))
	return result, nil
}

// LinkTagIDs links existing tags to the task by id. An unknown tag id fails with a
// foreign key StoreError and nothing from the call is kept.
func (m *Manager) LinkTagIDs(ctx context.Context, taskID uint, tagIDs []uint) (*LinkResult, error) {
	err := repositories.WithTx(ctx, m.db, func(tx *gorm.DB) error {
		if err := repositories.NewTaskRepository(tx).Lock(ctx, taskID); err != nil {
			return err
		}

		tags := repositories.NewTagRepository(tx)
		for _, tagID := range tagIDs {
			if err := tags.Link(ctx, taskID, tagID); err != nil {
				return fmt.Errorf("failed to link tag %d: %w", tagID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &LinkResult{TaskID: taskID, TagIDs: tagIDs}, nil
}

// DeleteResult counts the rows removed by a cascading delete
type DeleteResult struct {
	TaskID   uint
	Links    int64
	Comments int64
}

// DeleteTask removes a task's tag links, then its comments, then the task itself.
// Tags stay. Returns repositories.ErrNotFound when the task does not exist; a failure
// at any step leaves the task and its relations as they were.
func (m *Manager) DeleteTask(ctx context.Context, taskID uint) (*DeleteResult, error) {
	result := &DeleteResult{TaskID: taskID}

	err := repositories.WithTx(ctx, m.db, func(tx *gorm.DB) error {
		tasks := repositories.NewTaskRepository(tx)

		if err := tasks.Lock(ctx, taskID); err != nil {
			return err
		}

		links, err := repositories.NewTagRepository(tx).UnlinkTask(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to remove tag links: %w", err)
		}
		result.Links = links

		comments, err := repositories.NewCommentRepository(tx).DeleteByTask(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to remove comments: %w", err)
		}
		result.Comments = comments

		deleted, err := tasks.Delete(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to remove task: %w", err)
		}
		if deleted == 0 {
			return repositories.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Deleted task", "task_id", taskID, "links", result.Links, "comments", result.Comments)
	return result, nil
}
