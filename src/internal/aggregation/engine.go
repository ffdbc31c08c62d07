// Package aggregation folds normalized rows back into the nested shapes reads return.
//
// Counts and tag collections are computed by separate grouped queries keyed on task id,
// never from one wide join, so a task with several tags never reports an inflated
// comment count and a task with several comments never repeats a tag.
package aggregation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/database/models"
	"github.com/casapps/tasktracker/src/internal/repositories"
)

// Engine answers read-only queries that join across entities
type Engine struct {
	db *gorm.DB
}

// NewEngine creates a new aggregation engine
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// TaskDetail returns one task with its owner, tags and comments.
// Returns repositories.ErrNotFound for an unknown id.
func (e *Engine) TaskDetail(ctx context.Context, taskID uint) (*TaskDetail, error) {
	var detail *TaskDetail

	err := repositories.WithTx(ctx, e.db, func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Preload("User").First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repositories.ErrNotFound
			}
			return fmt.Errorf("failed to load task: %w", err)
		}

		tags, err := tagNames(tx, []uint{taskID})
		if err != nil {
			return err
		}

		var comments []models.Comment
		err = tx.Preload("User").
			Where("task_id = ?", taskID).
			Order("created_at DESC").
			Order("id DESC").
			Find(&comments).Error
		if err != nil {
			return fmt.Errorf("failed to load comments: %w", err)
		}

		detail = &TaskDetail{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
			Status:      task.Status,
			CreatedAt:   task.CreatedAt,
			UserID:      task.UserID,
			Tags:        nonNil(tags[taskID]),
			Comments:    make([]CommentView, 0, len(comments)),
		}
		if task.User != nil {
			detail.UserName = task.User.Name
			detail.UserEmail = task.User.Email
		}
		for _, c := range comments {
			view := CommentView{
				ID:        c.ID,
				Content:   c.Content,
				CreatedAt: c.CreatedAt,
				UserID:    c.UserID,
			}
			if c.User != nil {
				view.UserName = c.User.Name
			}
			detail.Comments = append(detail.Comments, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// UserTasks returns every task owned by a user, newest first, with comment counts and tags.
// An unknown user simply has no tasks.
func (e *Engine) UserTasks(ctx context.Context, userID uint) ([]TaskWithCommentCount, error) {
	out := []TaskWithCommentCount{}

	err := repositories.WithTx(ctx, e.db, func(tx *gorm.DB) error {
		var tasks []models.Task
		err := tx.Where("user_id = ?", userID).
			Order("created_at DESC").
			Order("id DESC").
			Find(&tasks).Error
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}

		ids := taskIDs(tasks)
		counts, err := commentCounts(tx, ids)
		if err != nil {
			return err
		}
		tags, err := tagNames(tx, ids)
		if err != nil {
			return err
		}

		for _, t := range tasks {
			out = append(out, TaskWithCommentCount{
				ID:           t.ID,
				Title:        t.Title,
				Description:  t.Description,
				Status:       t.Status,
				CreatedAt:    t.CreatedAt,
				CommentCount: counts[t.ID],
				Tags:         nonNil(tags[t.ID]),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TasksWithLatestComment returns every task, newest first, each with its most recent
// comment. Comments sharing a timestamp are ordered by id, the higher id winning.
func (e *Engine) TasksWithLatestComment(ctx context.Context) ([]TaskSummary, error) {
	out := []TaskSummary{}

	err := repositories.WithTx(ctx, e.db, func(tx *gorm.DB) error {
		var tasks []models.Task
		err := tx.Preload("User").
			Order("created_at DESC").
			Order("id DESC").
			Find(&tasks).Error
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}

		var latestIDs []uint
		err = tx.Raw(`SELECT id FROM (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY created_at DESC, id DESC) AS rn
			FROM comments
		) ranked WHERE rn = 1`).Scan(&latestIDs).Error
		if err != nil {
			return fmt.Errorf("failed to rank comments: %w", err)
		}

		latest := make(map[uint]models.Comment, len(latestIDs))
		if len(latestIDs) > 0 {
			var comments []models.Comment
			if err := tx.Preload("User").Where("id IN ?", latestIDs).Find(&comments).Error; err != nil {
				return fmt.Errorf("failed to load latest comments: %w", err)
			}
			for _, c := range comments {
				latest[c.TaskID] = c
			}
		}

		for _, t := range tasks {
			summary := TaskSummary{
				ID:        t.ID,
				Title:     t.Title,
				Status:    t.Status,
				CreatedAt: t.CreatedAt,
			}
			if t.User != nil {
				summary.UserName = t.User.Name
			}
			if c, ok := latest[t.ID]; ok {
				id, content, date := c.ID, c.Content, c.CreatedAt
				summary.LatestCommentID = &id
				summary.LatestComment = &content
				summary.LatestCommentDate = &date
				if c.User != nil {
					name := c.User.Name
					summary.CommenterName = &name
				}
			}
			out = append(out, summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TasksByTag returns the tasks linked to a tag, newest first. An unknown tag yields none.
func (e *Engine) TasksByTag(ctx context.Context, tagID uint) ([]TaggedTask, error) {
	out := []TaggedTask{}

	err := repositories.WithTx(ctx, e.db, func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.First(&tag, tagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load tag: %w", err)
		}

		var tasks []models.Task
		err := tx.Preload("User").
			Joins("JOIN task_tags ON task_tags.task_id = tasks.id").
			Where("task_tags.tag_id = ?", tagID).
			Order("tasks.created_at DESC").
			Order("tasks.id DESC").
			Find(&tasks).Error
		if err != nil {
			return fmt.Errorf("failed to load tagged tasks: %w", err)
		}

		counts, err := commentCounts(tx, taskIDs(tasks))
		if err != nil {
			return err
		}

		for _, t := range tasks {
			item := TaggedTask{
				ID:           t.ID,
				Title:        t.Title,
				Description:  t.Description,
				Status:       t.Status,
				CreatedAt:    t.CreatedAt,
				TagName:      tag.Name,
				CommentCount: counts[t.ID],
			}
			if t.User != nil {
				item.UserName = t.User.Name
			}
			out = append(out, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListTags returns every tag ordered by name
func (e *Engine) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := e.db.WithContext(ctx).Order("name").Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// ListUsers returns every user, newest first
func (e *Engine) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := e.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
