package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/aggregation"
	"github.com/casapps/tasktracker/src/internal/database/models"
	apperrors "github.com/casapps/tasktracker/src/internal/errors"
	"github.com/casapps/tasktracker/src/internal/relations"
	"github.com/casapps/tasktracker/src/internal/repositories"
	"github.com/casapps/tasktracker/src/internal/telemetry"
)

// CreateTaskInput is the validated payload for creating a task
type CreateTaskInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	Status      string  `json:"status" validate:"max=50"`
	UserID      uint    `json:"user_id" validate:"required"`
}

// AddTagsInput names the tags to attach to a task
type AddTagsInput struct {
	TaskID uint     `json:"task_id" validate:"required"`
	Tags   []string `json:"tags" validate:"required,min=1,dive,required,max=100"`
}

// LinkTagIDsInput lists existing tags to attach to a task
type LinkTagIDsInput struct {
	TaskID uint   `json:"task_id" validate:"required"`
	TagIDs []uint `json:"tag_ids" validate:"required,min=1,dive,gt=0"`
}

// TaggedResult is returned after tags were attached by name
type TaggedResult struct {
	TaskID uint     `json:"task_id"`
	Tags   []string `json:"tags"`
}

// TaskService handles task operations
type TaskService struct {
	base
	tasks   *repositories.TaskRepository
	manager *relations.Manager
	engine  *aggregation.Engine
}

// NewTaskService creates a new task service
func NewTaskService(db *gorm.DB, logger *slog.Logger, tracer trace.Tracer) *TaskService {
	b := newBase(logger, tracer)
	return &TaskService{
		base:    b,
		tasks:   repositories.NewTaskRepository(db),
		manager: relations.NewManager(db, b.logger),
		engine:  aggregation.NewEngine(db),
	}
}

// CreateTask creates a task owned by an existing user. An unknown user is a
// ForeignKeyError on user_id and no row is written.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (task *models.Task, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "tasks.create", telemetry.AttrUserID.Int64(int64(input.UserID)))
	defer func() { telemetry.End(span, err) }()

	input.Title = strings.TrimSpace(input.Title)
	input.Status = strings.TrimSpace(input.Status)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = models.DefaultTaskStatus
	}

	task = &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		UserID:      input.UserID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		if repositories.IsForeignKey(err) {
			s.warnWrite(ctx, "tasks.create", repositories.ConstraintForeignKey, "user_id", input.UserID)
			return nil, apperrors.ForeignKeyError("user_id", input.UserID).WithCause(err)
		}
		return nil, s.storeFailure(ctx, "tasks.create", err)
	}

	s.logger.InfoContext(ctx, "Task created", "task_id", task.ID, "user_id", task.UserID)
	return task, nil
}

// GetTaskDetail returns a task with its owner, tags and comments
func (s *TaskService) GetTaskDetail(ctx context.Context, taskID uint) (detail *aggregation.TaskDetail, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "tasks.get", telemetry.AttrTaskID.Int64(int64(taskID)))
	defer func() { telemetry.End(span, err) }()

	if err := requireID("task_id", taskID); err != nil {
		return nil, err
	}

	detail, err = s.engine.TaskDetail(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFoundError("Task", taskID)
		}
		return nil, s.storeFailure(ctx, "tasks.get", err, "task_id", taskID)
	}
	return detail, nil
}

// DeleteTask removes a task along with its comments and tag links
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) (result *relations.DeleteResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "tasks.delete", telemetry.AttrTaskID.Int64(int64(taskID)))
	defer func() { telemetry.End(span, err) }()

	if err := requireID("task_id", taskID); err != nil {
		return nil, err
	}

	result, err = s.manager.DeleteTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFoundError("Task", taskID)
		}
		return nil, s.storeFailure(ctx, "tasks.delete", err, "task_id", taskID)
	}

	s.logger.InfoContext(ctx, "Task deleted",
		"task_id", taskID,
		"comments", result.Comments,
		"links", result.Links,
	)
	return result, nil
}

// AddTagsToTask attaches tags by name, creating the ones that do not exist yet.
// The returned Tags echo the trimmed request names, repeats included; each name links once.
func (s *TaskService) AddTagsToTask(ctx context.Context, input AddTagsInput) (result *TaggedResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "tasks.add_tags",
		telemetry.AttrTaskID.Int64(int64(input.TaskID)),
		telemetry.AttrTagSize.Int(len(input.Tags)),
	)
	defer func() { telemetry.End(span, err) }()

	names := make([]string, len(input.Tags))
	for i, name := range input.Tags {
		names[i] = strings.TrimSpace(name)
	}
	input.Tags = names
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.manager.LinkTags(ctx, input.TaskID, names); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFoundError("Task", input.TaskID)
		}
		return nil, s.storeFailure(ctx, "tasks.add_tags", err, "task_id", input.TaskID)
	}

	return &TaggedResult{TaskID: input.TaskID, Tags: names}, nil
}

// LinkTagIDs attaches existing tags by id. An unknown tag id is a ForeignKeyError on tag_ids.
func (s *TaskService) LinkTagIDs(ctx context.Context, input LinkTagIDsInput) (result *relations.LinkResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "tasks.link_tags",
		telemetry.AttrTaskID.Int64(int64(input.TaskID)),
		telemetry.AttrTagSize.Int(len(input.TagIDs)),
	)
	defer func() { telemetry.End(span, err) }()

	if err := validateInput(input); err != nil {
		return nil, err
	}

	result, err = s.manager.LinkTagIDs(ctx, input.TaskID, input.TagIDs)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperrors.NotFoundError("Task", input.TaskID)
		case repositories.IsForeignKey(err):
			s.warnWrite(ctx, "tasks.link_tags", repositories.ConstraintForeignKey, "task_id", input.TaskID)
			return nil, apperrors.ForeignKeyError("tag_ids", input.TagIDs).WithCause(err)
		}
		return nil, s.storeFailure(ctx, "tasks.link_tags", err, "task_id", input.TaskID)
	}
	return result, nil
}

// ListTasksWithLatestComment returns every task with its most recent comment
func (s *TaskService) ListTasksWithLatestComment(ctx context.Context) (tasks []aggregation.TaskSummary, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "tasks.latest_comments")
	defer func() { telemetry.End(span, err) }()

	tasks, err = s.engine.TasksWithLatestComment(ctx)
	if err != nil {
		return nil, s.storeFailure(ctx, "tasks.latest_comments", err)
	}
	return tasks, nil
}
