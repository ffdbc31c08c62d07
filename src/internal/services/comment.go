package services

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/database/models"
	apperrors "github.com/casapps/tasktracker/src/internal/errors"
	"github.com/casapps/tasktracker/src/internal/repositories"
	"github.com/casapps/tasktracker/src/internal/telemetry"
)

// CreateCommentInput is the validated payload for commenting on a task
type CreateCommentInput struct {
	Content string `json:"content" validate:"required"`
	TaskID  uint   `json:"task_id" validate:"required"`
	UserID  uint   `json:"user_id" validate:"required"`
}

// CommentService handles comment operations
type CommentService struct {
	base
	comments *repositories.CommentRepository
	tasks    *repositories.TaskRepository
}

// NewCommentService creates a new comment service
func NewCommentService(db *gorm.DB, logger *slog.Logger, tracer trace.Tracer) *CommentService {
	return &CommentService{
		base:     newBase(logger, tracer),
		comments: repositories.NewCommentRepository(db),
		tasks:    repositories.NewTaskRepository(db),
	}
}

// CreateComment adds a comment to a task. An unknown task or author is a ForeignKeyError
// naming the offending field, and no row is written.
func (s *CommentService) CreateComment(ctx context.Context, input CreateCommentInput) (comment *models.Comment, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "comments.create",
		telemetry.AttrTaskID.Int64(int64(input.TaskID)),
		telemetry.AttrUserID.Int64(int64(input.UserID)),
	)
	defer func() { telemetry.End(span, err) }()

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewValidationError("content is required", "content")
	}

	comment = &models.Comment{
		Content: input.Content,
		TaskID:  input.TaskID,
		UserID:  input.UserID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if repositories.IsForeignKey(err) {
			s.warnWrite(ctx, "comments.create", repositories.ConstraintForeignKey,
				"task_id", input.TaskID, "user_id", input.UserID)
			return nil, s.missingReference(ctx, input).WithCause(err)
		}
		return nil, s.storeFailure(ctx, "comments.create", err)
	}

	return comment, nil
}

// missingReference works out which reference the store rejected
func (s *CommentService) missingReference(ctx context.Context, input CreateCommentInput) *apperrors.CustomError {
	if ok, err := s.tasks.Exists(ctx, input.TaskID); err == nil && !ok {
		return apperrors.ForeignKeyError("task_id", input.TaskID)
	}
	return apperrors.ForeignKeyError("user_id", input.UserID)
}
