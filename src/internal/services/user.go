package services

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/aggregation"
	"github.com/casapps/tasktracker/src/internal/database/models"
	apperrors "github.com/casapps/tasktracker/src/internal/errors"
	"github.com/casapps/tasktracker/src/internal/repositories"
	"github.com/casapps/tasktracker/src/internal/telemetry"
)

// CreateUserInput is the validated payload for creating a user
type CreateUserInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// UserService handles user operations
type UserService struct {
	base
	users  *repositories.UserRepository
	engine *aggregation.Engine
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, logger *slog.Logger, tracer trace.Tracer) *UserService {
	return &UserService{
		base:   newBase(logger, tracer),
		users:  repositories.NewUserRepository(db),
		engine: aggregation.NewEngine(db),
	}
}

// CreateUser creates a user. A taken email is a Conflict and no row is written.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (user *models.User, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "users.create")
	defer func() { telemetry.End(span, err) }()

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user = &models.User{Name: input.Name, Email: input.Email}
	if err := s.users.Create(ctx, user); err != nil {
		if repositories.IsUnique(err) {
			s.warnWrite(ctx, "users.create", repositories.ConstraintUnique, "email", input.Email)
			return nil, apperrors.ConflictError("Email already exists", "user").
				WithDetail("field", "email").
				WithCause(err)
		}
		return nil, s.storeFailure(ctx, "users.create", err)
	}

	s.logger.InfoContext(ctx, "User created", "user_id", user.ID)
	return user, nil
}

// ListUsers returns every user, newest first
func (s *UserService) ListUsers(ctx context.Context) (users []models.User, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "users.list")
	defer func() { telemetry.End(span, err) }()

	users, err = s.engine.ListUsers(ctx)
	if err != nil {
		return nil, s.storeFailure(ctx, "users.list", err)
	}
	return users, nil
}

// ListUserTasks returns a user's tasks with comment counts and tags
func (s *UserService) ListUserTasks(ctx context.Context, userID uint) (tasks []aggregation.TaskWithCommentCount, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "users.tasks", telemetry.AttrUserID.Int64(int64(userID)))
	defer func() { telemetry.End(span, err) }()

	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}

	tasks, err = s.engine.UserTasks(ctx, userID)
	if err != nil {
		return nil, s.storeFailure(ctx, "users.tasks", err, "user_id", userID)
	}
	return tasks, nil
}
