package services_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/database/models"
	apperrors "github.com/casapps/tasktracker/src/internal/errors"
	"github.com/casapps/tasktracker/src/internal/services"
	testhelpers "github.com/casapps/tasktracker/src/internal/testing"
)

type fixture struct {
	db       *gorm.DB
	data     *testhelpers.TestDataManager
	spans    *tracetest.SpanRecorder
	users    *services.UserService
	tasks    *services.TaskService
	comments *services.CommentService
	tags     *services.TagService
}

func newFixture(t *testing.T) *fixture {
	db := testhelpers.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})
	tracer := provider.Tracer("test")

	return &fixture{
		db:       db,
		data:     testhelpers.NewTestDataManager(db),
		spans:    recorder,
		users:    services.NewUserService(db, logger, tracer),
		tasks:    services.NewTaskService(db, logger, tracer),
		comments: services.NewCommentService(db, logger, tracer),
		tags:     services.NewTagService(db, logger, tracer),
	}
}

func fieldOf(t *testing.T, err error) interface{} {
	t.Helper()
	ce, ok := err.(*apperrors.CustomError)
	require.True(t, ok, "expected *CustomError, got %T", err)
	return ce.Details["field"]
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		user, err := f.users.CreateUser(ctx, services.CreateUserInput{Name: "  Ada ", Email: "ada@example.com"})
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "Ada", user.Name)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("Validation", func(t *testing.T) {
		f := newFixture(t)
		tests := []struct {
			name  string
			input services.CreateUserInput
			field string
		}{
			{"MissingName", services.CreateUserInput{Email: "a@example.com"}, "name"},
			{"BlankName", services.CreateUserInput{Name: "   ", Email: "a@example.com"}, "name"},
			{"MissingEmail", services.CreateUserInput{Name: "Ada"}, "email"},
			{"BadEmail", services.CreateUserInput{Name: "Ada", Email: "not-an-email"}, "email"},
			{"LongName", services.CreateUserInput{Name: strings.Repeat("x", 256), Email: "a@example.com"}, "name"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.users.CreateUser(ctx, tt.input)
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
				assert.Equal(t, tt.field, fieldOf(t, err))
			})
		}
		assert.Zero(t, f.data.Count(t, &models.User{}))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.CreateUser(ctx, services.CreateUserInput{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		_, err = f.users.CreateUser(ctx, services.CreateUserInput{Name: "Other", Email: "ada@example.com"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConflict))
		assert.Equal(t, "email", fieldOf(t, err))
		assert.Equal(t, int64(1), f.data.Count(t, &models.User{}))

		spans := f.spans.Ended()
		require.NotEmpty(t, spans)
		last := spans[len(spans)-1]
		assert.Equal(t, "users.create", last.Name())
		assert.Equal(t, codes.Error, last.Status().Code)
	})
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	users, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	f.data.CreateUser(t, "Ada", "ada@example.com")
	users, err = f.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = f.users.ListUserTasks(ctx, 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsStatus", func(t *testing.T) {
		f := newFixture(t)
		user := f.data.CreateUser(t, "Ada", "ada@example.com")

		task, err := f.tasks.CreateTask(ctx, services.CreateTaskInput{Title: "Write docs", UserID: user.ID})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultTaskStatus, task.Status)
		assert.Nil(t, task.Description)
	})

	t.Run("KeepsStatusAndDescription", func(t *testing.T) {
		f := newFixture(t)
		user := f.data.CreateUser(t, "Ada", "ada@example.com")
		desc := "details"

		task, err := f.tasks.CreateTask(ctx, services.CreateTaskInput{
			Title: "Write docs", Description: &desc, Status: "in_progress", UserID: user.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "in_progress", task.Status)
		require.NotNil(t, task.Description)
		assert.Equal(t, "details", *task.Description)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tasks.CreateTask(ctx, services.CreateTaskInput{Title: "Orphan", UserID: 999})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeForeignKey))
		assert.Equal(t, "user_id", fieldOf(t, err))
		assert.Zero(t, f.data.Count(t, &models.Task{}))
	})

	t.Run("Validation", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tasks.CreateTask(ctx, services.CreateTaskInput{Title: " ", UserID: 1})
		assert.Equal(t, "title", fieldOf(t, err))

		_, err = f.tasks.CreateTask(ctx, services.CreateTaskInput{Title: "x"})
		assert.Equal(t, "user_id", fieldOf(t, err))
	})
}

func TestTaskReadsAndDeletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.data.CreateUser(t, "Ada", "ada@example.com")
	task := f.data.CreateTask(t, user.ID, "task")

	detail, err := f.tasks.GetTaskDetail(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", detail.UserName)

	_, err = f.tasks.GetTaskDetail(ctx, 4242)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))

	_, err = f.tasks.GetTaskDetail(ctx, 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	result, err := f.tasks.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, result.TaskID)

	_, err = f.tasks.DeleteTask(ctx, task.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestAddTagsToTask(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesAndReuses", func(t *testing.T) {
		f := newFixture(t)
		user := f.data.CreateUser(t, "Ada", "ada@example.com")
		task := f.data.CreateTask(t, user.ID, "task")

		result, err := f.tasks.AddTagsToTask(ctx, services.AddTagsInput{TaskID: task.ID, Tags: []string{" backend ", "urgent"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"backend", "urgent"}, result.Tags)

		_, err = f.tasks.AddTagsToTask(ctx, services.AddTagsInput{TaskID: task.ID, Tags: []string{"backend"}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), f.data.Count(t, &models.Tag{}))
		assert.Equal(t, int64(2), f.data.Count(t, &models.TaskTag{}))
	})

	t.Run("EchoesRepeatedNames", func(t *testing.T) {
		f := newFixture(t)
		user := f.data.CreateUser(t, "Ada", "ada@example.com")
		task := f.data.CreateTask(t, user.ID, "task")

		result, err := f.tasks.AddTagsToTask(ctx, services.AddTagsInput{TaskID: task.ID, Tags: []string{"a", "a", "b"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "a", "b"}, result.Tags)
		assert.Equal(t, int64(2), f.data.Count(t, &models.Tag{}))
		assert.Equal(t, int64(2), f.data.Count(t, &models.TaskTag{}))
	})

	t.Run("RejectsEmptyAndBlank", func(t *testing.T) {
		f := newFixture(t)
		user := f.data.CreateUser(t, "Ada", "ada@example.com")
		task := f.data.CreateTask(t, user.ID, "task")

		_, err := f.tasks.AddTagsToTask(ctx, services.AddTagsInput{TaskID: task.ID})
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

		_, err = f.tasks.AddTagsToTask(ctx, services.AddTagsInput{TaskID: task.ID, Tags: []string{}})
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

		_, err = f.tasks.AddTagsToTask(ctx, services.AddTagsInput{TaskID: task.ID, Tags: []string{"ok", "  "}})
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
		assert.Zero(t, f.data.Count(t, &models.Tag{}))
	})

	t.Run("UnknownTask", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tasks.AddTagsToTask(ctx, services.AddTagsInput{TaskID: 77, Tags: []string{"backend"}})
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
		assert.Zero(t, f.data.Count(t, &models.Tag{}))
	})
}

func TestLinkTagIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.data.CreateUser(t, "Ada", "ada@example.com")
	task := f.data.CreateTask(t, user.ID, "task")
	tag := f.data.CreateTag(t, "backend")

	_, err := f.tasks.LinkTagIDs(ctx, services.LinkTagIDsInput{TaskID: task.ID, TagIDs: []uint{tag.ID}})
	require.NoError(t, err)

	_, err = f.tasks.LinkTagIDs(ctx, services.LinkTagIDsInput{TaskID: task.ID, TagIDs: []uint{555}})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeForeignKey))
	assert.Equal(t, "tag_ids", fieldOf(t, err))

	_, err = f.tasks.LinkTagIDs(ctx, services.LinkTagIDsInput{TaskID: task.ID, TagIDs: []uint{0}})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	assert.Equal(t, int64(1), f.data.Count(t, &models.TaskTag{}))
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.data.CreateUser(t, "Ada", "ada@example.com")
	task := f.data.CreateTask(t, user.ID, "task")

	comment, err := f.comments.CreateComment(ctx, services.CreateCommentInput{Content: "Looks good", TaskID: task.ID, UserID: user.ID})
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)

	tests := []struct {
		name  string
		input services.CreateCommentInput
		kind  apperrors.ErrorType
		field string
	}{
		{"BlankContent", services.CreateCommentInput{Content: "  ", TaskID: task.ID, UserID: user.ID}, apperrors.ErrorTypeValidation, "content"},
		{"UnknownTask", services.CreateCommentInput{Content: "hi", TaskID: 999, UserID: user.ID}, apperrors.ErrorTypeForeignKey, "task_id"},
		{"UnknownUser", services.CreateCommentInput{Content: "hi", TaskID: task.ID, UserID: 999}, apperrors.ErrorTypeForeignKey, "user_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.comments.CreateComment(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.kind))
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
	assert.Equal(t, int64(1), f.data.Count(t, &models.Comment{}))
}

func TestTagListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.data.CreateUser(t, "Ada", "ada@example.com")
	task := f.data.CreateTask(t, user.ID, "task")
	tag := f.data.CreateTag(t, "backend")
	f.data.Link(t, task.ID, tag.ID)

	tags, err := f.tags.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)

	tasks, err := f.tags.ListTasksByTag(ctx, tag.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)

	tasks, err = f.tags.ListTasksByTag(ctx, 31337)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = f.tags.ListTasksByTag(ctx, 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
}
