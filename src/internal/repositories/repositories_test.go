package repositories_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/database/models"
	"github.com/casapps/tasktracker/src/internal/repositories"
	testhelpers "github.com/casapps/tasktracker/src/internal/testing"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	users := repositories.NewUserRepository(db)

	t.Run("Create", func(t *testing.T) {
		user := &models.User{Name: "Ada", Email: "ada@example.com"}
		require.NoError(t, users.Create(ctx, user))
		assert.NotZero(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())

		exists, err := users.Exists(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		err := users.Create(ctx, &models.User{Name: "Other", Email: "ada@example.com"})
		require.Error(t, err)
		assert.True(t, repositories.IsUnique(err))

		count, err := users.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	data := testhelpers.NewTestDataManager(db)
	tasks := repositories.NewTaskRepository(db)
	owner := data.CreateUser(t, "Ada", "ada@example.com")

	t.Run("UnknownOwner", func(t *testing.T) {
		err := tasks.Create(ctx, &models.Task{Title: "orphan", Status: "pending", UserID: 999})
		require.Error(t, err)
		assert.True(t, repositories.IsForeignKey(err))

		count, err := tasks.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		task := &models.Task{Title: "write docs", Status: "pending", UserID: owner.ID}
		require.NoError(t, tasks.Create(ctx, task))

		loaded, err := tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "write docs", loaded.Title)
		assert.Nil(t, loaded.Description)
		assert.NoError(t, tasks.Lock(ctx, task.ID))
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := tasks.GetByID(ctx, 12345)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorIs(t, tasks.Lock(ctx, 12345), repositories.ErrNotFound)

		exists, err := tasks.Exists(ctx, 12345)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	data := testhelpers.NewTestDataManager(db)
	comments := repositories.NewCommentRepository(db)

	user := data.CreateUser(t, "Ada", "ada@example.com")
	task := data.CreateTask(t, user.ID, "task")

	require.NoError(t, comments.Create(ctx, &models.Comment{Content: "first", TaskID: task.ID, UserID: user.ID}))
	require.NoError(t, comments.Create(ctx, &models.Comment{Content: "second", TaskID: task.ID, UserID: user.ID}))

	err := comments.Create(ctx, &models.Comment{Content: "lost", TaskID: 404, UserID: user.ID})
	assert.True(t, repositories.IsForeignKey(err))

	count, err := comments.CountByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	deleted, err := comments.DeleteByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestTagRepository(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	data := testhelpers.NewTestDataManager(db)
	tags := repositories.NewTagRepository(db)

	user := data.CreateUser(t, "Ada", "ada@example.com")
	task := data.CreateTask(t, user.ID, "task")

	t.Run("ResolveIsIdempotent", func(t *testing.T) {
		first, err := tags.Resolve(ctx, "backend")
		require.NoError(t, err)
		require.NotZero(t, first.ID)

		second, err := tags.Resolve(ctx, "backend")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		other, err := tags.Resolve(ctx, "frontend")
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, other.ID)

		count, err := tags.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		err := tags.Create(ctx, &models.Tag{Name: "backend"})
		assert.True(t, repositories.IsUnique(err))
	})

	t.Run("LinkIsIdempotent", func(t *testing.T) {
		tag, err := tags.Resolve(ctx, "backend")
		require.NoError(t, err)

		require.NoError(t, tags.Link(ctx, task.ID, tag.ID))
		require.NoError(t, tags.Link(ctx, task.ID, tag.ID))

		links, err := tags.CountLinks(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), links)
	})

	t.Run("LinkUnknownTag", func(t *testing.T) {
		err := tags.Link(ctx, task.ID, 9999)
		assert.True(t, repositories.IsForeignKey(err))
	})

	t.Run("UnlinkTask", func(t *testing.T) {
		removed, err := tags.UnlinkTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		count, err := tags.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	forced := errors.New("forced")

	err := repositories.WithTx(ctx, db, func(tx *gorm.DB) error {
		if err := repositories.NewUserRepository(tx).Create(ctx, &models.User{Name: "Ada", Email: "ada@example.com"}); err != nil {
			return err
		}
		return forced
	})
	assert.ErrorIs(t, err, forced)

	count, err := repositories.NewUserRepository(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
