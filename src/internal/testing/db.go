package testing

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/casapps/tasktracker/src/internal/database"
	"github.com/casapps/tasktracker/src/internal/database/models"
)

// NewTestDB opens a private in-memory SQLite database with foreign keys enforced
// and the schema migrated. The pool holds a single connection, so every statement
// inside a transaction must go through that transaction.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// TestDataManager seeds rows directly, bypassing the services under test
type TestDataManager struct {
	db *gorm.DB
}

// NewTestDataManager creates a seeding helper for db
func NewTestDataManager(db *gorm.DB) *TestDataManager {
	return &TestDataManager{db: db}
}

// CreateUser inserts a user
func (tm *TestDataManager) CreateUser(t testing.TB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, tm.db.Create(user).Error)
	return user
}

// CreateTask inserts a pending task owned by userID
func (tm *TestDataManager) CreateTask(t testing.TB, userID uint, title string) *models.Task {
	t.Helper()
	task := &models.Task{Title: title, Status: models.DefaultTaskStatus, UserID: userID}
	require.NoError(t, tm.db.Omit("User").Create(task).Error)
	return task
}

// CreateTaskAt inserts a task with an explicit creation time
func (tm *TestDataManager) CreateTaskAt(t testing.TB, userID uint, title string, at time.Time) *models.Task {
	t.Helper()
	task := &models.Task{Title: title, Status: models.DefaultTaskStatus, UserID: userID, CreatedAt: at}
	require.NoError(t, tm.db.Omit("User").Create(task).Error)
	return task
}

// CreateComment inserts a comment with an explicit creation time
func (tm *TestDataManager) CreateComment(t testing.TB, taskID, userID uint, content string, at time.Time) *models.Comment {
	t.Helper()
	comment := &models.Comment{Content: content, TaskID: taskID, UserID: userID, CreatedAt: at}
	require.NoError(t, tm.db.Omit("Task", "User").Create(comment).Error)
	return comment
}

// CreateTag inserts a tag
func (tm *TestDataManager) CreateTag(t testing.TB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name}
	require.NoError(t, tm.db.Create(tag).Error)
	return tag
}

// Link attaches a tag to a task
func (tm *TestDataManager) Link(t testing.TB, taskID, tagID uint) {
	t.Helper()
	require.NoError(t, tm.db.Omit("Task", "Tag").Create(&models.TaskTag{TaskID: taskID, TagID: tagID}).Error)
}

// Count returns the number of rows of model
func (tm *TestDataManager) Count(t testing.TB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, tm.db.Model(model).Count(&count).Error)
	return count
}
