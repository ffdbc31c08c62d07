package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/database/models"
)

// UserRepository provides data access methods for users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create inserts a user and fills in its id and creation time.
// A taken email surfaces as a ConstraintUnique StoreError.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return wrapError("insert", "users", r.db.WithContext(ctx).Create(user).Error)
}

// Count returns the total number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, wrapError("count", "users", err)
}

// Exists reports whether a user with the given id exists
func (r *UserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, wrapError("count", "users", err)
}
