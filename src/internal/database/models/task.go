package models

import (
	"time"
)

// Task represents a unit of work owned by a user
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:50;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}
