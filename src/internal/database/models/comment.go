package models

import (
	"time"
)

// Comment represents a free-text note a user left on a task
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_comments_task_created,priority:2" json:"created_at"`
	TaskID    uint      `gorm:"not null;index:idx_comments_task_created,priority:1" json:"task_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`

	// Relations
	Task *Task `gorm:"foreignKey:TaskID" json:"-"`
	User *User `gorm:"foreignKey:UserID" json:"-"`
}
