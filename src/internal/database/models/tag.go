package models

import (
	"time"
)

// Tag represents a label that can be attached to many tasks
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskTag represents the many-to-many relationship between tasks and tags
type TaskTag struct {
	TaskID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false;index"`

	// Relations
	Task *Task `gorm:"foreignKey:TaskID"`
	Tag  *Tag  `gorm:"foreignKey:TagID"`
}

// TableName pins the join table name
func (TaskTag) TableName() string {
	return "task_tags"
}
