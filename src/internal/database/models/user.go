package models

import (
	"time"
)

// User represents an account that owns tasks and writes comments
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
