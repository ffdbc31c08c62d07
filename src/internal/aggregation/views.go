package aggregation

import "time"

// CommentView is one comment inside a task detail, with its author's name
type CommentView struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
}

// TaskDetail is a task joined to its owner, its tag names and its comments (newest first)
type TaskDetail struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UserID      uint          `json:"user_id"`
	UserName    string        `json:"user_name"`
	UserEmail   string        `json:"user_email"`
	Tags        []string      `json:"tags"`
	Comments    []CommentView `json:"comments"`
}

// TaskWithCommentCount is a task of one user annotated with derived counts
type TaskWithCommentCount struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	CommentCount int64     `json:"comment_count"`
	Tags         []string  `json:"tags"`
}

// TaskSummary is a task with at most its most recent comment. Comment fields are nil
// when the task has no comments.
type TaskSummary struct {
	ID                uint       `json:"id"`
	Title             string     `json:"title"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	UserName          string     `json:"user_name"`
	LatestCommentID   *uint      `json:"latest_comment_id"`
	LatestComment     *string    `json:"latest_comment"`
	LatestCommentDate *time.Time `json:"latest_comment_date"`
	CommenterName     *string    `json:"commenter_name"`
}

// TaggedTask is a task linked to a given tag
type TaggedTask struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UserName     string    `json:"user_name"`
	TagName      string    `json:"tag_name"`
	CommentCount int64     `json:"comment_count"`
}
