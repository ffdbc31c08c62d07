package aggregation

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/database/models"
)

// tagNames maps each task id to its distinct tag names, sorted
func tagNames(tx *gorm.DB, ids []uint) (map[uint][]string, error) {
	out := make(map[uint][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		TaskID uint
		Name   string
	}
	err := tx.Table("task_tags").
		Distinct("task_tags.task_id", "tags.name").
		Joins("JOIN tags ON tags.id = task_tags.tag_id").
		Where("task_tags.task_id IN ?", ids).
		Order("tags.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to collect tags: %w", err)
	}

	for _, r := range rows {
		out[r.TaskID] = append(out[r.TaskID], r.Name)
	}
	return out, nil
}

// commentCounts maps each task id to its number of comments; tasks without comments are absent
func commentCounts(tx *gorm.DB, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		TaskID       uint
		CommentCount int64
	}
	err := tx.Model(&models.Comment{}).
		Select("task_id, COUNT(*) AS comment_count").
		Where("task_id IN ?", ids).
		Group("task_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	for _, r := range rows {
		out[r.TaskID] = r.CommentCount
	}
	return out, nil
}

func taskIDs(tasks []models.Task) []uint {
	ids := make([]uint, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
