package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/aggregation"
	"github.com/casapps/tasktracker/src/internal/database/models"
	"github.com/casapps/tasktracker/src/internal/telemetry"
)

// TagService handles tag listings
type TagService struct {
	base
	engine *aggregation.Engine
}

// NewTagService creates a new tag service
func NewTagService(db *gorm.DB, logger *slog.Logger, tracer trace.Tracer) *TagService {
	return &TagService{
		base:   newBase(logger, tracer),
		engine: aggregation.NewEngine(db),
	}
}

// ListTags returns every tag ordered by name
func (s *TagService) ListTags(ctx context.Context) (tags []models.Tag, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "tags.list")
	defer func() { telemetry.End(span, err) }()

	tags, err = s.engine.ListTags(ctx)
	if err != nil {
		return nil, s.storeFailure(ctx, "tags.list", err)
	}
	return tags, nil
}

// ListTasksByTag returns the tasks linked to a tag; an unknown tag has none
func (s *TagService) ListTasksByTag(ctx context.Context, tagID uint) (tasks []aggregation.TaggedTask, err error) {
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "tags.tasks", telemetry.AttrTagID.Int64(int64(tagID)))
	defer func() { telemetry.End(span, err) }()

	if err := requireID("tag_id", tagID); err != nil {
		return nil, err
	}

	tasks, err = s.engine.TasksByTag(ctx, tagID)
	if err != nil {
		return nil, s.storeFailure(ctx, "tags.tasks", err, "tag_id", tagID)
	}
	return tasks, nil
}
