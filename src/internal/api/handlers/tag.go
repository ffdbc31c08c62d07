package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casapps/tasktracker/src/internal/services"
)

// TagHandler handles tag endpoints
type TagHandler struct {
	tags *services.TagService
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tags *services.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

// List handles GET /api/tags
func (h *TagHandler) List(c echo.Context) error {
	tags, err := h.tags.ListTags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"tags": tags})
}

// Tasks handles GET /api/tags/:id/tasks
func (h *TagHandler) Tasks(c echo.Context) error {
	tagID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	tasks, err := h.tags.ListTasksByTag(c.Request().Context(), tagID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tag_id": tagID,
		"tasks":  tasks,
	})
}
