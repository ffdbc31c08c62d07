package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casapps/tasktracker/src/internal/services"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Create handles POST /api/comments
func (h *CommentHandler) Create(c echo.Context) error {
	var req services.CreateCommentInput
	if err := c.Bind(&req); err != nil {
		return err
	}

	comment, err := h.comments.CreateComment(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Comment added successfully",
		"comment": comment,
	})
}
