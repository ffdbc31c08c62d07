package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casapps/tasktracker/src/internal/services"
)

// TaskHandler handles task endpoints
type TaskHandler struct {
	tasks    *services.TaskService
	comments *services.CommentService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks *services.TaskService, comments *services.CommentService) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		comments: comments,
	}
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(c echo.Context) error {
	var req services.CreateTaskInput
	if err := c.Bind(&req); err != nil {
		return err
	}

	task, err := h.tasks.CreateTask(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Task created successfully",
		"task":    task,
	})
}

// LatestComments handles GET /api/tasks/latest-comments
func (h *TaskHandler) LatestComments(c echo.Context) error {
	tasks, err := h.tasks.ListTasksWithLatestComment(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

// Get handles GET /api/tasks/:id
func (h *TaskHandler) Get(c echo.Context) error {
	taskID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	task, err := h.tasks.GetTaskDetail(c.Request().Context(), taskID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"task": task})
}

// Delete handles DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c echo.Context) error {
	taskID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.tasks.DeleteTask(c.Request().Context(), taskID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Task deleted successfully"})
}

type addTagsRequest struct {
	Tags []string `json:"tags"`
}

// AddTags handles POST /api/tasks/:id/tags
func (h *TaskHandler) AddTags(c echo.Context) error {
	taskID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req addTagsRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	result, err := h.tasks.AddTagsToTask(c.Request().Context(), services.AddTagsInput{
		TaskID: taskID,
		Tags:   req.Tags,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Tags added successfully",
		"task_id": result.TaskID,
		"tags":    result.Tags,
	})
}

type linkTagIDsRequest struct {
	TagIDs []uint `json:"tag_ids"`
}

// LinkTagIDs handles POST /api/tasks/:id/tag-ids
func (h *TaskHandler) LinkTagIDs(c echo.Context) error {
	taskID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req linkTagIDsRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	result, err := h.tasks.LinkTagIDs(c.Request().Context(), services.LinkTagIDsInput{
		TaskID: taskID,
		TagIDs: req.TagIDs,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Tags added to task",
		"task_id": result.TaskID,
		"tag_ids": result.TagIDs,
	})
}

type taskCommentRequest struct {
	Content string `json:"content"`
	UserID  uint   `json:"user_id"`
}

// AddComment handles POST /api/tasks/:id/comments
func (h *TaskHandler) AddComment(c echo.Context) error {
	taskID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req taskCommentRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	comment, err := h.comments.CreateComment(c.Request().Context(), services.CreateCommentInput{
		Content: req.Content,
		TaskID:  taskID,
		UserID:  req.UserID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Comment added successfully",
		"comment": comment,
	})
}
