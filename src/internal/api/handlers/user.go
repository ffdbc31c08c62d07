package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casapps/tasktracker/src/internal/services"
)

// UserHandler handles user endpoints
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create handles POST /api/users
func (h *UserHandler) Create(c echo.Context) error {
	var req services.CreateUserInput
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := h.users.CreateUser(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// List handles GET /api/users
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// Tasks handles GET /api/users/:id/tasks
func (h *UserHandler) Tasks(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	tasks, err := h.users.ListUserTasks(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id": userID,
		"tasks":   tasks,
	})
}
