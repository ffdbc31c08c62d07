package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/casapps/tasktracker/src/internal/errors"
)

// parseID reads a positive integer path parameter
func parseID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError(name+" must be a positive integer", name).
			WithDetail("value", raw)
	}
	return uint(id), nil
}
