package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/casapps/tasktracker/src/internal/errors"
	"github.com/casapps/tasktracker/src/internal/metrics"
)

// MetricsMiddleware creates middleware for collecting HTTP metrics
func MetricsMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			m.RequestMetrics(
				c.Request().Method,
				routeOf(c),
				statusOf(c, err),
				time.Since(start),
			)

			return err
		}
	}
}

// MetricsHandler serves a metrics snapshot as JSON, or Prometheus text with ?format=prom
func MetricsHandler(m *metrics.Metrics, version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		snapshot := m.GetSnapshot(c.Request().Context(), version)

		if c.QueryParam("format") == "prom" {
			return c.String(http.StatusOK, metrics.FormatPrometheus(snapshot))
		}
		return c.JSON(http.StatusOK, snapshot)
	}
}

// statusOf reports the status the error handler will write for err
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}

	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		return ce.StatusCode
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// routeOf returns the matched route pattern, so ids do not explode the label set
func routeOf(c echo.Context) string {
	if path := c.Path(); path != "" {
		return path
	}
	return "unmatched"
}
