package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
)

// ErrorHandler turns errors returned by handlers into JSON responses
type ErrorHandler struct {
	logger     *slog.Logger
	production bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(config *viper.Viper, logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger:     logger,
		production: config.GetString("environment") == "production",
	}
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error      string                 `json:"error"`
	Code       string                 `json:"code"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	RequestID  string                 `json:"request_id,omitempty"`
	Path       string                 `json:"path,omitempty"`
	Method     string                 `json:"method,omitempty"`
	StatusCode int                    `json:"status_code"`
}

// CustomError represents a classified application error
type CustomError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code"`
	StatusCode int                    `json:"status_code"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
}

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found_error"
	ErrorTypeConflict   ErrorType = "conflict_error"
	ErrorTypeForeignKey ErrorType = "foreign_key_error"
	ErrorTypeStore      ErrorType = "store_error"
)

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As
func (e *CustomError) Unwrap() error {
	return e.Cause
}

// NewCustomError creates a new custom error
func NewCustomError(errorType ErrorType, message, code string, statusCode int) *CustomError {
	return &CustomError{
		Type:       errorType,
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

// WithCause adds a cause to the error
func (e *CustomError) WithCause(cause error) *CustomError {
	e.Cause = cause
	return e
}

// WithDetail adds a detail to the error
func (e *CustomError) WithDetail(key string, value interface{}) *CustomError {
	e.Details[key] = value
	return e
}

// Common error constructors
func NewValidationError(message, field string) *CustomError {
	return NewCustomError(ErrorTypeValidation, message, "VALIDATION_FAILED", http.StatusBadRequest).
		WithDetail("field", field)
}

func NotFoundError(resource string, id interface{}) *CustomError {
	return NewCustomError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), "NOT_FOUND", http.StatusNotFound).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func ConflictError(message, resource string) *CustomError {
	return NewCustomError(ErrorTypeConflict, message, "CONFLICT", http.StatusConflict).
		WithDetail("resource", resource)
}

func ForeignKeyError(field string, id interface{}) *CustomError {
	return NewCustomError(ErrorTypeForeignKey, fmt.Sprintf("Referenced %s does not exist", field), "FOREIGN_KEY_VIOLATION", http.StatusBadRequest).
		WithDetail("field", field).
		WithDetail("id", id)
}

func StoreError(operation string, cause error) *CustomError {
	return NewCustomError(ErrorTypeStore, "Store operation failed", "STORE_ERROR", http.StatusInternalServerError).
		WithDetail("operation", operation).
		WithCause(cause)
}

// Is reports whether err carries a CustomError of the given type
func Is(err error, errorType ErrorType) bool {
	var ce *CustomError
	return errors.As(err, &ce) && ce.Type == errorType
}

// HTTPErrorHandler handles HTTP errors for Echo
func (h *ErrorHandler) HTTPErrorHandler(err error, c echo.Context) {
	// Already handled further down the chain
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "Internal server error"
		details = make(map[string]interface{})
		errCode = "INTERNAL_ERROR"
	)

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = c.Request().Header.Get(echo.HeaderXRequestID)
	}

	path := c.Request().URL.Path
	method := c.Request().Method

	var (
		customErr *CustomError
		httpErr   *echo.HTTPError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &customErr):
		code = customErr.StatusCode
		message = customErr.Message
		errCode = customErr.Code
		details = customErr.Details

		level := slog.LevelInfo
		if code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		h.logger.Log(c.Request().Context(), level, "request failed",
			"type", customErr.Type,
			"error", err,
			"request_id", requestID,
			"path", path,
			"method", method,
		)

	case errors.As(err, &syntaxErr):
		code = http.StatusBadRequest
		message = "Invalid JSON format"
		errCode = "INVALID_JSON"
		details["offset"] = syntaxErr.Offset

	case errors.As(err, &httpErr):
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)

		switch code {
		case http.StatusNotFound:
			errCode = "NOT_FOUND"
			message = "Resource not found"
		case http.StatusMethodNotAllowed:
			errCode = "METHOD_NOT_ALLOWED"
			message = "Method not allowed"
		case http.StatusBadRequest:
			errCode = "BAD_REQUEST"
		case http.StatusTooManyRequests:
			errCode = "RATE_LIMITED"
			message = "Rate limit exceeded"
		case http.StatusServiceUnavailable:
			errCode = "TIMEOUT"
		}

	default:
		h.logger.ErrorContext(c.Request().Context(), "unhandled error",
			"error", err,
			"request_id", requestID,
			"path", path,
			"method", method,
		)
	}

	// Don't expose internal errors in production
	if h.production && code == http.StatusInternalServerError {
		message = "Internal server error"
		details = map[string]interface{}{
			"error_id": requestID,
		}
	}

	errorResponse := ErrorResponse{
		Error:      message,
		Code:       errCode,
		Details:    details,
		Timestamp:  time.Now().UTC(),
		RequestID:  requestID,
		Path:       path,
		Method:     method,
		StatusCode: code,
	}

	if method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse)
	}
	if err != nil {
		h.logger.Error("failed to send error response", "error", err)
	}
}

// RecoverMiddleware provides panic recovery
func (h *ErrorHandler) RecoverMiddleware() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			h.logger.ErrorContext(c.Request().Context(), "panic recovered",
				"error", err,
				"panic_stack", string(stack),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"path", c.Request().URL.Path,
			)
			return err
		},
	})
}

// TimeoutMiddleware puts a deadline on the request context; store calls observe it
func (h *ErrorHandler) TimeoutMiddleware(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: timeout,
	})
}
