package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	echoMiddleware "github.com/casapps/tasktracker/src/internal/api/middleware"
	apperrors "github.com/casapps/tasktracker/src/internal/errors"
	"github.com/casapps/tasktracker/src/internal/metrics"
	"github.com/casapps/tasktracker/src/internal/services"
)

// Version is reported by the metrics endpoint and the CLI
var Version = "dev"

// Server represents the HTTP application server
type Server struct {
	echo         *echo.Echo
	config       *viper.Viper
	db           *gorm.DB
	logger       *slog.Logger
	metrics      *metrics.Metrics
	errorHandler *apperrors.ErrorHandler

	users    *services.UserService
	tasks    *services.TaskService
	comments *services.CommentService
	tags     *services.TagService

	startTime time.Time
}

// New creates a server, installs middleware and registers routes on e
func New(e *echo.Echo, cfg *viper.Viper, db *gorm.DB, logger *slog.Logger, tracer trace.Tracer) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		echo:         e,
		config:       cfg,
		db:           db,
		logger:       logger,
		metrics:      metrics.NewMetrics(db),
		errorHandler: apperrors.NewErrorHandler(cfg, logger),
		users:        services.NewUserService(db, logger, tracer),
		tasks:        services.NewTaskService(db, logger, tracer),
		comments:     services.NewCommentService(db, logger, tracer),
		tags:         services.NewTagService(db, logger, tracer),
		startTime:    time.Now(),
	}

	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler.HTTPErrorHandler

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Echo returns the underlying echo instance
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Metrics returns the server's metrics registry
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Address returns host:port from configuration
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.GetString("server.host"), strconv.Itoa(s.config.GetInt("server.port")))
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start(address string) error {
	s.logger.Info("Server starting", "address", address)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Server shutting down", "uptime", time.Since(s.startTime).String())
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.NewString()
		},
	}))
	s.echo.Use(echoMiddleware.RequestLogger(s.logger))
	s.echo.Use(s.errorHandler.RecoverMiddleware())
	s.echo.Use(echoMiddleware.Security())
	s.echo.Use(echoMiddleware.CORS(s.config))
	s.echo.Use(echoMiddleware.RateLimit(s.config))
	s.echo.Use(echoMiddleware.MetricsMiddleware(s.metrics))
	s.echo.Use(middleware.BodyLimit("1M"))

	if timeout := s.config.GetDuration("server.request_timeout"); timeout > 0 {
		s.echo.Use(s.errorHandler.TimeoutMiddleware(timeout))
	}
}
