package server

import (
	"github.com/casapps/tasktracker/src/internal/api/handlers"
	echoMiddleware "github.com/casapps/tasktracker/src/internal/api/middleware"
)

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	health := handlers.NewHealthHandler(s.db)
	users := handlers.NewUserHandler(s.users)
	tasks := handlers.NewTaskHandler(s.tasks, s.comments)
	comments := handlers.NewCommentHandler(s.comments)
	tags := handlers.NewTagHandler(s.tags)

	api := s.echo.Group("/api")

	api.GET("/health", health.Check)
	api.GET("/metrics", echoMiddleware.MetricsHandler(s.metrics, Version))

	api.POST("/users", users.Create)
	api.GET("/users", users.List)
	api.GET("/users/:id/tasks", users.Tasks)

	api.POST("/tasks", tasks.Create)
	api.GET("/tasks/latest-comments", tasks.LatestComments)
	api.GET("/tasks/:id", tasks.Get)
	api.DELETE("/tasks/:id", tasks.Delete)
	api.POST("/tasks/:id/tags", tasks.AddTags)
	api.POST("/tasks/:id/tag-ids", tasks.LinkTagIDs)
	api.POST("/tasks/:id/comments", tasks.AddComment)

	api.POST("/comments", comments.Create)

	api.GET("/tags", tags.List)
	api.GET("/tags/:id/tasks", tags.Tasks)
}
