package server_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/casapps/tasktracker/src/internal/database/models"
	testhelpers "github.com/casapps/tasktracker/src/internal/testing"
)

type APISuite struct {
	testhelpers.TestSuite
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) createUser(name, email string) uint {
	body := s.Do(http.MethodPost, "/api/users", map[string]interface{}{"name": name, "email": email}, http.StatusCreated)
	user := body["user"].(map[string]interface{})
	return uint(user["id"].(float64))
}

func (s *APISuite) createTask(userID uint, title string) uint {
	body := s.Do(http.MethodPost, "/api/tasks", map[string]interface{}{"title": title, "user_id": userID}, http.StatusCreated)
	task := body["task"].(map[string]interface{})
	return uint(task["id"].(float64))
}

func (s *APISuite) TestHealth() {
	body := s.Do(http.MethodGet, "/api/health", nil, http.StatusOK)
	s.Equal("OK", body["status"])
	s.NotEmpty(body["timestamp"])
}

func (s *APISuite) TestUsers() {
	body := s.Do(http.MethodGet, "/api/users", nil, http.StatusOK)
	s.Empty(body["users"])

	body = s.Do(http.MethodPost, "/api/users", map[string]interface{}{"name": "Ada", "email": "ada@example.com"}, http.StatusCreated)
	s.Equal("User created successfully", body["message"])

	body = s.Do(http.MethodPost, "/api/users", map[string]interface{}{"name": "Ada", "email": "ada@example.com"}, http.StatusConflict)
	s.AssertAPIError(body, "CONFLICT")
	s.AssertDatabaseCount(&models.User{}, 1)

	body = s.Do(http.MethodPost, "/api/users", map[string]interface{}{"name": "Bob"}, http.StatusBadRequest)
	s.AssertValidationError(body, "email")

	body = s.Do(http.MethodPost, "/api/users", `{"name": "Bob" "email": "bob@example.com"}`, http.StatusBadRequest)
	s.AssertAPIError(body, "INVALID_JSON")

	body = s.Do(http.MethodGet, "/api/users", nil, http.StatusOK)
	s.Len(body["users"], 1)
}

func (s *APISuite) TestTaskLifecycle() {
	userID := s.createUser("Ada", "ada@example.com")
	taskID := s.createTask(userID, "Write docs")
	path := fmt.Sprintf("/api/tasks/%d", taskID)

	body := s.Do(http.MethodPost, path+"/tags", map[string]interface{}{"tags": []string{"backend", "urgent"}}, http.StatusOK)
	s.Equal("Tags added successfully", body["message"])
	s.Equal([]interface{}{"backend", "urgent"}, body["tags"])

	body = s.Do(http.MethodPost, path+"/comments", map[string]interface{}{"content": "First", "user_id": userID}, http.StatusCreated)
	s.Equal("Comment added successfully", body["message"])
	s.Do(http.MethodPost, "/api/comments", map[string]interface{}{"content": "Second", "task_id": taskID, "user_id": userID}, http.StatusCreated)

	body = s.Do(http.MethodGet, path, nil, http.StatusOK)
	task := body["task"].(map[string]interface{})
	s.Equal("Write docs", task["title"])
	s.Equal("pending", task["status"])
	s.Equal("Ada", task["user_name"])
	s.Equal([]interface{}{"backend", "urgent"}, task["tags"])
	s.Len(task["comments"], 2)

	body = s.Do(http.MethodGet, fmt.Sprintf("/api/users/%d/tasks", userID), nil, http.StatusOK)
	tasks := body["tasks"].([]interface{})
	s.Require().Len(tasks, 1)
	s.Equal(float64(2), tasks[0].(map[string]interface{})["comment_count"])

	body = s.Do(http.MethodGet, "/api/tasks/latest-comments", nil, http.StatusOK)
	summaries := body["tasks"].([]interface{})
	s.Require().Len(summaries, 1)
	s.NotNil(summaries[0].(map[string]interface{})["latest_comment"])

	body = s.Do(http.MethodDelete, path, nil, http.StatusOK)
	s.Equal("Task deleted successfully", body["message"])
	s.AssertDatabaseCount(&models.Task{}, 0)
	s.AssertDatabaseCount(&models.Comment{}, 0)
	s.AssertDatabaseCount(&models.TaskTag{}, 0)
	s.AssertDatabaseCount(&models.Tag{}, 2)

	body = s.Do(http.MethodGet, path, nil, http.StatusNotFound)
	s.AssertAPIError(body, "NOT_FOUND")
	s.Do(http.MethodDelete, path, nil, http.StatusNotFound)
}

func (s *APISuite) TestTaskErrors() {
	body := s.Do(http.MethodPost, "/api/tasks", map[string]interface{}{"title": "Orphan", "user_id": 999}, http.StatusBadRequest)
	s.AssertAPIError(body, "FOREIGN_KEY_VIOLATION")
	s.AssertDatabaseCount(&models.Task{}, 0)

	body = s.Do(http.MethodPost, "/api/tasks", map[string]interface{}{"user_id": 1}, http.StatusBadRequest)
	s.AssertValidationError(body, "title")

	body = s.Do(http.MethodGet, "/api/tasks/abc", nil, http.StatusBadRequest)
	s.AssertValidationError(body, "id")

	body = s.Do(http.MethodGet, "/api/tasks/0", nil, http.StatusBadRequest)
	s.AssertValidationError(body, "id")

	body = s.Do(http.MethodPost, "/api/tasks/5/tags", map[string]interface{}{"tags": []string{"x"}}, http.StatusNotFound)
	s.AssertAPIError(body, "NOT_FOUND")

	userID := s.createUser("Ada", "ada@example.com")
	taskID := s.createTask(userID, "Real")

	body = s.Do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/tags", taskID), map[string]interface{}{"tags": []string{}}, http.StatusBadRequest)
	s.AssertValidationError(body, "tags")

	body = s.Do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/comments", taskID), map[string]interface{}{"content": "hi", "user_id": 999}, http.StatusBadRequest)
	s.AssertAPIError(body, "FOREIGN_KEY_VIOLATION")
	s.Equal("user_id", body["details"].(map[string]interface{})["field"])

	body = s.Do(http.MethodPost, "/api/comments", map[string]interface{}{"content": "hi", "task_id": 999, "user_id": userID}, http.StatusBadRequest)
	s.Equal("task_id", body["details"].(map[string]interface{})["field"])
	s.AssertDatabaseCount(&models.Comment{}, 0)
}

func (s *APISuite) TestTags() {
	userID := s.createUser("Ada", "ada@example.com")
	older := s.createTask(userID, "older")
	newer := s.createTask(userID, "newer")
	tag := s.TestData.CreateTag(s.T(), "backend")

	for _, taskID := range []uint{older, newer} {
		body := s.Do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/tag-ids", taskID),
			map[string]interface{}{"tag_ids": []uint{tag.ID}}, http.StatusCreated)
		s.Equal("Tags added to task", body["message"])
	}

	body := s.Do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/tag-ids", older),
		map[string]interface{}{"tag_ids": []uint{404}}, http.StatusBadRequest)
	s.AssertAPIError(body, "FOREIGN_KEY_VIOLATION")

	body = s.Do(http.MethodGet, "/api/tags", nil, http.StatusOK)
	s.Len(body["tags"], 1)

	body = s.Do(http.MethodGet, fmt.Sprintf("/api/tags/%d/tasks", tag.ID), nil, http.StatusOK)
	tasks := body["tasks"].([]interface{})
	s.Require().Len(tasks, 2)
	s.Equal("backend", tasks[0].(map[string]interface{})["tag_name"])

	body = s.Do(http.MethodGet, "/api/tags/9999/tasks", nil, http.StatusOK)
	s.Empty(body["tasks"])
}

func (s *APISuite) TestLatestCommentsOrdering() {
	userID := s.createUser("Ada", "ada@example.com")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	task := s.TestData.CreateTaskAt(s.T(), userID, "seeded", base)
	s.TestData.CreateComment(s.T(), task.ID, userID, "T1", base.Add(time.Minute))
	s.TestData.CreateComment(s.T(), task.ID, userID, "T3", base.Add(3*time.Minute))
	s.TestData.CreateComment(s.T(), task.ID, userID, "T2", base.Add(2*time.Minute))
	s.TestData.CreateTaskAt(s.T(), userID, "quiet", base.Add(time.Hour))

	body := s.Do(http.MethodGet, "/api/tasks/latest-comments", nil, http.StatusOK)
	tasks := body["tasks"].([]interface{})
	s.Require().Len(tasks, 2)

	quiet := tasks[0].(map[string]interface{})
	s.Equal("quiet", quiet["title"])
	s.Nil(quiet["latest_comment"])
	s.Nil(quiet["commenter_name"])

	seeded := tasks[1].(map[string]interface{})
	s.Equal("T3", seeded["latest_comment"])
	s.Equal("Ada", seeded["commenter_name"])
}

func (s *APISuite) TestMetricsAndUnknownRoutes() {
	s.Do(http.MethodGet, "/api/users", nil, http.StatusOK)

	body := s.Do(http.MethodGet, "/api/metrics", nil, http.StatusOK)
	s.Contains(body, "counters")
	s.Equal(float64(0), body["database"].(map[string]interface{})["tasks"])

	resp, err := s.APIClient.GET("/api/metrics?format=prom")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	body = s.Do(http.MethodGet, "/api/nope", nil, http.StatusNotFound)
	s.AssertAPIError(body, "NOT_FOUND")
	s.Equal(int64(1), s.Server.Metrics().Counter("http.route.GET./api/users.200"))
}
