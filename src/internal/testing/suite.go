package testing

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/config"
	"github.com/casapps/tasktracker/src/internal/server"
)

// TestSuite runs HTTP tests against a fresh server and database per test
type TestSuite struct {
	suite.Suite

	DB         *gorm.DB
	Config     *viper.Viper
	Server     *server.Server
	Echo       *echo.Echo
	TestServer *httptest.Server

	TestData  *TestDataManager
	APIClient *APITestClient
}

// APITestClient sends JSON requests to the test server
type APITestClient struct {
	baseURL    string
	httpClient *http.Client
}

// SetupTest builds the database, server and clients for one test
func (s *TestSuite) SetupTest() {
	s.Config = config.Defaults()
	s.Config.Set("environment", "test")
	s.Config.Set("server.rate_limit", 0)

	s.DB = NewTestDB(s.T())
	s.TestData = NewTestDataManager(s.DB)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.Echo = echo.New()
	s.Server = server.New(s.Echo, s.Config, s.DB, logger, nil)
	s.TestServer = httptest.NewServer(s.Echo)

	s.APIClient = &APITestClient{
		baseURL:    s.TestServer.URL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// TearDownTest stops the test server
func (s *TestSuite) TearDownTest() {
	if s.TestServer != nil {
		s.TestServer.Close()
	}
}

// GET performs a GET request
func (c *APITestClient) GET(path string) (*http.Response, error) {
	return c.request(http.MethodGet, path, nil)
}

// POST performs a POST request
func (c *APITestClient) POST(path string, data interface{}) (*http.Response, error) {
	return c.request(http.MethodPost, path, data)
}

// DELETE performs a DELETE request
func (c *APITestClient) DELETE(path string) (*http.Response, error) {
	return c.request(http.MethodDelete, path, nil)
}

func (c *APITestClient) request(method, path string, data interface{}) (*http.Response, error) {
	var body io.Reader
	if data != nil {
		var raw []byte
		switch v := data.(type) {
		case string:
			raw = []byte(v)
		default:
			encoded, err := json.Marshal(data)
			if err != nil {
				return nil, err
			}
			raw = encoded
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if data != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	return c.httpClient.Do(req)
}

// DecodeJSON reads and closes the response body into a generic map
func (s *TestSuite) DecodeJSON(resp *http.Response) map[string]interface{} {
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// Do sends a request, asserts the status and decodes the body
func (s *TestSuite) Do(method, path string, data interface{}, expectedCode int) map[string]interface{} {
	resp, err := s.APIClient.request(method, path, data)
	require.NoError(s.T(), err)
	require.Equal(s.T(), expectedCode, resp.StatusCode, "%s %s", method, path)
	return s.DecodeJSON(resp)
}

// AssertAPIError asserts the status and error code of a failed call
func (s *TestSuite) AssertAPIError(body map[string]interface{}, expectedCode string) {
	assert.Equal(s.T(), expectedCode, body["code"])
	assert.NotEmpty(s.T(), body["error"])
}

// AssertValidationError asserts a VALIDATION_FAILED response naming field
func (s *TestSuite) AssertValidationError(body map[string]interface{}, field string) {
	s.AssertAPIError(body, "VALIDATION_FAILED")

	details, ok := body["details"].(map[string]interface{})
	require.True(s.T(), ok, "validation error has no details")
	assert.Equal(s.T(), field, details["field"])
}

// AssertDatabaseCount asserts the count of records in database
func (s *TestSuite) AssertDatabaseCount(model interface{}, expectedCount int64) {
	assert.Equal(s.T(), expectedCount, s.TestData.Count(s.T(), model))
}
