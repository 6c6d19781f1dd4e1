package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lilo-planner/internal/assistant"
	"lilo-planner/internal/model"
	"lilo-planner/internal/repository"
	"lilo-planner/internal/service"
)

var testSecret = []byte("test-secret")

type stubOracle struct {
	parseOut assistant.ParseResult
	converse string
	err      error
}

func (s *stubOracle) ClassifyAndExtract(ctx context.Context, message string) (assistant.ParseResult, error) {
	if s.err != nil {
		return assistant.ParseResult{}, s.err
	}
	return s.parseOut, nil
}

func (s *stubOracle) Converse(ctx context.Context, message string, contextTasks []model.Task) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.converse, nil
}

func newTestServer(t *testing.T, oracle assistant.Oracle) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	tasks := service.NewTaskService(repository.NewTaskRepository(db), 30)
	bridge := assistant.NewBridge(oracle, tasks)

	return New(users, tasks, bridge, testSecret)
}

func bearerToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:     subject + "@example.com",
		FirstName: "Test",
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return "Bearer " + signed
}

func doRequest(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, &stubOracle{})

	rec := doRequest(t, srv, http.MethodGet, "/api/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/tasks", "Bearer garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndListTask(t *testing.T) {
	srv := newTestServer(t, &stubOracle{})
	token := bearerToken(t, "user-a")

	rec := doRequest(t, srv, http.MethodPost, "/api/tasks", token,
		`{"title":"DBMS Revision","date":"2025-03-02","time":"20:00","repeat":"weekly","priority":"high"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var created model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "DBMS Revision", created.Title)

	rec = doRequest(t, srv, http.MethodGet, "/api/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestCreateRecurringBatchResponse(t *testing.T) {
	srv := newTestServer(t, &stubOracle{})
	token := bearerToken(t, "user-a")

	rec := doRequest(t, srv, http.MethodPost, "/api/tasks", token,
		`{"title":"DBMS Revision","date":"2025-03-02","time":"20:00","repeat":"weekly","priority":"high","generateRecurring":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tasks []model.Task `json:"tasks"`
		Count int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 30, resp.Count)
	require.Len(t, resp.Tasks, 30)
	assert.Equal(t, "2025-03-02", resp.Tasks[0].Date)
	assert.Equal(t, "2025-03-09", resp.Tasks[1].Date)
}

func TestCreateTaskBadDate(t *testing.T) {
	srv := newTestServer(t, &stubOracle{})
	token := bearerToken(t, "user-a")

	rec := doRequest(t, srv, http.MethodPost, "/api/tasks", token,
		`{"title":"x","date":"tomorrow","repeat":"daily","generateRecurring":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskNotFoundForForeignOwner(t *testing.T) {
	srv := newTestServer(t, &stubOracle{})
	tokenA := bearerToken(t, "user-a")
	tokenB := bearerToken(t, "user-b")

	rec := doRequest(t, srv, http.MethodPost, "/api/tasks", tokenA,
		`{"title":"mine","date":"2025-03-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var created model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Another owner's update surfaces as plain not-found.
	rec = doRequest(t, srv, http.MethodPatch, "/api/tasks/"+created.ID, tokenB,
		`{"title":"stolen"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodPatch, "/api/tasks/"+created.ID, tokenA,
		`{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
}

func TestDeleteTaskIdempotent(t *testing.T) {
	srv := newTestServer(t, &stubOracle{})
	token := bearerToken(t, "user-a")

	rec := doRequest(t, srv, http.MethodPost, "/api/tasks", token,
		`{"title":"gone soon","date":"2025-03-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var created model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doRequest(t, srv, http.MethodDelete, "/api/tasks/"+created.ID, token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodDelete, "/api/tasks/"+created.ID, token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatCreatesTask(t *testing.T) {
	oracle := &stubOracle{parseOut: assistant.ParseResult{
		ShouldCreateTask: true,
		Task: &assistant.TaskCandidate{
			Title: "Call mom", Date: "2025-03-03", Time: "17:00",
		},
	}}
	srv := newTestServer(t, oracle)
	token := bearerToken(t, "user-a")

	rec := doRequest(t, srv, http.MethodPost, "/api/chat", token,
		`{"message":"remind me to call mom tomorrow at 5pm"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Response    string `json:"response"`
		TaskCreated bool   `json:"taskCreated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.TaskCreated)
	assert.Contains(t, resp.Response, "Call mom")

	rec = doRequest(t, srv, http.MethodGet, "/api/tasks", token, "")
	var listed []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)
}

func TestChatRequiresMessage(t *testing.T) {
	srv := newTestServer(t, &stubOracle{})
	token := bearerToken(t, "user-a")

	rec := doRequest(t, srv, http.MethodPost, "/api/chat", token, `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatOracleNotConfigured(t *testing.T) {
	srv := newTestServer(t, &stubOracle{err: model.ErrOracleUnavailable})
	token := bearerToken(t, "user-a")

	rec := doRequest(t, srv, http.MethodPost, "/api/chat", token, `{"message":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUserProfileUpsert(t *testing.T) {
	srv := newTestServer(t, &stubOracle{})
	token := bearerToken(t, "user-a")

	rec := doRequest(t, srv, http.MethodGet, "/api/auth/user", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "user-a", user.ID)
	assert.Equal(t, "user-a@example.com", user.Email)
	assert.Equal(t, "UTC", user.Timezone)

	rec = doRequest(t, srv, http.MethodPatch, "/api/auth/user", token,
		`{"college":"MIT","timezone":"Asia/Kolkata"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "MIT", user.College)
	assert.Equal(t, "Asia/Kolkata", user.Timezone)
	assert.Equal(t, "user-a@example.com", user.Email, "merge keeps earlier fields")
}
