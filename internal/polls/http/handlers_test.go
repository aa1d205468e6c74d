package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivoka/taskvote-backend/internal/auth"
	"github.com/ivoka/taskvote-backend/internal/polls/domain"
	"github.com/ivoka/taskvote-backend/internal/polls/service"
	"github.com/ivoka/taskvote-backend/internal/polls/storetest"
)

// testUserHeader names the user a test request runs as; the stand-in auth
// middleware below resolves it the way the JWT middleware would.
const testUserHeader = "X-Test-User"

func testUsers() *storetest.MemUsers {
	joined := time.Now().AddDate(-1, 0, 0)
	return storetest.NewUsers(
		domain.User{ID: 1, Username: "alice", Name: "Alice A", Email: "alice@example.com", CreatedAt: joined},
		domain.User{ID: 2, Username: "bob", Name: "Bob B", Email: "bob@example.com", CreatedAt: joined},
	)
}

func testRouter(svc *service.Service, users *storetest.MemUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	optional := func(c *gin.Context) {
		if h := c.GetHeader(testUserHeader); h != "" {
			if id, err := strconv.ParseInt(h, 10, 64); err == nil {
				if u, err := users.FindByID(context.Background(), id); err == nil {
					auth.SetCurrentUser(c, &auth.CurrentUser{ID: u.ID, Username: u.Username, Name: u.Name, Roles: []string{auth.RoleUser}})
				}
			}
		}
		c.Next()
	}
	requireUser := func(c *gin.Context) {
		if auth.FromContext(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}
		c.Next()
	}
	noLimit := func(c *gin.Context) { c.Next() }

	api := r.Group("/api")
	api.Use(optional)
	New(svc).Register(api.Group("/projects"), requireUser, noLimit)
	return r
}

func newEnv(t *testing.T) (*gin.Engine, *service.Service) {
	t.Helper()
	users := testUsers()
	svc := service.New(storetest.NewProjects(), storetest.NewVotes(), users)
	return testRouter(svc, users), svc
}

func do(r *gin.Engine, method, path string, body any, userID int64) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(testUserHeader, strconv.FormatInt(userID, 10))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func seedProject(t *testing.T, svc *service.Service, name string) *domain.Project {
	t.Helper()
	p, err := svc.Create(context.Background(), 1, service.CreateRequest{
		Name:   name,
		Tasks:  []string{"Pizza", "Sushi"},
		Length: service.ProjectLength{Days: 1},
	})
	require.NoError(t, err)
	return p
}

func TestListProjects(t *testing.T) {
	r, svc := newEnv(t)
	seedProject(t, svc, "Lunch")

	rr := do(r, "GET", "/api/projects", nil, 0)
	require.Equal(t, http.StatusOK, rr.Code)

	var page struct {
		Content       []json.RawMessage `json:"content"`
		TotalElements int64             `json:"totalElements"`
		Last          bool              `json:"last"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Len(t, page.Content, 1)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.True(t, page.Last)
}

func TestListProjects_InvalidParams(t *testing.T) {
	r, _ := newEnv(t)

	assert.Equal(t, http.StatusBadRequest, do(r, "GET", "/api/projects?page=abc", nil, 0).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, "GET", "/api/projects?page=-1", nil, 0).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, "GET", "/api/projects?size=31", nil, 0).Code)
}

func TestCreateProject(t *testing.T) {
	r, _ := newEnv(t)

	body := map[string]any{
		"projectName": "Lunch",
		"tasks":       []map[string]string{{"text": "Pizza"}, {"text": "Sushi"}},
		"projectLength": map[string]int{
			"days": 1, "hours": 0,
		},
	}

	rr := do(r, "POST", "/api/projects", body, 1)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/api/projects/")

	var resp struct {
		OK bool  `json:"ok"`
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotZero(t, resp.ID)
}

func TestCreateProject_Unauthenticated(t *testing.T) {
	r, _ := newEnv(t)
	rr := do(r, "POST", "/api/projects", map[string]any{"projectName": "x"}, 0)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateProject_ValidationError(t *testing.T) {
	r, _ := newEnv(t)

	body := map[string]any{
		"projectName":   "Lunch",
		"tasks":         []map[string]string{{"text": "OnlyOne"}},
		"projectLength": map[string]int{"days": 1},
	}
	rr := do(r, "POST", "/api/projects", body, 1)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetProject(t *testing.T) {
	r, svc := newEnv(t)
	p := seedProject(t, svc, "Lunch")

	rr := do(r, "GET", fmt.Sprintf("/api/projects/%d", p.ID), nil, 0)
	require.Equal(t, http.StatusOK, rr.Code)

	var view struct {
		Name       string `json:"projectName"`
		Expired    bool   `json:"expired"`
		TotalVotes int64  `json:"totalVotes"`
		CreatedBy  struct {
			Username string `json:"username"`
		} `json:"createdBy"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "Lunch", view.Name)
	assert.Equal(t, "alice", view.CreatedBy.Username)
	assert.False(t, view.Expired)
}

func TestGetProject_NotFound(t *testing.T) {
	r, _ := newEnv(t)
	rr := do(r, "GET", "/api/projects/999", nil, 0)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Project")
}

func TestGetProject_InvalidID(t *testing.T) {
	r, _ := newEnv(t)
	assert.Equal(t, http.StatusBadRequest, do(r, "GET", "/api/projects/abc", nil, 0).Code)
}

func TestCastVote(t *testing.T) {
	r, svc := newEnv(t)
	p := seedProject(t, svc, "Lunch")

	path := fmt.Sprintf("/api/projects/%d/votes", p.ID)
	rr := do(r, "POST", path, map[string]int64{"taskId": p.Tasks[0].ID}, 2)
	require.Equal(t, http.StatusOK, rr.Code)

	var view struct {
		TotalVotes   int64  `json:"totalVotes"`
		SelectedTask *int64 `json:"selectedTask"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, int64(1), view.TotalVotes)
	require.NotNil(t, view.SelectedTask)
	assert.Equal(t, p.Tasks[0].ID, *view.SelectedTask)
}

func TestCastVote_DuplicateIsConflict(t *testing.T) {
	r, svc := newEnv(t)
	p := seedProject(t, svc, "Lunch")
	path := fmt.Sprintf("/api/projects/%d/votes", p.ID)

	require.Equal(t, http.StatusOK, do(r, "POST", path, map[string]int64{"taskId": p.Tasks[0].ID}, 2).Code)

	rr := do(r, "POST", path, map[string]int64{"taskId": p.Tasks[1].ID}, 2)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already voted")
}

func TestCastVote_UnknownTask(t *testing.T) {
	r, svc := newEnv(t)
	p := seedProject(t, svc, "Lunch")

	rr := do(r, "POST", fmt.Sprintf("/api/projects/%d/votes", p.ID), map[string]int64{"taskId": 999}, 2)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Task")
}

func TestCastVote_RequiresAuth(t *testing.T) {
	r, svc := newEnv(t)
	p := seedProject(t, svc, "Lunch")

	rr := do(r, "POST", fmt.Sprintf("/api/projects/%d/votes", p.ID), map[string]int64{"taskId": p.Tasks[0].ID}, 0)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
