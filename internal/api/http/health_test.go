package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func healthRouter(db Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHealthHandler("taskvote-api", "1.0.0", db).RegisterRoutes(r)
	return r
}

func getHealth(t *testing.T, r *gin.Engine, path string) (int, HealthStatus) {
	t.Helper()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	return rr.Code, status
}

func TestHealthCheck(t *testing.T) {
	r := healthRouter(stubPinger{})

	code, status := getHealth(t, r, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.OK)
	assert.Equal(t, "taskvote-api", status.Service)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Equal(t, "up", status.DB)
	assert.False(t, status.CheckedAt.IsZero())
}

func TestHealthCheck_DBDown(t *testing.T) {
	r := healthRouter(stubPinger{err: errors.New("connection refused")})

	code, status := getHealth(t, r, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "down", status.DB)
}
