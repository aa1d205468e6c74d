package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivoka/taskvote-backend/internal/auth"
)

func limiterRouter(l *RateLimiter, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/vote", func(c *gin.Context) {
		if userID != 0 {
			auth.SetCurrentUser(c, &auth.CurrentUser{ID: userID})
		}
		c.Next()
	}, l.Limit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func post(r *gin.Engine) int {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("POST", "/vote", nil))
	return rr.Code
}

func TestRateLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	l := NewRateLimiter(client, 3)
	r := limiterRouter(l, 1)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r), "request %d should pass", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, post(r))

	// A different user has their own window.
	other := limiterRouter(l, 2)
	assert.Equal(t, http.StatusOK, post(other))

	// The window expires and the budget refills.
	mr.FastForward(61e9)
	assert.Equal(t, http.StatusOK, post(r))
}

func TestRateLimiter_RedisKeysPerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	l := NewRateLimiter(client, 5)
	r := limiterRouter(l, 7)
	require.Equal(t, http.StatusOK, post(r))

	got, err := mr.Get(rateLimitKeyPrefix + strconv.Itoa(7))
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestRateLimiter_SteadyTrafficDoesNotExtendWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	l := NewRateLimiter(client, 2)
	r := limiterRouter(l, 1)

	// The window opens on the first request; the second lands near its end
	// and must not push the expiry out.
	require.Equal(t, http.StatusOK, post(r))
	mr.FastForward(59e9)
	require.Equal(t, http.StatusOK, post(r))

	mr.FastForward(2e9)
	assert.Equal(t, http.StatusOK, post(r))
}

func TestRateLimiter_InProcessFallback(t *testing.T) {
	l := NewRateLimiter(nil, 2)
	r := limiterRouter(l, 1)

	assert.Equal(t, http.StatusOK, post(r))
	assert.Equal(t, http.StatusOK, post(r))
	assert.Equal(t, http.StatusTooManyRequests, post(r))
}

func TestRateLimiter_AnonymousAndDisabled(t *testing.T) {
	// No resolved user: the limiter stays out of the way.
	l := NewRateLimiter(nil, 1)
	r := limiterRouter(l, 0)
	assert.Equal(t, http.StatusOK, post(r))
	assert.Equal(t, http.StatusOK, post(r))

	// Zero budget disables limiting entirely.
	off := limiterRouter(NewRateLimiter(nil, 0), 1)
	assert.Equal(t, http.StatusOK, post(off))
	assert.Equal(t, http.StatusOK, post(off))
}

func TestRateLimiter_RedisDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	l := NewRateLimiter(client, 1)
	r := limiterRouter(l, 1)
	assert.Equal(t, http.StatusOK, post(r))
}
