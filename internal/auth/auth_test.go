package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivoka/taskvote-backend/internal/polls/domain"
)

const testSecret = "test-secret"

type stubResolver struct {
	users map[int64]*domain.User
}

func (s *stubResolver) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.NotFound("User", "id", id)
	}
	return u, nil
}

func newResolver() *stubResolver {
	return &stubResolver{users: map[int64]*domain.User{
		1: {ID: 1, Username: "alice", Name: "Alice A"},
	}}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken(testSecret, 1, []string{RoleUser}, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.True(t, claims.HasRole(RoleUser))
	assert.False(t, claims.HasRole("ADMIN"))
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := NewToken(testSecret, 1, []string{RoleUser}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := NewToken(testSecret, 1, []string{RoleUser}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func serve(handler gin.HandlerFunc, authorization string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", handler, func(c *gin.Context) {
		u := FromContext(c)
		if u == nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u.Username})
	})

	req := httptest.NewRequest("GET", "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRequireUser(t *testing.T) {
	resolver := newResolver()
	mw := RequireUser(testSecret, resolver)

	t.Run("missing token", func(t *testing.T) {
		rr := serve(mw, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := serve(mw, "Bearer not-a-token")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing role", func(t *testing.T) {
		token, err := NewToken(testSecret, 1, nil, time.Hour)
		require.NoError(t, err)
		rr := serve(mw, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		token, err := NewToken(testSecret, 42, []string{RoleUser}, time.Hour)
		require.NoError(t, err)
		rr := serve(mw, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid", func(t *testing.T) {
		token, err := NewToken(testSecret, 1, []string{RoleUser}, time.Hour)
		require.NoError(t, err)
		rr := serve(mw, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "alice")
	})
}

func TestOptionalUser(t *testing.T) {
	resolver := newResolver()
	mw := OptionalUser(testSecret, resolver)

	t.Run("no token passes through anonymously", func(t *testing.T) {
		rr := serve(mw, "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"user":null`)
	})

	t.Run("invalid token degrades to anonymous", func(t *testing.T) {
		rr := serve(mw, "Bearer junk")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"user":null`)
	})

	t.Run("valid token resolves the user", func(t *testing.T) {
		token, err := NewToken(testSecret, 1, []string{RoleUser}, time.Hour)
		require.NoError(t, err)
		rr := serve(mw, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "alice")
	})
}
