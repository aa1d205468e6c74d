package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ivoka/taskvote-backend/internal/polls/domain"
)

// UserResolver turns a token subject into the stored identity record.
type UserResolver interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// OptionalUser resolves a bearer token when one is present and valid, and
// lets the request through anonymously otherwise. Listing and read endpoints
// use this: an invalid token degrades to an unpersonalized view rather than
// an error.
func OptionalUser(secret string, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := resolve(c, secret, users); u != nil {
			SetCurrentUser(c, u)
		}
		c.Next()
	}
}

// RequireUser enforces a valid bearer token carrying the USER role. Write
// endpoints (create project, cast vote) use this.
func RequireUser(secret string, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		claims, err := ParseToken(secret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		if !claims.HasRole(RoleUser) {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "insufficient role"})
			c.Abort()
			return
		}

		id, err := claims.UserID()
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		u, err := users.FindByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unknown user"})
			c.Abort()
			return
		}

		SetCurrentUser(c, &CurrentUser{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Roles:    claims.Roles,
		})
		c.Next()
	}
}

func resolve(c *gin.Context, secret string, users UserResolver) *CurrentUser {
	token := extractToken(c)
	if token == "" {
		return nil
	}
	claims, err := ParseToken(secret, token)
	if err != nil {
		return nil
	}
	id, err := claims.UserID()
	if err != nil {
		return nil
	}
	u, err := users.FindByID(c.Request.Context(), id)
	if err != nil {
		return nil
	}
	return &CurrentUser{ID: u.ID, Username: u.Username, Name: u.Name, Roles: claims.Roles}
}

// extractToken pulls the bearer token out of the Authorization header.
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
