package auth

import "github.com/gin-gonic/gin"

const ctxCurrentUser = "current_user"

// CurrentUser is the resolved identity of the requester.
type CurrentUser struct {
	ID       int64
	Username string
	Name     string
	Roles    []string
}

func (u *CurrentUser) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// FromContext returns the current user set by the middleware, or nil for an
// anonymous request.
func FromContext(c *gin.Context) *CurrentUser {
	v, ok := c.Get(ctxCurrentUser)
	if !ok {
		return nil
	}
	u, ok := v.(*CurrentUser)
	if !ok {
		return nil
	}
	return u
}

// SetCurrentUser installs the resolved user; middleware and tests use it.
func SetCurrentUser(c *gin.Context, u *CurrentUser) {
	c.Set(ctxCurrentUser, u)
}
