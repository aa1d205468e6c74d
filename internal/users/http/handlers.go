// Package http exposes the user-facing identity endpoints: current-user
// summary, availability checks, profiles, and per-user project listings.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/ivoka/taskvote-backend/internal/api/http"
	"github.com/ivoka/taskvote-backend/internal/auth"
	pollshttp "github.com/ivoka/taskvote-backend/internal/polls/http"
	"github.com/ivoka/taskvote-backend/internal/polls/service"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches the /user and /users routes.
func (h *Handler) Register(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	rg.GET("/user/me", requireUser, h.me)
	rg.GET("/user/checkUsernameAvailability", h.checkUsername)
	rg.GET("/user/checkEmailAvailability", h.checkEmail)
	rg.GET("/users/:username", h.profile)
	rg.GET("/users/:username/projects", h.createdBy)
	rg.GET("/users/:username/votes", h.votedBy)
}

func (h *Handler) me(c *gin.Context) {
	u := auth.FromContext(c)
	summary, err := h.svc.Me(c.Request.Context(), u.ID)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) checkUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "username is required"})
		return
	}

	available, err := h.svc.UsernameAvailable(c.Request.Context(), username)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *Handler) checkEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "email is required"})
		return
	}

	available, err := h.svc.EmailAvailable(c.Request.Context(), email)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *Handler) profile(c *gin.Context) {
	profile, err := h.svc.Profile(c.Request.Context(), c.Param("username"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) createdBy(c *gin.Context) {
	page, size, err := pollshttp.PageParams(c)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	result, err := h.svc.ListCreatedBy(c.Request.Context(), c.Param("username"), currentViewer(c), page, size)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) votedBy(c *gin.Context) {
	page, size, err := pollshttp.PageParams(c)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	result, err := h.svc.ListVotedBy(c.Request.Context(), c.Param("username"), currentViewer(c), page, size)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func currentViewer(c *gin.Context) *service.Viewer {
	u := auth.FromContext(c)
	if u == nil {
		return nil
	}
	return &service.Viewer{ID: u.ID}
}
