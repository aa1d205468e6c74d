package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/ivoka/taskvote-backend/internal/api/http"
	"github.com/ivoka/taskvote-backend/internal/auth"
	"github.com/ivoka/taskvote-backend/internal/polls/service"
)

func (h *Handler) list(c *gin.Context) {
	page, size, err := PageParams(c)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	result, err := h.svc.List(c.Request.Context(), viewer(c), page, size)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) create(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	tasks := make([]string, len(req.Tasks))
	for i, t := range req.Tasks {
		tasks[i] = t.Text
	}

	u := auth.FromContext(c)
	p, err := h.svc.Create(c.Request.Context(), u.ID, service.CreateRequest{
		Name:  req.ProjectName,
		Tasks: tasks,
		Length: service.ProjectLength{
			Days:  req.ProjectLength.Days,
			Hours: req.ProjectLength.Hours,
		},
	})
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	location := fmt.Sprintf("/api/projects/%d", p.ID)
	c.Header("Location", location)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": p.ID, "message": "project created successfully"})
}

func (h *Handler) get(c *gin.Context) {
	projectID, err := pathID(c, "projectId")
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	view, err := h.svc.Get(c.Request.Context(), projectID, viewer(c))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) castVote(c *gin.Context) {
	projectID, err := pathID(c, "projectId")
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	var req voteReq
	if err := c.ShouldBindJSON(&req); err != nil || req.TaskID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	u := auth.FromContext(c)
	view, err := h.svc.CastVote(c.Request.Context(), projectID, req.TaskID, service.Viewer{ID: u.ID})
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
