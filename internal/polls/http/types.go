package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ivoka/taskvote-backend/internal/auth"
	"github.com/ivoka/taskvote-backend/internal/polls/domain"
	"github.com/ivoka/taskvote-backend/internal/polls/service"
)

// Handler bundles the dependencies for poll HTTP endpoints.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type createProjectReq struct {
	ProjectName   string           `json:"projectName"`
	Tasks         []taskReq        `json:"tasks"`
	ProjectLength projectLengthReq `json:"projectLength"`
}

type taskReq struct {
	Text string `json:"text"`
}

type projectLengthReq struct {
	Days  int `json:"days"`
	Hours int `json:"hours"`
}

type voteReq struct {
	TaskID int64 `json:"taskId"`
}

// viewer converts the optional authenticated user into the service's viewer
// handle; nil means anonymous.
func viewer(c *gin.Context) *service.Viewer {
	u := auth.FromContext(c)
	if u == nil {
		return nil
	}
	return &service.Viewer{ID: u.ID}
}

// PageParams reads page/size query params with their defaults. Range checks
// happen in the service; this only rejects values that are not integers.
func PageParams(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(domain.DefaultPageNumber)))
	if err != nil {
		return 0, 0, domain.Validationf("page must be an integer")
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(domain.DefaultPageSize)))
	if err != nil {
		return 0, 0, domain.Validationf("size must be an integer")
	}
	return page, size, nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, domain.Validationf("%s must be an integer", name)
	}
	return id, nil
}
