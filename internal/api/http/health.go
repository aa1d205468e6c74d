package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = time.Second

// Pinger is the slice of the database pool the health endpoint needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	OK        bool      `json:"ok"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db"`
	CheckedAt time.Time `json:"checkedAt"`
}

type HealthHandler struct {
	service string
	version string
	db      Pinger
}

func NewHealthHandler(service, version string, db Pinger) *HealthHandler {
	return &HealthHandler{service: service, version: version, db: db}
}

// check pings the database with a short deadline so a stuck pool cannot
// hold probe requests open. The endpoint stays 200 with db "down" rather
// than failing outright; orchestrators read the body, not just the code.
func (h *HealthHandler) check(c *gin.Context) {
	status := HealthStatus{
		OK:        true,
		Service:   h.service,
		Version:   h.version,
		DB:        "up",
		CheckedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		status.DB = "down"
	}

	c.JSON(http.StatusOK, status)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.check)
	r.GET("/healthz", h.check)
}
