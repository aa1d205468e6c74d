package http

import "github.com/gin-gonic/gin"

// Register attaches poll routes to the given router group. requireUser must
// enforce the USER role; rateLimit caps vote casting and may be a no-op.
func (h *Handler) Register(rg *gin.RouterGroup, requireUser, rateLimit gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.POST("", requireUser, h.create)
	rg.GET("/:projectId", h.get)
	rg.POST("/:projectId/votes", requireUser, rateLimit, h.castVote)
}
