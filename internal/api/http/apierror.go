package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivoka/taskvote-backend/internal/polls/domain"
)

// WriteError translates a domain error into the HTTP response. Domain errors
// propagate unmodified from the point of detection to here; anything
// unclassified is a server fault and its detail stays out of the body.
func WriteError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": ve.Msg})
		return
	}

	var nfe *domain.NotFoundError
	if errors.As(err, &nfe) {
		c.JSON(http.StatusNotFound, gin.H{
			"ok":       false,
			"error":    nfe.Error(),
			"resource": nfe.Resource,
			"field":    nfe.Field,
		})
		return
	}

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": ce.Error()})
		return
	}

	slog.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
}
