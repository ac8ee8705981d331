package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	if h.DBPing != nil {
		if err := h.DBPing(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"model_loaded": h.predictor.Loaded(),
		"training":     h.runner.Running(),
	})
}
