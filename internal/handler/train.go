package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/dto"
)

// Train kicks off a pipeline run in the background and answers with the
// run record while the stages execute.
func (h *Handler) Train(c *gin.Context) {
	run, err := h.runner.Start(c.Request.Context())
	if err != nil {
		log.WithError(err).Warn("could not start training run")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToRunResponse(run))
}
