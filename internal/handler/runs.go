package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/dto"
)

func (h *Handler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		log.WithError(err).Error("list runs failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.RunResponse, 0, len(runs))
	for _, r := range runs {
		items = append(items, dto.ToRunResponse(r))
	}
	c.JSON(http.StatusOK, dto.ListRunsResponse{Items: items, Total: len(items)})
}

func (h *Handler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.runs.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRunResponse(run))
}

// GetModel reports the model serving predictions. The registry version
// record is attached when run history is enabled; without it the
// response still describes the loaded model.
func (h *Handler) GetModel(c *gin.Context) {
	info, err := h.predictor.Info(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	resp := dto.ModelInfoResponse{
		URI:       info.URI,
		TrainedAt: info.TrainedAt,
		Features:  len(info.Columns),
	}
	if version, err := h.runs.LatestPromoted(c.Request.Context()); err == nil {
		v := dto.ToModelResponse(version)
		resp.Version = &v
	}
	c.JSON(http.StatusOK, resp)
}
