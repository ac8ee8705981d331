// Package handler exposes the HTTP surface: the JSON API under /api/v1
// and the lead scoring web form.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"lead-scoring-service/internal/pipeline"
	"lead-scoring-service/internal/predict"
	"lead-scoring-service/internal/registry"
)

type Handler struct {
	predictor *predict.Service
	runner    *pipeline.Runner
	runs      *registry.RunService

	// DBPing, when set, is checked by the health endpoint.
	DBPing func(ctx context.Context) error
}

func New(predictor *predict.Service, runner *pipeline.Runner, runs *registry.RunService) *Handler {
	return &Handler{predictor: predictor, runner: runner, runs: runs}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	// Web form
	r.GET("/", h.Form)
	r.POST("/", h.FormPredict)

	api := r.Group("/api/v1")
	api.POST("/predict", h.Predict)
	api.POST("/train", h.Train)
	api.GET("/runs", h.ListRuns)
	api.GET("/runs/:id", h.GetRun)
	api.GET("/model", h.GetModel)
}
