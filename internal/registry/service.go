package registry

import (
	"context"

	"github.com/google/uuid"

	"lead-scoring-service/internal/domain"
)

// RunService wraps a RunRegistry with input normalization for the HTTP layer.
type RunService struct {
	registry RunRegistry
}

func NewRunService(registry RunRegistry) *RunService {
	return &RunService{registry: registry}
}

func (s *RunService) Get(ctx context.Context, id uuid.UUID) (*domain.PipelineRun, error) {
	return s.registry.GetRun(ctx, id)
}

func (s *RunService) List(ctx context.Context, limit int) ([]*domain.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.registry.ListRuns(ctx, limit)
}

func (s *RunService) LatestPromoted(ctx context.Context) (*domain.ModelVersion, error) {
	return s.registry.LatestPromoted(ctx)
}
