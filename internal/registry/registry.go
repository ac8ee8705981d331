// Package registry persists pipeline run history and promoted model
// versions. Postgres backs it in production; NoopRegistry stands in when
// the database integration is disabled.
package registry

import (
	"context"

	"github.com/google/uuid"

	"lead-scoring-service/internal/domain"
)

type RunRegistry interface {
	CreateRun(ctx context.Context, run *domain.PipelineRun) error
	UpdateRun(ctx context.Context, run *domain.PipelineRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*domain.PipelineRun, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.PipelineRun, error)
	CreateModelVersion(ctx context.Context, version *domain.ModelVersion) error
	LatestPromoted(ctx context.Context) (*domain.ModelVersion, error)
}

// NoopRegistry satisfies RunRegistry without persisting anything.
type NoopRegistry struct{}

func (NoopRegistry) CreateRun(context.Context, *domain.PipelineRun) error { return nil }
func (NoopRegistry) UpdateRun(context.Context, *domain.PipelineRun) error { return nil }

func (NoopRegistry) GetRun(context.Context, uuid.UUID) (*domain.PipelineRun, error) {
	return nil, domain.ErrRunNotFound
}

func (NoopRegistry) ListRuns(context.Context, int) ([]*domain.PipelineRun, error) {
	return []*domain.PipelineRun{}, nil
}

func (NoopRegistry) CreateModelVersion(context.Context, *domain.ModelVersion) error { return nil }

func (NoopRegistry) LatestPromoted(context.Context) (*domain.ModelVersion, error) {
	return nil, domain.ErrModelVersionMissing
}
