package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lead-scoring-service/internal/domain"
)

// MockRunRegistry is a mock of registry.RunRegistry.
type MockRunRegistry struct {
	mock.Mock
}

func (m *MockRunRegistry) CreateRun(ctx context.Context, run *domain.PipelineRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRegistry) UpdateRun(ctx context.Context, run *domain.PipelineRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRegistry) GetRun(ctx context.Context, id uuid.UUID) (*domain.PipelineRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineRun), args.Error(1)
}

func (m *MockRunRegistry) ListRuns(ctx context.Context, limit int) ([]*domain.PipelineRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PipelineRun), args.Error(1)
}

func (m *MockRunRegistry) CreateModelVersion(ctx context.Context, version *domain.ModelVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockRunRegistry) LatestPromoted(ctx context.Context) (*domain.ModelVersion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelVersion), args.Error(1)
}
