package domain

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusRejected  RunStatus = "REJECTED"
	RunStatusFailed    RunStatus = "FAILED"
)

// PipelineRun records one execution of the batch training pipeline,
// from ingestion through (optional) promotion.
type PipelineRun struct {
	ID          uuid.UUID              `json:"id"`
	StartedAt   time.Time              `json:"started_at"`
	FinishedAt  *time.Time             `json:"finished_at"`
	Status      RunStatus              `json:"status"`
	ArtifactDir string                 `json:"artifact_dir"`
	Metrics     *ClassificationMetrics `json:"metrics,omitempty"`
	Accepted    bool                   `json:"accepted"`
	ModelURI    string                 `json:"model_uri,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// ModelVersion is one promoted (or candidate) classifier tracked by the
// run registry.
type ModelVersion struct {
	ID        uuid.UUID `json:"id"`
	RunID     uuid.UUID `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	URI       string    `json:"uri"`
	Accuracy  float64   `json:"accuracy"`
	Promoted  bool      `json:"promoted"`
}
