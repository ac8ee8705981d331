// Package dto carries the JSON request and response shapes of the HTTP
// API, kept separate from the domain types they are built from.
package dto

import (
	"time"

	"lead-scoring-service/internal/domain"
)

type PredictResponse struct {
	Response    int     `json:"response"`
	Probability float64 `json:"probability"`
	Label       string  `json:"label"`
}

func ToPredictResponse(p *domain.Prediction) PredictResponse {
	label := "Vehicle owner is unlikely to purchase insurance."
	if p.Response == 1 {
		label = "Vehicle owner is likely to purchase insurance!"
	}
	return PredictResponse{
		Response:    p.Response,
		Probability: p.Probability,
		Label:       label,
	}
}

type RunResponse struct {
	ID          string                        `json:"id"`
	StartedAt   time.Time                     `json:"started_at"`
	FinishedAt  *time.Time                    `json:"finished_at,omitempty"`
	Status      string                        `json:"status"`
	ArtifactDir string                        `json:"artifact_dir,omitempty"`
	Metrics     *domain.ClassificationMetrics `json:"metrics,omitempty"`
	Accepted    bool                          `json:"accepted"`
	ModelURI    string                        `json:"model_uri,omitempty"`
	Error       string                        `json:"error,omitempty"`
}

func ToRunResponse(r *domain.PipelineRun) RunResponse {
	return RunResponse{
		ID:          r.ID.String(),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Status:      string(r.Status),
		ArtifactDir: r.ArtifactDir,
		Metrics:     r.Metrics,
		Accepted:    r.Accepted,
		ModelURI:    r.ModelURI,
		Error:       r.Error,
	}
}

type ListRunsResponse struct {
	Items []RunResponse `json:"items"`
	Total int           `json:"total"`
}

// ModelInfoResponse describes the model currently serving predictions.
// Version carries the registry record when run history is enabled.
type ModelInfoResponse struct {
	URI       string         `json:"uri"`
	TrainedAt time.Time      `json:"trained_at"`
	Features  int            `json:"features"`
	Version   *ModelResponse `json:"version,omitempty"`
}

type ModelResponse struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	URI       string    `json:"uri"`
	Accuracy  float64   `json:"accuracy"`
	Promoted  bool      `json:"promoted"`
}

func ToModelResponse(v *domain.ModelVersion) ModelResponse {
	return ModelResponse{
		ID:        v.ID.String(),
		RunID:     v.RunID.String(),
		CreatedAt: v.CreatedAt,
		URI:       v.URI,
		Accuracy:  v.Accuracy,
		Promoted:  v.Promoted,
	}
}
