// Package evaluate compares the freshly trained classifier against the
// currently promoted one on the same held-out test matrix.
package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/dataset"
	"lead-scoring-service/internal/modelstore"
	"lead-scoring-service/internal/train"
	"lead-scoring-service/internal/transform"
)

// Result is the acceptance verdict persisted as the evaluation report.
type Result struct {
	Accepted          bool    `json:"accepted"`
	CandidateAccuracy float64 `json:"candidate_accuracy"`
	PromotedAccuracy  float64 `json:"promoted_accuracy"`
	Delta             float64 `json:"delta"`
	ReportPath        string  `json:"-"`
}

type Stage struct {
	store modelstore.Store
}

func NewStage(store modelstore.Store) *Stage {
	return &Stage{store: store}
}

// Run accepts the candidate iff it beats the promoted model's accuracy on
// the test matrix. A missing promoted model counts as accuracy 0, so the
// first successful run always promotes.
func (s *Stage) Run(ctx context.Context, dir string, transformed *transform.Artifacts, trained *train.Artifacts) (*Result, error) {
	testM, err := dataset.ReadMatrixCSV(transformed.TestPath)
	if err != nil {
		return nil, fmt.Errorf("read test matrix: %w", err)
	}

	promotedAccuracy, err := s.promotedAccuracy(ctx, testM)
	if err != nil {
		return nil, err
	}

	candidate := trained.Metrics.Accuracy
	result := &Result{
		Accepted:          candidate > promotedAccuracy,
		CandidateAccuracy: candidate,
		PromotedAccuracy:  promotedAccuracy,
		Delta:             candidate - promotedAccuracy,
		ReportPath:        filepath.Join(dir, "evaluation", "report.json"),
	}

	if err := writeJSON(result.ReportPath, result); err != nil {
		return nil, fmt.Errorf("save evaluation report: %w", err)
	}

	log.WithFields(log.Fields{
		"candidate": candidate,
		"promoted":  promotedAccuracy,
		"accepted":  result.Accepted,
	}).Info("model evaluated")

	return result, nil
}

// promotedAccuracy scores the promoted model on the test matrix, or 0
// when no model is promoted or it is incompatible with the current
// feature space.
func (s *Stage) promotedAccuracy(ctx context.Context, testM *dataset.Matrix) (float64, error) {
	exists, err := s.store.Exists(ctx)
	if err != nil {
		return 0, fmt.Errorf("check promoted model: %w", err)
	}
	if !exists {
		log.Info("no promoted model found, candidate competes against zero")
		return 0, nil
	}

	raw, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, modelstore.ErrNoModel) {
			return 0, nil
		}
		return 0, fmt.Errorf("fetch promoted model: %w", err)
	}
	promoted, err := train.Decode(raw)
	if err != nil {
		log.Warnf("promoted model is unreadable, treating as absent: %v", err)
		return 0, nil
	}

	features, labels := testM.FeaturesLabels()
	if len(features) > 0 && len(features[0]) != len(promoted.Weights) {
		log.Warnf("promoted model expects %d features, test matrix has %d; treating as absent",
			len(promoted.Weights), len(features[0]))
		return 0, nil
	}

	probs := make([]float64, len(features))
	for i, row := range features {
		probs[i] = promoted.Score(row)
	}
	return train.Metrics(labels, probs).Accuracy, nil
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
