package train

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/dataset"
	"lead-scoring-service/internal/domain"
	"lead-scoring-service/internal/transform"
)

type Artifacts struct {
	ModelPath   string                       `json:"model_path"`
	MetricsPath string                       `json:"metrics_path"`
	Metrics     domain.ClassificationMetrics `json:"metrics"`
}

type Stage struct {
	opts      Options
	threshold float64
}

func NewStage(opts Options, threshold float64) *Stage {
	return &Stage{opts: opts, threshold: threshold}
}

// Run trains on the transformed training matrix, scores the test matrix,
// gates on the accuracy threshold, and persists the model (with its
// preprocessor embedded) plus the metrics report.
func (s *Stage) Run(_ context.Context, dir string, transformed *transform.Artifacts) (*Artifacts, error) {
	trainM, err := dataset.ReadMatrixCSV(transformed.TrainPath)
	if err != nil {
		return nil, fmt.Errorf("read train matrix: %w", err)
	}
	testM, err := dataset.ReadMatrixCSV(transformed.TestPath)
	if err != nil {
		return nil, fmt.Errorf("read test matrix: %w", err)
	}

	features, labels := trainM.FeaturesLabels()
	model, err := Fit(features, labels, trainM.FeatureColumns(), s.opts)
	if err != nil {
		return nil, fmt.Errorf("fit classifier: %w", err)
	}

	preprocessor, err := transform.LoadPreprocessor(transformed.PreprocessorPath)
	if err != nil {
		return nil, fmt.Errorf("load preprocessor: %w", err)
	}
	model.Preprocessor = preprocessor

	testFeatures, testLabels := testM.FeaturesLabels()
	probs := make([]float64, len(testFeatures))
	for i, row := range testFeatures {
		probs[i] = model.Score(row)
	}
	metrics := Metrics(testLabels, probs)

	log.WithFields(log.Fields{
		"accuracy": metrics.Accuracy,
		"f1":       metrics.F1,
		"roc_auc":  metrics.ROCAUC,
	}).Info("classifier trained")

	if metrics.Accuracy < s.threshold {
		return nil, fmt.Errorf("%w: %.4f < %.4f",
			domain.ErrBelowThreshold, metrics.Accuracy, s.threshold)
	}

	arts := &Artifacts{
		ModelPath:   filepath.Join(dir, "training", "model.json"),
		MetricsPath: filepath.Join(dir, "training", "metrics.json"),
		Metrics:     metrics,
	}
	if err := model.Save(arts.ModelPath); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	if err := writeJSON(arts.MetricsPath, metrics); err != nil {
		return nil, fmt.Errorf("save metrics report: %w", err)
	}
	return arts, nil
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
