package transform

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/dataset"
	"lead-scoring-service/internal/ingest"
	"lead-scoring-service/internal/schema"
)

type Artifacts struct {
	PreprocessorPath string `json:"preprocessor_path"`
	TrainPath        string `json:"train_path"`
	TestPath         string `json:"test_path"`
}

type Stage struct {
	schema *schema.Schema
	seed   int64
}

func NewStage(s *schema.Schema, seed int64) *Stage {
	return &Stage{schema: s, seed: seed}
}

// Run fits the preprocessor on the training split, transforms both
// splits, oversamples the training matrix, and persists everything under
// <dir>/transformation/.
func (s *Stage) Run(_ context.Context, dir string, ingested *ingest.Artifacts) (*Artifacts, error) {
	train, err := dataset.ReadCSV(ingested.TrainPath)
	if err != nil {
		return nil, fmt.Errorf("read train split: %w", err)
	}
	test, err := dataset.ReadCSV(ingested.TestPath)
	if err != nil {
		return nil, fmt.Errorf("read test split: %w", err)
	}

	trainLabels, err := targetLabels(train, s.schema.Target)
	if err != nil {
		return nil, err
	}
	testLabels, err := targetLabels(test, s.schema.Target)
	if err != nil {
		return nil, err
	}
	train.Drop(s.schema.Target)
	test.Drop(s.schema.Target)

	p := New(s.schema)
	if err := p.Fit(train); err != nil {
		return nil, fmt.Errorf("fit preprocessor: %w", err)
	}

	trainM, err := labeled(p, train, trainLabels, s.schema.Target)
	if err != nil {
		return nil, fmt.Errorf("transform train split: %w", err)
	}
	testM, err := labeled(p, test, testLabels, s.schema.Target)
	if err != nil {
		return nil, fmt.Errorf("transform test split: %w", err)
	}

	before := trainM.Len()
	trainM = OversampleMinority(trainM, s.seed)
	log.WithFields(log.Fields{
		"rows":      before,
		"resampled": trainM.Len(),
	}).Info("training split balanced")

	arts := &Artifacts{
		PreprocessorPath: filepath.Join(dir, "transformation", "preprocessor.json"),
		TrainPath:        filepath.Join(dir, "transformation", "train.csv"),
		TestPath:         filepath.Join(dir, "transformation", "test.csv"),
	}
	if err := p.Save(arts.PreprocessorPath); err != nil {
		return nil, fmt.Errorf("save preprocessor: %w", err)
	}
	if err := trainM.WriteCSV(arts.TrainPath); err != nil {
		return nil, fmt.Errorf("write train matrix: %w", err)
	}
	if err := testM.WriteCSV(arts.TestPath); err != nil {
		return nil, fmt.Errorf("write test matrix: %w", err)
	}

	log.Info("data transformation finished")
	return arts, nil
}

func targetLabels(t *dataset.Table, target string) ([]float64, error) {
	labels, err := t.Float(target)
	if err != nil {
		return nil, fmt.Errorf("read target column: %w", err)
	}
	for i, v := range labels {
		if math.IsNaN(v) {
			labels[i] = 0
		}
	}
	return labels, nil
}

// labeled appends the label vector as the trailing column.
func labeled(p *Preprocessor, t *dataset.Table, labels []float64, target string) (*dataset.Matrix, error) {
	features, err := p.Transform(t)
	if err != nil {
		return nil, err
	}
	m := dataset.NewMatrix(append(append([]string(nil), features.Columns...), target))
	for i, row := range features.Rows {
		m.Rows = append(m.Rows, append(append([]float64(nil), row...), labels[i]))
	}
	return m, nil
}
