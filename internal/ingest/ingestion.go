package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/domain"
)

// Artifacts are the file paths the ingestion stage leaves behind.
type Artifacts struct {
	FeatureStorePath string `json:"feature_store_path"`
	TrainPath        string `json:"train_path"`
	TestPath         string `json:"test_path"`
}

type Stage struct {
	source   Source
	testSize float64
	seed     int64
}

func NewStage(source Source, testSize float64, seed int64) *Stage {
	return &Stage{source: source, testSize: testSize, seed: seed}
}

// Run exports the collection into <dir>/ingestion/feature_store/data.csv
// and writes the shuffled train/test split next to it.
func (s *Stage) Run(ctx context.Context, dir string) (*Artifacts, error) {
	table, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("export collection: %w", err)
	}
	if table.Len() == 0 {
		return nil, domain.ErrEmptyDataset
	}

	arts := &Artifacts{
		FeatureStorePath: filepath.Join(dir, "ingestion", "feature_store", "data.csv"),
		TrainPath:        filepath.Join(dir, "ingestion", "ingested", "train.csv"),
		TestPath:         filepath.Join(dir, "ingestion", "ingested", "test.csv"),
	}

	if err := table.WriteCSV(arts.FeatureStorePath); err != nil {
		return nil, fmt.Errorf("write feature store: %w", err)
	}

	train, test := table.Split(s.testSize, s.seed)
	if err := train.WriteCSV(arts.TrainPath); err != nil {
		return nil, fmt.Errorf("write train split: %w", err)
	}
	if err := test.WriteCSV(arts.TestPath); err != nil {
		return nil, fmt.Errorf("write test split: %w", err)
	}

	log.WithFields(log.Fields{
		"rows":  table.Len(),
		"train": train.Len(),
		"test":  test.Len(),
	}).Info("data ingestion finished")

	return arts, nil
}
