// Package ingest exports the lead collection from the document database
// into the run's feature store and splits it into train and test sets.
package ingest

import (
	"context"

	"lead-scoring-service/internal/dataset"
)

// Source produces the raw lead dataset. The production implementation
// reads a MongoDB collection; tests use MemorySource.
type Source interface {
	Fetch(ctx context.Context) (*dataset.Table, error)
}

// MemorySource serves a fixed table, for tests and local dry runs.
type MemorySource struct {
	Table *dataset.Table
}

func (s *MemorySource) Fetch(_ context.Context) (*dataset.Table, error) {
	return s.Table.Clone(), nil
}
