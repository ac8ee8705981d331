package evaluate

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-scoring-service/internal/dataset"
	"lead-scoring-service/internal/domain"
	"lead-scoring-service/internal/modelstore"
	"lead-scoring-service/internal/train"
	"lead-scoring-service/internal/transform"
)

// testMatrix flips the class at x=0 so a model with a positive weight and
// zero bias classifies it perfectly.
func testMatrix() *dataset.Matrix {
	m := dataset.NewMatrix([]string{"x", "Response"})
	m.Rows = [][]float64{
		{-2, 0}, {-1, 0}, {1, 1}, {2, 1},
	}
	return m
}

func setup(t *testing.T) (string, *transform.Artifacts, *train.Artifacts) {
	t.Helper()
	dir := t.TempDir()
	transformed := &transform.Artifacts{TestPath: filepath.Join(dir, "test.csv")}
	require.NoError(t, testMatrix().WriteCSV(transformed.TestPath))

	trained := &train.Artifacts{
		Metrics: domain.ClassificationMetrics{Accuracy: 0.75},
	}
	return dir, transformed, trained
}

func TestRunNoPromotedModel(t *testing.T) {
	dir, transformed, trained := setup(t)
	stage := NewStage(&modelstore.MemoryStore{})

	result, err := stage.Run(context.Background(), dir, transformed, trained)
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, 0.75, result.CandidateAccuracy)
	assert.Zero(t, result.PromotedAccuracy)
	assert.Equal(t, 0.75, result.Delta)
	assert.FileExists(t, result.ReportPath)
}

func TestRunPromotedModelWins(t *testing.T) {
	dir, transformed, trained := setup(t)

	// A perfect promoted model: weight 5, bias 0 on the flip-at-zero set.
	promoted := &train.Model{Weights: []float64{5}, Columns: []string{"x"}}
	raw, err := json.Marshal(promoted)
	require.NoError(t, err)

	store := &modelstore.MemoryStore{}
	require.NoError(t, store.Put(context.Background(), raw))

	result, err := NewStage(store).Run(context.Background(), dir, transformed, trained)
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, 1.0, result.PromotedAccuracy)
	assert.InDelta(t, -0.25, result.Delta, 1e-9)
}

func TestRunIncompatiblePromotedModel(t *testing.T) {
	dir, transformed, trained := setup(t)

	promoted := &train.Model{Weights: []float64{1, 2, 3}, Columns: []string{"a", "b", "c"}}
	raw, err := json.Marshal(promoted)
	require.NoError(t, err)

	store := &modelstore.MemoryStore{}
	require.NoError(t, store.Put(context.Background(), raw))

	result, err := NewStage(store).Run(context.Background(), dir, transformed, trained)
	require.NoError(t, err)

	// Feature-space mismatch degrades to the no-promoted-model case.
	assert.True(t, result.Accepted)
	assert.Zero(t, result.PromotedAccuracy)
}
