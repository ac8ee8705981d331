package validate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-scoring-service/internal/dataset"
	"lead-scoring-service/internal/ingest"
	"lead-scoring-service/internal/schema"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		Features:            []string{"Age", "Gender", "Response"},
		NumericalFeatures:   []string{"Age"},
		CategoricalFeatures: []string{"Gender"},
		Target:              "Response",
	}
}

func writeSplit(t *testing.T, dir, name string, columns []string) string {
	t.Helper()
	tbl := dataset.NewTable(columns)
	row := make([]string, len(columns))
	for i := range row {
		row[i] = "1"
	}
	tbl.Rows = [][]string{row}
	path := filepath.Join(dir, name)
	require.NoError(t, tbl.WriteCSV(path))
	return path
}

func TestRunPasses(t *testing.T) {
	dir := t.TempDir()
	ingested := &ingest.Artifacts{
		TrainPath: writeSplit(t, dir, "train.csv", []string{"Age", "Gender", "Response"}),
		TestPath:  writeSplit(t, dir, "test.csv", []string{"Age", "Gender", "Response"}),
	}

	arts, err := NewStage(testSchema()).Run(context.Background(), dir, ingested)
	require.NoError(t, err)
	assert.True(t, arts.Status)
	assert.Empty(t, arts.Issues)

	raw, err := os.ReadFile(arts.ReportPath)
	require.NoError(t, err)
	var report Report
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.True(t, report.Status)
}

func TestRunFlagsMissingFeatures(t *testing.T) {
	dir := t.TempDir()
	ingested := &ingest.Artifacts{
		TrainPath: writeSplit(t, dir, "train.csv", []string{"Age", "Response"}),
		TestPath:  writeSplit(t, dir, "test.csv", []string{"Age", "Gender", "Response"}),
	}

	arts, err := NewStage(testSchema()).Run(context.Background(), dir, ingested)
	require.NoError(t, err)
	assert.False(t, arts.Status)
	// Column count mismatch plus the missing categorical feature.
	assert.Len(t, arts.Issues, 2)
	assert.Contains(t, arts.Issues[0], "expected 3 features")
	assert.Contains(t, arts.Issues[1], `missing categorical feature "Gender"`)
}
