package dataset

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	t := NewTable([]string{"id", "Age", "Gender"})
	t.Rows = [][]string{
		{"1", "25", "Male"},
		{"2", "31", "Female"},
		{"3", "47", "Male"},
		{"4", "52", "Female"},
		{"5", "19", "Male"},
	}
	return t
}

func TestTableColumnOps(t *testing.T) {
	tbl := sampleTable()

	col, err := tbl.Column("Age")
	require.NoError(t, err)
	assert.Equal(t, []string{"25", "31", "47", "52", "19"}, col)

	_, err = tbl.Column("Missing")
	assert.Error(t, err)

	tbl.Drop("id")
	assert.Equal(t, []string{"Age", "Gender"}, tbl.Columns)
	assert.Equal(t, []string{"25", "Male"}, tbl.Rows[0])

	tbl.Rename(map[string]string{"Gender": "Sex"})
	assert.Equal(t, []string{"Age", "Sex"}, tbl.Columns)
}

func TestTableFloat(t *testing.T) {
	tbl := NewTable([]string{"x"})
	tbl.Rows = [][]string{{"1.5"}, {""}, {"3"}}

	vals, err := tbl.Float("x")
	require.NoError(t, err)
	assert.Equal(t, 1.5, vals[0])
	assert.True(t, math.IsNaN(vals[1]))
	assert.Equal(t, 3.0, vals[2])

	tbl.Rows = append(tbl.Rows, []string{"oops"})
	_, err = tbl.Float("x")
	assert.Error(t, err)
}

func TestTableSplitDeterministic(t *testing.T) {
	tbl := sampleTable()

	train1, test1 := tbl.Split(0.4, 42)
	train2, test2 := tbl.Split(0.4, 42)

	assert.Equal(t, 2, test1.Len())
	assert.Equal(t, 3, train1.Len())
	assert.Equal(t, train1.Rows, train2.Rows)
	assert.Equal(t, test1.Rows, test2.Rows)

	// All rows survive the split exactly once.
	seen := map[string]bool{}
	for _, row := range append(train1.Rows, test1.Rows...) {
		seen[row[0]] = true
	}
	assert.Len(t, seen, 5)
}

func TestTableCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "data.csv")

	tbl := sampleTable()
	require.NoError(t, tbl.WriteCSV(path))

	loaded, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, loaded.Columns)
	assert.Equal(t, tbl.Rows, loaded.Rows)
}

func TestMatrixCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.csv")

	m := NewMatrix([]string{"a", "b", "label"})
	require.NoError(t, m.Append([]float64{0.25, -1.5, 1}))
	require.NoError(t, m.Append([]float64{3.75, 2.125, 0}))

	require.NoError(t, m.WriteCSV(path))
	loaded, err := ReadMatrixCSV(path)
	require.NoError(t, err)
	assert.Equal(t, m.Columns, loaded.Columns)
	assert.Equal(t, m.Rows, loaded.Rows)

	features, labels := loaded.FeaturesLabels()
	assert.Equal(t, []float64{0.25, -1.5}, features[0])
	assert.Equal(t, []float64{1, 0}, labels)
	assert.Equal(t, []string{"a", "b"}, loaded.FeatureColumns())
}
