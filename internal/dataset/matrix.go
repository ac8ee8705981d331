package dataset

import "fmt"

// Matrix is a rectangular float-typed frame produced by the transformation
// stage. By convention the label occupies the last column.
type Matrix struct {
	Columns []string
	Rows    [][]float64
}

func NewMatrix(columns []string) *Matrix {
	return &Matrix{Columns: append([]string(nil), columns...)}
}

func (m *Matrix) Len() int { return len(m.Rows) }

func (m *Matrix) Append(row []float64) error {
	if len(row) != len(m.Columns) {
		return fmt.Errorf("append row: got %d cells, matrix has %d columns", len(row), len(m.Columns))
	}
	m.Rows = append(m.Rows, row)
	return nil
}

// FeaturesLabels splits the matrix into a feature slice-of-rows and the
// label vector taken from the last column.
func (m *Matrix) FeaturesLabels() (features [][]float64, labels []float64) {
	features = make([][]float64, len(m.Rows))
	labels = make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		features[i] = row[:len(row)-1]
		labels[i] = row[len(row)-1]
	}
	return features, labels
}

// FeatureColumns returns the column names excluding the trailing label.
func (m *Matrix) FeatureColumns() []string {
	if len(m.Columns) == 0 {
		return nil
	}
	return m.Columns[:len(m.Columns)-1]
}
