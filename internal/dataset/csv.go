package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes the table with a header row, creating parent directories
// as needed.
func (t *Table) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads a table written by WriteCSV.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: no header row", path)
	}

	t := NewTable(records[0])
	t.Rows = records[1:]
	return t, nil
}

// WriteCSV persists the matrix with full float precision.
func (m *Matrix) WriteCSV(path string) error {
	t := NewTable(m.Columns)
	for _, row := range m.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t.WriteCSV(path)
}

// ReadMatrixCSV loads a matrix written by Matrix.WriteCSV.
func ReadMatrixCSV(path string) (*Matrix, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	m := NewMatrix(t.Columns)
	for _, row := range t.Rows {
		cells := make([]float64, len(row))
		for i, s := range row {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %s row %d: %w", path, len(m.Rows), err)
			}
			cells[i] = v
		}
		m.Rows = append(m.Rows, cells)
	}
	return m, nil
}
