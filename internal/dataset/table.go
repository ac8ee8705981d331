// Package dataset holds the in-memory tabular representations the pipeline
// stages pass between each other: a string-typed Table for raw ingested
// data and a float-typed Matrix for transformed training arrays. Both
// round-trip through CSV artifacts on disk.
package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"lead-scoring-service/internal/domain"
)

// Table is a rectangular string-typed frame. An empty cell means the value
// was missing in the source collection.
type Table struct {
	Columns []string
	Rows    [][]string
}

func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) Append(row []string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("append row: got %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrColumnNotFound, name)
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Float parses the named column as float64. Empty cells parse as NaN.
func (t *Table) Float(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col))
	for i, s := range col {
		if s == "" {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", domain.ErrColumnNotNumber, name, s)
		}
		out[i] = v
	}
	return out, nil
}

// Drop removes the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) {
	for _, name := range names {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			continue
		}
		t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
		for i, row := range t.Rows {
			t.Rows[i] = append(row[:idx], row[idx+1:]...)
		}
	}
}

// Rename applies the old->new column name mapping in place.
func (t *Table) Rename(mapping map[string]string) {
	for i, c := range t.Columns {
		if renamed, ok := mapping[c]; ok {
			t.Columns[i] = renamed
		}
	}
}

func (t *Table) Clone() *Table {
	out := NewTable(t.Columns)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Split shuffles the rows with the given seed and partitions them into
// train and test tables. The same seed always yields the same partition.
func (t *Table) Split(testFraction float64, seed int64) (train, test *Table) {
	n := len(t.Rows)
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	nTest := int(math.Round(float64(n) * testFraction))
	if nTest > n {
		nTest = n
	}

	train = NewTable(t.Columns)
	test = NewTable(t.Columns)
	for i, idx := range perm {
		row := append([]string(nil), t.Rows[idx]...)
		if i < nTest {
			test.Rows = append(test.Rows, row)
		} else {
			train.Rows = append(train.Rows, row)
		}
	}
	return train, test
}
