// Package transform turns the validated string-typed splits into the
// numeric matrices the trainer consumes. The fitted preprocessor is
// persisted with the model so serving encodes leads exactly the way
// training did.
package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"lead-scoring-service/internal/dataset"
	"lead-scoring-service/internal/domain"
	"lead-scoring-service/internal/schema"
)

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Moments struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Preprocessor carries the schema's column directives plus everything
// fitted on the training split: one-hot category lists, scaling
// parameters, and the final feature column order.
type Preprocessor struct {
	Drop   []string                      `json:"drop"`
	Label  map[string]map[string]float64 `json:"label"`
	OneHot map[string][]string           `json:"one_hot"`
	Rename map[string]string             `json:"rename"`

	MinMax   map[string]Range   `json:"min_max"`
	Standard map[string]Moments `json:"standard"`

	// Columns is the fitted feature order, renamed, target excluded.
	Columns []string `json:"columns"`

	normalize   []string
	standardize []string
	oneHotCols  []string
}

func New(s *schema.Schema) *Preprocessor {
	return &Preprocessor{
		Drop:        append([]string(nil), s.DropFeatures...),
		Label:       s.LabelEncoding,
		OneHot:      map[string][]string{},
		Rename:      s.RenameFeatures,
		MinMax:      map[string]Range{},
		Standard:    map[string]Moments{},
		normalize:   append([]string(nil), s.NormalizationFeatures...),
		standardize: append([]string(nil), s.StandardizationFeatures...),
		oneHotCols:  append([]string(nil), s.OneHotFeatures...),
	}
}

// Fit learns one-hot categories and scaling parameters from the training
// split. The table must not contain the target column.
func (p *Preprocessor) Fit(train *dataset.Table) error {
	for _, col := range p.oneHotCols {
		values, err := train.Column(col)
		if err != nil {
			return fmt.Errorf("fit one-hot: %w", err)
		}
		seen := map[string]bool{}
		var categories []string
		for _, v := range values {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			categories = append(categories, v)
		}
		sort.Strings(categories)
		p.OneHot[col] = categories
	}

	encoded, err := p.encode(train)
	if err != nil {
		return err
	}
	p.Columns = append([]string(nil), encoded.Columns...)

	for _, col := range p.finalNames(p.normalize) {
		vals, err := numericColumn(encoded, col)
		if err != nil {
			return fmt.Errorf("fit normalizer: %w", err)
		}
		p.MinMax[col] = Range{Min: floats.Min(vals), Max: floats.Max(vals)}
	}
	for _, col := range p.finalNames(p.standardize) {
		vals, err := numericColumn(encoded, col)
		if err != nil {
			return fmt.Errorf("fit standardizer: %w", err)
		}
		mean, std := stat.MeanStdDev(vals, nil)
		p.Standard[col] = Moments{Mean: mean, Std: std}
	}
	return nil
}

// Transform encodes and scales a table into the fitted column space.
func (p *Preprocessor) Transform(t *dataset.Table) (*dataset.Matrix, error) {
	if p.Columns == nil {
		return nil, fmt.Errorf("preprocessor is not fitted")
	}
	encoded, err := p.encode(t)
	if err != nil {
		return nil, err
	}

	cols := make([][]float64, len(p.Columns))
	for i, name := range p.Columns {
		vals, err := numericColumn(encoded, name)
		if err != nil {
			return nil, err
		}
		for j, v := range vals {
			vals[j] = p.scale(name, v)
		}
		cols[i] = vals
	}

	m := dataset.NewMatrix(p.Columns)
	for i := 0; i < encoded.Len(); i++ {
		row := make([]float64, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		m.Rows = append(m.Rows, row)
	}
	return m, nil
}

// ApplyRow scales an already-encoded feature map into the model's input
// vector. Serving uses this path: the lead form supplies encoded values.
func (p *Preprocessor) ApplyRow(features map[string]float64) ([]float64, error) {
	out := make([]float64, len(p.Columns))
	for i, name := range p.Columns {
		v, ok := features[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingFeature, name)
		}
		out[i] = p.scale(name, v)
	}
	return out, nil
}

// encode applies drop, label encoding, one-hot expansion and renames.
func (p *Preprocessor) encode(t *dataset.Table) (*dataset.Table, error) {
	tt := t.Clone()
	tt.Drop(p.Drop...)

	for col, mapping := range p.Label {
		idx := tt.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		for _, row := range tt.Rows {
			code := mapping[row[idx]] // unknown or missing values code as 0
			row[idx] = strconv.FormatFloat(code, 'g', -1, 64)
		}
	}

	// Iterate the fitted map, not the schema directive list, so a
	// preprocessor loaded from JSON still expands one-hot columns.
	oneHotKeys := make([]string, 0, len(p.OneHot))
	for col := range p.OneHot {
		oneHotKeys = append(oneHotKeys, col)
	}
	sort.Strings(oneHotKeys)

	for _, col := range oneHotKeys {
		categories := p.OneHot[col]
		idx := tt.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		for _, cat := range categories {
			name := col + "_" + cat
			tt.Columns = append(tt.Columns, name)
			for i, row := range tt.Rows {
				cell := "0"
				if row[idx] == cat {
					cell = "1"
				}
				tt.Rows[i] = append(row, cell)
			}
		}
		tt.Drop(col)
	}

	tt.Rename(p.Rename)
	return tt, nil
}

func (p *Preprocessor) scale(col string, v float64) float64 {
	if r, ok := p.MinMax[col]; ok {
		if r.Max == r.Min {
			return 0
		}
		return (v - r.Min) / (r.Max - r.Min)
	}
	if m, ok := p.Standard[col]; ok {
		if m.Std == 0 {
			return 0
		}
		return (v - m.Mean) / m.Std
	}
	return v
}

// finalNames maps schema column names through the rename table so scaling
// parameters are keyed by the names the model actually sees.
func (p *Preprocessor) finalNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		if renamed, ok := p.Rename[n]; ok {
			n = renamed
		}
		out[i] = n
	}
	return out
}

// numericColumn parses a column as floats with missing cells imputed to 0.
func numericColumn(t *dataset.Table, name string) ([]float64, error) {
	vals, err := t.Float(name)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = 0
		}
	}
	return vals, nil
}

func (p *Preprocessor) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create preprocessor dir: %w", err)
	}
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preprocessor: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func LoadPreprocessor(path string) (*Preprocessor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preprocessor: %w", err)
	}
	var p Preprocessor
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse preprocessor: %w", err)
	}
	return &p, nil
}
