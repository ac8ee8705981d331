package transform

import (
	"math/rand"

	"lead-scoring-service/internal/dataset"
)

// OversampleMinority balances a labeled matrix (label in the last column)
// by duplicating randomly chosen minority-class rows until both classes
// have equal counts. Deterministic under the given seed.
func OversampleMinority(m *dataset.Matrix, seed int64) *dataset.Matrix {
	var pos, neg [][]float64
	label := len(m.Columns) - 1
	for _, row := range m.Rows {
		if row[label] == 1 {
			pos = append(pos, row)
		} else {
			neg = append(neg, row)
		}
	}

	minority, majority := pos, neg
	if len(neg) < len(pos) {
		minority, majority = neg, pos
	}
	if len(minority) == 0 || len(minority) == len(majority) {
		return m
	}

	out := dataset.NewMatrix(m.Columns)
	out.Rows = append(out.Rows, m.Rows...)

	rng := rand.New(rand.NewSource(seed))
	for i := len(minority); i < len(majority); i++ {
		src := minority[rng.Intn(len(minority))]
		out.Rows = append(out.Rows, append([]float64(nil), src...))
	}
	return out
}
