// Package train fits the lead-scoring classifier and computes its
// evaluation metrics. The model is a logistic regression trained with
// batch gradient descent on gonum matrices; together with the fitted
// preprocessor it forms the serveable artifact.
package train

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"lead-scoring-service/internal/transform"
)

type Options struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         int64
}

// Model is the persisted classifier: weights plus the preprocessor that
// produced its input space.
type Model struct {
	Weights      []float64               `json:"weights"`
	Bias         float64                 `json:"bias"`
	Columns      []string                `json:"columns"`
	Preprocessor *transform.Preprocessor `json:"preprocessor"`
	TrainedAt    time.Time               `json:"trained_at"`
}

// Fit trains a logistic regression on the given feature rows. Weight
// initialization and the descent itself are deterministic under the seed.
func Fit(features [][]float64, labels []float64, columns []string, opts Options) (*Model, error) {
	n := len(features)
	if n == 0 {
		return nil, fmt.Errorf("no training rows")
	}
	if len(labels) != n {
		return nil, fmt.Errorf("got %d labels for %d rows", len(labels), n)
	}
	d := len(features[0])
	if d == 0 {
		return nil, fmt.Errorf("no feature columns")
	}

	flat := make([]float64, 0, n*d)
	for _, row := range features {
		if len(row) != d {
			return nil, fmt.Errorf("ragged feature rows: %d vs %d", len(row), d)
		}
		flat = append(flat, row...)
	}
	x := mat.NewDense(n, d, flat)
	y := mat.NewVecDense(n, append([]float64(nil), labels...))

	rng := rand.New(rand.NewSource(opts.Seed))
	init := make([]float64, d)
	for i := range init {
		init[i] = (rng.Float64() - 0.5) * 0.01
	}
	w := mat.NewVecDense(d, init)
	bias := 0.0

	z := mat.NewVecDense(n, nil)
	diff := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		z.MulVec(x, w)

		biasGrad := 0.0
		for i := 0; i < n; i++ {
			p := sigmoid(z.AtVec(i) + bias)
			diff.SetVec(i, p-y.AtVec(i))
			biasGrad += p - y.AtVec(i)
		}

		grad.MulVec(x.T(), diff)
		grad.ScaleVec(1/float64(n), grad)
		grad.AddScaledVec(grad, opts.L2, w)

		w.AddScaledVec(w, -opts.LearningRate, grad)
		bias -= opts.LearningRate * biasGrad / float64(n)
	}

	return &Model{
		Weights:   w.RawVector().Data,
		Bias:      bias,
		Columns:   append([]string(nil), columns...),
		TrainedAt: time.Now().UTC(),
	}, nil
}

// Score returns the positive-class probability for an already
// preprocessed feature vector.
func (m *Model) Score(features []float64) float64 {
	z := m.Bias
	for i, w := range m.Weights {
		z += w * features[i]
	}
	return sigmoid(z)
}

// Predict thresholds Score at 0.5.
func (m *Model) Predict(features []float64) int {
	if m.Score(features) >= 0.5 {
		return 1
	}
	return 0
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return Decode(raw)
}

// Decode parses a model serialized by Save.
func Decode(raw []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("model carries no weights")
	}
	return &m, nil
}
