package train

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsKnownConfusion(t *testing.T) {
	labels := []float64{1, 1, 0, 0}
	probs := []float64{0.9, 0.4, 0.6, 0.1}
	// Predictions: 1, 0, 1, 0 -> tp=1 fn=1 fp=1 tn=1.

	m := Metrics(labels, probs)
	assert.InDelta(t, 0.5, m.Accuracy, 1e-9)
	assert.InDelta(t, 0.5, m.Precision, 1e-9)
	assert.InDelta(t, 0.5, m.Recall, 1e-9)
	assert.InDelta(t, 0.5, m.F1, 1e-9)

	wantLogLoss := -(math.Log(0.9) + math.Log(0.4)) / 2
	assert.InDelta(t, wantLogLoss, m.LogLoss, 1e-9)

	// Positive beats negative in 3 of 4 cross pairs.
	assert.InDelta(t, 0.75, m.ROCAUC, 1e-9)
}

func TestMetricsPerfectRanking(t *testing.T) {
	labels := []float64{0, 0, 1, 1}
	probs := []float64{0.1, 0.2, 0.8, 0.9}

	m := Metrics(labels, probs)
	assert.InDelta(t, 1.0, m.Accuracy, 1e-9)
	assert.InDelta(t, 1.0, m.F1, 1e-9)
	assert.InDelta(t, 1.0, m.ROCAUC, 1e-9)
}

func TestROCAUCTies(t *testing.T) {
	labels := []float64{0, 1, 0, 1}
	probs := []float64{0.5, 0.5, 0.5, 0.5}
	assert.InDelta(t, 0.5, rocAUC(labels, probs), 1e-9)
}

func TestROCAUCSingleClass(t *testing.T) {
	assert.InDelta(t, 0.5, rocAUC([]float64{1, 1}, []float64{0.3, 0.7}), 1e-9)
}

func TestMetricsDegenerate(t *testing.T) {
	// All-negative predictions: precision and F1 stay defined at 0.
	m := Metrics([]float64{1, 0}, []float64{0.1, 0.2})
	assert.InDelta(t, 0.5, m.Accuracy, 1e-9)
	assert.Zero(t, m.Precision)
	assert.Zero(t, m.Recall)
	assert.Zero(t, m.F1)
}
