package train

import (
	"math"
	"sort"

	"lead-scoring-service/internal/domain"
)

// Metrics computes the classification report from true labels and
// predicted positive-class probabilities. Predictions threshold at 0.5.
func Metrics(labels, probs []float64) domain.ClassificationMetrics {
	var tp, fp, tn, fn float64
	for i, p := range probs {
		predicted := p >= 0.5
		actual := labels[i] == 1
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && actual:
			fn++
		default:
			tn++
		}
	}

	total := float64(len(labels))
	m := domain.ClassificationMetrics{}
	if total > 0 {
		m.Accuracy = (tp + tn) / total
	}
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.LogLoss = logLoss(labels, probs)
	m.ROCAUC = rocAUC(labels, probs)
	return m
}

func logLoss(labels, probs []float64) float64 {
	const eps = 1e-15
	if len(labels) == 0 {
		return 0
	}
	var sum float64
	for i, p := range probs {
		p = math.Min(math.Max(p, eps), 1-eps)
		if labels[i] == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(len(labels))
}

// rocAUC is the Mann-Whitney rank statistic: the probability that a
// random positive scores above a random negative, ties counted half.
func rocAUC(labels, probs []float64) float64 {
	type pair struct{ p, y float64 }
	pairs := make([]pair, len(probs))
	for i := range probs {
		pairs[i] = pair{probs[i], labels[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].p < pairs[j].p })

	var nPos, nNeg, rankSum float64
	i := 0
	for i < len(pairs) {
		j := i
		for j < len(pairs) && pairs[j].p == pairs[i].p {
			j++
		}
		// Average rank across the tie group (1-based ranks).
		avgRank := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			if pairs[k].y == 1 {
				rankSum += avgRank
			}
		}
		i = j
	}
	for _, pr := range pairs {
		if pr.y == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0.5
	}
	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg)
}
