package domain

// ClassificationMetrics is the evaluation report computed on the held-out
// test split after training.
type ClassificationMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	LogLoss   float64 `json:"log_loss"`
	ROCAUC    float64 `json:"roc_auc"`
}
