package domain

import "errors"

// ============================================================================
// Pipeline Errors
// ============================================================================

var (
	ErrEmptyDataset        = errors.New("exported dataset is empty")
	ErrValidationFailed    = errors.New("dataset failed schema validation")
	ErrBelowThreshold      = errors.New("trained model accuracy below configured threshold")
	ErrModelRejected       = errors.New("trained model did not beat the promoted model")
	ErrRunInProgress       = errors.New("a pipeline run is already in progress")
	ErrRunNotFound         = errors.New("pipeline run not found")
	ErrModelNotFound       = errors.New("no promoted model available")
	ErrModelVersionMissing = errors.New("model version not found")
)

// ============================================================================
// Prediction Errors
// ============================================================================

var (
	ErrInvalidLead     = errors.New("lead profile is incomplete or malformed")
	ErrMissingFeature  = errors.New("lead profile is missing a model feature")
	ErrColumnNotFound  = errors.New("column not found in dataset")
	ErrColumnNotNumber = errors.New("column contains non-numeric values")
)
