// Package predict serves lead scores from the currently promoted model.
package predict

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/domain"
	"lead-scoring-service/internal/modelstore"
	"lead-scoring-service/internal/train"
)

// Service caches the promoted model from the store and scores lead
// profiles with it. Invalidate drops the cache after a promotion so the
// next request loads the new model.
type Service struct {
	store modelstore.Store
	uri   string

	mu    sync.RWMutex
	model *train.Model
}

func NewService(store modelstore.Store, uri string) *Service {
	return &Service{store: store, uri: uri}
}

// ModelInfo describes the model currently serving predictions.
type ModelInfo struct {
	URI       string
	TrainedAt time.Time
	Columns   []string
}

// Predict scores one lead. Returns domain.ErrModelNotFound until a model
// has been promoted.
func (s *Service) Predict(ctx context.Context, lead domain.LeadProfile) (*domain.Prediction, error) {
	model, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	row, err := model.Preprocessor.ApplyRow(lead.Features())
	if err != nil {
		return nil, err
	}

	probability := model.Score(row)
	response := 0
	if probability >= 0.5 {
		response = 1
	}
	return &domain.Prediction{Response: response, Probability: probability}, nil
}

// Info reports the model serving predictions, loading it from the store
// when nothing is cached yet. Returns domain.ErrModelNotFound until a
// model has been promoted.
func (s *Service) Info(ctx context.Context) (*ModelInfo, error) {
	model, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &ModelInfo{
		URI:       s.uri,
		TrainedAt: model.TrainedAt,
		Columns:   append([]string(nil), model.Columns...),
	}, nil
}

// Invalidate drops the cached model.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.model = nil
	s.mu.Unlock()
	log.Debug("prediction model cache invalidated")
}

// Loaded reports whether a model is currently cached.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

func (s *Service) load(ctx context.Context) (*train.Model, error) {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()
	if model != nil {
		return model, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		return s.model, nil
	}

	exists, err := s.store.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check promoted model: %w", err)
	}
	if !exists {
		return nil, domain.ErrModelNotFound
	}

	raw, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch promoted model: %w", err)
	}
	model, err = train.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode promoted model: %w", err)
	}
	if model.Preprocessor == nil {
		return nil, fmt.Errorf("promoted model carries no preprocessor")
	}

	s.model = model
	log.WithField("columns", len(model.Columns)).Info("promoted model loaded")
	return model, nil
}
