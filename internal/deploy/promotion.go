// Package deploy promotes an accepted model into the model store, making
// it the serving model and the baseline for future runs.
package deploy

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/modelstore"
	"lead-scoring-service/internal/train"
)

type Artifacts struct {
	ModelURI string `json:"model_uri"`
}

type Stage struct {
	store modelstore.Store
	uri   string
}

// NewStage wires the promotion target. uri is informational (recorded in
// the run registry and API responses), the store decides actual placement.
func NewStage(store modelstore.Store, uri string) *Stage {
	return &Stage{store: store, uri: uri}
}

// Run uploads the trained model file to the store.
func (s *Stage) Run(ctx context.Context, trained *train.Artifacts) (*Artifacts, error) {
	if trained.ModelPath == "" {
		return nil, fmt.Errorf("no trained model path to promote")
	}

	raw, err := os.ReadFile(trained.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("read trained model: %w", err)
	}
	if err := s.store.Put(ctx, raw); err != nil {
		return nil, fmt.Errorf("promote model: %w", err)
	}

	log.WithField("uri", s.uri).Info("model promoted")
	return &Artifacts{ModelURI: s.uri}, nil
}
