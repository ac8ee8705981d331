// Package pipeline chains the training stages into one run: ingestion,
// validation, transformation, training, evaluation and promotion. Each
// run writes its artifacts under a timestamped directory and is recorded
// in the run registry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/config"
	"lead-scoring-service/internal/deploy"
	"lead-scoring-service/internal/domain"
	"lead-scoring-service/internal/evaluate"
	"lead-scoring-service/internal/ingest"
	"lead-scoring-service/internal/modelstore"
	"lead-scoring-service/internal/registry"
	"lead-scoring-service/internal/schema"
	"lead-scoring-service/internal/train"
	"lead-scoring-service/internal/transform"
	"lead-scoring-service/internal/validate"
)

const runDirLayout = "01_02_2006_15_04_05"

// Runner executes the training pipeline. At most one run is in flight at
// a time; Start returns domain.ErrRunInProgress otherwise.
type Runner struct {
	cfg      config.PipelineConfig
	schema   *schema.Schema
	source   ingest.Source
	store    modelstore.Store
	registry registry.RunRegistry
	modelURI string

	// OnPromoted is called after a run promotes a new model, so the
	// serving layer can drop its cached copy.
	OnPromoted func()

	mu      sync.Mutex
	running bool
}

func NewRunner(cfg config.PipelineConfig, sch *schema.Schema, source ingest.Source, store modelstore.Store, reg registry.RunRegistry, modelURI string) *Runner {
	return &Runner{
		cfg:      cfg,
		schema:   sch,
		source:   source,
		store:    store,
		registry: reg,
		modelURI: modelURI,
	}
}

func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) acquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	return true
}

func (r *Runner) release() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// Start launches a run in the background and returns its registry record
// while the stages are still executing.
func (r *Runner) Start(ctx context.Context) (*domain.PipelineRun, error) {
	if !r.acquire() {
		return nil, domain.ErrRunInProgress
	}

	run := r.newRun()
	if err := r.registry.CreateRun(ctx, run); err != nil {
		r.release()
		return nil, fmt.Errorf("record pipeline run: %w", err)
	}

	snapshot := *run
	go func() {
		defer r.release()
		r.execute(context.Background(), run)
	}()
	return &snapshot, nil
}

// Run executes the whole pipeline synchronously. The returned run carries
// the final status; err is non-nil only when the run did not succeed.
func (r *Runner) Run(ctx context.Context) (*domain.PipelineRun, error) {
	if !r.acquire() {
		return nil, domain.ErrRunInProgress
	}
	defer r.release()

	run := r.newRun()
	if err := r.registry.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record pipeline run: %w", err)
	}
	err := r.execute(ctx, run)
	return run, err
}

func (r *Runner) newRun() *domain.PipelineRun {
	now := time.Now().UTC()
	return &domain.PipelineRun{
		ID:        uuid.New(),
		StartedAt: now,
		Status:    domain.RunStatusRunning,
	}
}

func (r *Runner) execute(ctx context.Context, run *domain.PipelineRun) error {
	dir := filepath.Join(r.cfg.ArtifactRoot, run.StartedAt.Format(runDirLayout))
	run.ArtifactDir = dir

	logger := log.WithFields(log.Fields{"run_id": run.ID, "artifact_dir": dir})
	logger.Info("pipeline run started")

	err := r.stages(ctx, run, dir, logger)
	now := time.Now().UTC()
	run.FinishedAt = &now
	switch {
	case err == nil:
		run.Status = domain.RunStatusSucceeded
	case run.Status == domain.RunStatusRejected:
		run.Error = err.Error()
	default:
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()
	}

	if uerr := r.registry.UpdateRun(ctx, run); uerr != nil {
		logger.WithError(uerr).Error("failed to update run record")
	}

	if err != nil {
		logger.WithError(err).WithField("status", run.Status).Warn("pipeline run did not promote a model")
		return err
	}
	logger.WithField("model_uri", run.ModelURI).Info("pipeline run succeeded")
	return nil
}

func (r *Runner) stages(ctx context.Context, run *domain.PipelineRun, dir string, logger *log.Entry) error {
	ingested, err := ingest.NewStage(r.source, r.cfg.TestSize, r.cfg.Seed).Run(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingestion: %w", err)
	}
	logger.WithField("feature_store", ingested.FeatureStorePath).Info("ingestion complete")

	validated, err := validate.NewStage(r.schema).Run(ctx, dir, ingested)
	if err != nil {
		return fmt.Errorf("validation: %w", err)
	}
	if !validated.Status {
		return fmt.Errorf("%w: %s", domain.ErrValidationFailed, strings.Join(validated.Issues, "; "))
	}
	logger.Info("validation passed")

	transformed, err := transform.NewStage(r.schema, r.cfg.Seed).Run(ctx, dir, ingested)
	if err != nil {
		return fmt.Errorf("transformation: %w", err)
	}

	opts := train.Options{
		Epochs:       r.cfg.Epochs,
		LearningRate: r.cfg.LearningRate,
		L2:           r.cfg.L2,
		Seed:         r.cfg.Seed,
	}
	trained, err := train.NewStage(opts, r.cfg.AccuracyThreshold).Run(ctx, dir, transformed)
	if err != nil {
		if errors.Is(err, domain.ErrBelowThreshold) {
			run.Status = domain.RunStatusRejected
		}
		return fmt.Errorf("training: %w", err)
	}
	run.Metrics = &trained.Metrics
	logger.WithField("accuracy", trained.Metrics.Accuracy).Info("training complete")

	verdict, err := evaluate.NewStage(r.store).Run(ctx, dir, transformed, trained)
	if err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	if !verdict.Accepted {
		run.Status = domain.RunStatusRejected
		return fmt.Errorf("evaluation: %w: candidate %.4f <= promoted %.4f",
			domain.ErrModelRejected, verdict.CandidateAccuracy, verdict.PromotedAccuracy)
	}
	run.Accepted = true

	promoted, err := deploy.NewStage(r.store, r.modelURI).Run(ctx, trained)
	if err != nil {
		return fmt.Errorf("promotion: %w", err)
	}
	run.ModelURI = promoted.ModelURI

	version := &domain.ModelVersion{
		ID:        uuid.New(),
		RunID:     run.ID,
		CreatedAt: time.Now().UTC(),
		URI:       promoted.ModelURI,
		Accuracy:  trained.Metrics.Accuracy,
		Promoted:  true,
	}
	if err := r.registry.CreateModelVersion(ctx, version); err != nil {
		logger.WithError(err).Error("failed to record model version")
	}

	if r.OnPromoted != nil {
		r.OnPromoted()
	}
	return nil
}
