package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lead-scoring-service/internal/domain"
)

type postgresRegistry struct {
	pool *pgxpool.Pool
}

func NewPostgresRegistry(pool *pgxpool.Pool) RunRegistry {
	return &postgresRegistry{pool: pool}
}

func (r *postgresRegistry) CreateRun(ctx context.Context, run *domain.PipelineRun) error {
	query := `
		INSERT INTO pipeline_run
			(id, started_at, finished_at, status, artifact_dir, metrics, accepted, model_uri, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`
	metricsJSON, err := marshalMetrics(run.Metrics)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt, string(run.Status),
		run.ArtifactDir, metricsJSON, run.Accepted, run.ModelURI, run.Error,
	)
	if err != nil {
		return fmt.Errorf("create pipeline run: %w", err)
	}
	return nil
}

func (r *postgresRegistry) UpdateRun(ctx context.Context, run *domain.PipelineRun) error {
	query := `
		UPDATE pipeline_run
		SET finished_at=$1, status=$2, artifact_dir=$3, metrics=$4,
			accepted=$5, model_uri=$6, error=$7
		WHERE id=$8
	`
	metricsJSON, err := marshalMetrics(run.Metrics)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, query,
		run.FinishedAt, string(run.Status), run.ArtifactDir, metricsJSON,
		run.Accepted, run.ModelURI, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update pipeline run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

func (r *postgresRegistry) GetRun(ctx context.Context, id uuid.UUID) (*domain.PipelineRun, error) {
	query := `
		SELECT id, started_at, finished_at, status, artifact_dir, metrics, accepted, model_uri, error
		FROM pipeline_run
		WHERE id = $1
	`
	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("get pipeline run: %w", err)
	}
	return run, nil
}

func (r *postgresRegistry) ListRuns(ctx context.Context, limit int) ([]*domain.PipelineRun, error) {
	query := `
		SELECT id, started_at, finished_at, status, artifact_dir, metrics, accepted, model_uri, error
		FROM pipeline_run
		ORDER BY started_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	defer rows.Close()

	runs := []*domain.PipelineRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pipeline run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *postgresRegistry) CreateModelVersion(ctx context.Context, v *domain.ModelVersion) error {
	query := `
		INSERT INTO model_version (id, run_id, created_at, uri, accuracy, promoted)
		VALUES ($1,$2,$3,$4,$5,$6)
	`
	_, err := r.pool.Exec(ctx, query, v.ID, v.RunID, v.CreatedAt, v.URI, v.Accuracy, v.Promoted)
	if err != nil {
		return fmt.Errorf("create model version: %w", err)
	}
	return nil
}

func (r *postgresRegistry) LatestPromoted(ctx context.Context) (*domain.ModelVersion, error) {
	query := `
		SELECT id, run_id, created_at, uri, accuracy, promoted
		FROM model_version
		WHERE promoted
		ORDER BY created_at DESC
		LIMIT 1
	`
	var v domain.ModelVersion
	err := r.pool.QueryRow(ctx, query).Scan(
		&v.ID, &v.RunID, &v.CreatedAt, &v.URI, &v.Accuracy, &v.Promoted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrModelVersionMissing
		}
		return nil, fmt.Errorf("get latest promoted model: %w", err)
	}
	return &v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.PipelineRun, error) {
	var (
		run         domain.PipelineRun
		status      string
		metricsJSON []byte
	)
	err := row.Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &status,
		&run.ArtifactDir, &metricsJSON, &run.Accepted, &run.ModelURI, &run.Error,
	)
	if err != nil {
		return nil, err
	}
	run.Status = domain.RunStatus(status)
	if len(metricsJSON) > 0 {
		var m domain.ClassificationMetrics
		if err := json.Unmarshal(metricsJSON, &m); err != nil {
			return nil, fmt.Errorf("parse metrics json: %w", err)
		}
		run.Metrics = &m
	}
	return &run, nil
}

func marshalMetrics(m *domain.ClassificationMetrics) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}
	return raw, nil
}
