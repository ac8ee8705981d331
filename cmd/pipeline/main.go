// Command pipeline runs one training pipeline execution from the command
// line: ingest, validate, transform, train, evaluate and, when the
// candidate wins, promote.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lead-scoring-service/internal/config"
	"lead-scoring-service/internal/domain"
	"lead-scoring-service/internal/ingest"
	"lead-scoring-service/internal/modelstore"
	"lead-scoring-service/internal/pipeline"
	"lead-scoring-service/internal/registry"
	"lead-scoring-service/internal/schema"
)

const ErrExitCode = 1

func main() {
	if err := NewPipelineCmd().Execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(ErrExitCode)
	}
}

func NewPipelineCmd() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "run the lead scoring training pipeline once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()

			initLogger(cfg)
			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Pipeline.ArtifactRoot, "artifact-root", cfg.Pipeline.ArtifactRoot, "artifact output directory")
	flags.StringVar(&cfg.Pipeline.SchemaPath, "schema", cfg.Pipeline.SchemaPath, "dataset schema file")
	flags.Float64Var(&cfg.Pipeline.TestSize, "test-size", cfg.Pipeline.TestSize, "test split fraction")
	flags.Int64Var(&cfg.Pipeline.Seed, "seed", cfg.Pipeline.Seed, "random seed")
	flags.Float64Var(&cfg.Pipeline.AccuracyThreshold, "accuracy-threshold", cfg.Pipeline.AccuracyThreshold, "minimum test accuracy")
	flags.IntVar(&cfg.Pipeline.Epochs, "epochs", cfg.Pipeline.Epochs, "training epochs")
	flags.Float64Var(&cfg.Pipeline.LearningRate, "learning-rate", cfg.Pipeline.LearningRate, "gradient descent step size")
	flags.StringVar(&cfg.Mongo.URI, "mongo-uri", cfg.Mongo.URI, "mongodb connection string")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	sch, err := schema.Load(cfg.Pipeline.SchemaPath)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	var reg registry.RunRegistry = registry.NoopRegistry{}
	if cfg.Database.Enabled {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("create db pool: %w", err)
		}
		defer pool.Close()
		reg = registry.NewPostgresRegistry(pool)
	}

	var (
		store    modelstore.Store
		modelURI string
	)
	if cfg.S3.Enabled {
		s3Store, err := modelstore.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("init s3 model store: %w", err)
		}
		store = s3Store
		modelURI = fmt.Sprintf("s3://%s/%s", cfg.S3.Bucket, cfg.S3.ModelKey)
	} else {
		path := filepath.Join(cfg.Pipeline.ArtifactRoot, "promoted", "model.json")
		store = &modelstore.FSStore{Path: path}
		modelURI = "file://" + path
	}

	source := ingest.NewMongoSource(cfg.Mongo, sch)
	runner := pipeline.NewRunner(cfg.Pipeline, sch, source, store, reg, modelURI)

	run, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrModelRejected) || errors.Is(err, domain.ErrBelowThreshold) {
			log.WithField("run_id", run.ID).Warn("run finished without promoting a model")
			return nil
		}
		return err
	}

	log.WithFields(log.Fields{
		"run_id":    run.ID,
		"model_uri": run.ModelURI,
		"accuracy":  run.Metrics.Accuracy,
	}).Info("model promoted")
	return nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
