package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/config"
	"lead-scoring-service/internal/handler"
	"lead-scoring-service/internal/ingest"
	"lead-scoring-service/internal/middleware"
	"lead-scoring-service/internal/modelstore"
	"lead-scoring-service/internal/pipeline"
	"lead-scoring-service/internal/predict"
	"lead-scoring-service/internal/registry"
	"lead-scoring-service/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	sch, err := schema.Load(cfg.Pipeline.SchemaPath)
	if err != nil {
		log.Fatalf("load schema: %v", err)
	}

	// Run registry (optional, Postgres backed)
	var (
		reg  registry.RunRegistry = registry.NoopRegistry{}
		pool *pgxpool.Pool
	)
	if cfg.Database.Enabled {
		poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
		if err != nil {
			log.Fatalf("parse db config: %v", err)
		}
		poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
		poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
		poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

		pool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
		if err != nil {
			log.Fatalf("create db pool: %v", err)
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			log.Fatalf("ping db: %v", err)
		}
		reg = registry.NewPostgresRegistry(pool)
		log.Info("run registry database connected")
	} else {
		log.Info("run registry database disabled")
	}

	// Model store (S3 or local filesystem)
	var (
		store    modelstore.Store
		modelURI string
	)
	if cfg.S3.Enabled {
		s3Store, err := modelstore.NewS3Store(context.Background(), cfg.S3)
		if err != nil {
			log.Fatalf("init s3 model store: %v", err)
		}
		store = s3Store
		modelURI = fmt.Sprintf("s3://%s/%s", cfg.S3.Bucket, cfg.S3.ModelKey)
		log.WithField("bucket", cfg.S3.Bucket).Info("s3 model store initialized")
	} else {
		path := filepath.Join(cfg.Pipeline.ArtifactRoot, "promoted", "model.json")
		store = &modelstore.FSStore{Path: path}
		modelURI = "file://" + path
		log.WithField("path", path).Info("filesystem model store initialized")
	}

	source := ingest.NewMongoSource(cfg.Mongo, sch)
	runner := pipeline.NewRunner(cfg.Pipeline, sch, source, store, reg, modelURI)
	predictor := predict.NewService(store, modelURI)
	runner.OnPromoted = predictor.Invalidate

	h := handler.New(predictor, runner, registry.NewRunService(reg))
	if pool != nil {
		h.DBPing = pool.Ping
	}

	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())
	router.LoadHTMLGlob(filepath.Join(cfg.Server.TemplatesDir, "*.html"))
	h.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
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
