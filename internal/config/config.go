package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Mongo    MongoConfig
	Database DatabaseConfig
	S3       S3Config
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	TemplatesDir string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// DatabaseConfig is the Postgres run registry. The registry is optional:
// with Enabled=false the pipeline keeps no persistent run history.
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// S3Config is the model store. Endpoint and path style are configurable so
// MinIO and other S3-compatible backends work.
type S3Config struct {
	Enabled   bool
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	ModelKey  string
	PathStyle bool
}

type PipelineConfig struct {
	ArtifactRoot      string
	SchemaPath        string
	TestSize          float64
	Seed              int64
	AccuracyThreshold float64
	Epochs            int
	LearningRate      float64
	L2                float64
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_TEMPLATES_DIR", "web/templates")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "insurance")
	v.SetDefault("MONGO_COLLECTION", "leads")
	v.SetDefault("MONGO_TIMEOUT", "30s")

	v.SetDefault("DATABASE_ENABLED", false)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_NAME", "lead_scoring")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("S3_ENABLED", false)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "lead-models")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_MODEL_KEY", "model-registry/model.json")
	v.SetDefault("S3_PATH_STYLE", true)

	v.SetDefault("PIPELINE_ARTIFACT_ROOT", "artifacts")
	v.SetDefault("PIPELINE_SCHEMA_PATH", "config/schema.yaml")
	v.SetDefault("PIPELINE_TEST_SIZE", 0.2)
	v.SetDefault("PIPELINE_SEED", 42)
	v.SetDefault("PIPELINE_ACCURACY_THRESHOLD", 0.7)
	v.SetDefault("PIPELINE_EPOCHS", 500)
	v.SetDefault("PIPELINE_LEARNING_RATE", 0.1)
	v.SetDefault("PIPELINE_L2", 0.001)

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			TemplatesDir: v.GetString("SERVER_TEMPLATES_DIR"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Mongo: MongoConfig{
			URI:        v.GetString("MONGO_URI"),
			Database:   v.GetString("MONGO_DATABASE"),
			Collection: v.GetString("MONGO_COLLECTION"),
			Timeout:    v.GetDuration("MONGO_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DATABASE_ENABLED"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		S3: S3Config{
			Enabled:   v.GetBool("S3_ENABLED"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			Region:    v.GetString("S3_REGION"),
			Bucket:    v.GetString("S3_BUCKET"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			ModelKey:  v.GetString("S3_MODEL_KEY"),
			PathStyle: v.GetBool("S3_PATH_STYLE"),
		},
		Pipeline: PipelineConfig{
			ArtifactRoot:      v.GetString("PIPELINE_ARTIFACT_ROOT"),
			SchemaPath:        v.GetString("PIPELINE_SCHEMA_PATH"),
			TestSize:          v.GetFloat64("PIPELINE_TEST_SIZE"),
			Seed:              v.GetInt64("PIPELINE_SEED"),
			AccuracyThreshold: v.GetFloat64("PIPELINE_ACCURACY_THRESHOLD"),
			Epochs:            v.GetInt("PIPELINE_EPOCHS"),
			LearningRate:      v.GetFloat64("PIPELINE_LEARNING_RATE"),
			L2:                v.GetFloat64("PIPELINE_L2"),
		},
	}

	return cfg, nil
}
