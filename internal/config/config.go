// Package config defines the process configuration for the Bio-Twin services.
// Configuration is loaded once at startup and is immutable thereafter.
//
// Values are resolved in priority order:
//
//	OS Environment (Highest) -> Dotenv File -> SecretProvider references (Lowest)
//
// Any missing required value or invalid format fails startup.
package config

import (
	"time"

	"biotwin/internal/types"
)

// SecretString is an alias for types.SecretString so config dumps never
// carry credentials.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Components receive only the
// sections they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"biotwin"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Database      DatabaseConfig
	AWS           AWSConfig
	Observability ObservabilityConfig
	Engine        EngineConfig

	// Build Metadata (injected via ldflags, not env)
	Build BuildInfo
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	// Responses above this size are gzip-compressed when the client accepts it.
	GzipMinSize int `envconfig:"GZIP_MIN_SIZE" default:"1024" validate:"gte=0"`
}

// DatabaseConfig holds the connection string and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns          int32         `envconfig:"DB_MAX_CONNS" default:"10" validate:"gte=1"`
	MinConns          int32         `envconfig:"DB_MIN_CONNS" default:"2" validate:"gte=0"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Queue consumed by the assessment worker. Empty disables enqueueing.
	AssessmentQueueURL string `envconfig:"SQS_ASSESSMENTS" validate:"omitempty,url"`

	// LocalStack support (empty in prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"BioTwin"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"false"`

	// Buffered metrics are published at this interval by the API.
	MetricsFlushInterval time.Duration `envconfig:"METRICS_FLUSH_INTERVAL" default:"15s" validate:"gte=0"`
}

// EngineConfig tunes the scoring pipeline.
type EngineConfig struct {
	// Trailing window of stored records evaluated per user.
	HistoryWindowDays  int  `envconfig:"HISTORY_WINDOW_DAYS" default:"7" validate:"min=1,max=90"`
	BatchConcurrency   int  `envconfig:"BATCH_CONCURRENCY" default:"4" validate:"min=1,max=64"`
	MaxBatchSize       int  `envconfig:"MAX_BATCH_SIZE" default:"50" validate:"min=1,max=500"`
	HydrationReminders bool `envconfig:"HYDRATION_REMINDERS" default:"true"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrSecretResolution indicates a failure resolving a secret reference.
	ErrSecretResolution ConfigErrorType = "SECRET_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates an environment value could not be parsed into its
	// target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
