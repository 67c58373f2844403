// Package main is the entry point for the Bio-Twin API server.
//
// It loads configuration, connects to Postgres, builds the AWS clients for
// the assessment queue and CloudWatch, and serves the v1 routes on the core
// chassis until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"biotwin/internal/api/handlers"
	"biotwin/internal/assessment"
	"biotwin/internal/config"
	"biotwin/internal/core"
	"biotwin/internal/db"
	"biotwin/internal/insights"
	"biotwin/internal/metrics"
	"biotwin/internal/queue"
	"biotwin/internal/synthetic"
	"biotwin/internal/types"
)

// slogAdapter wraps *slog.Logger to implement types.Logger, whose With
// returns the interface rather than *slog.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig(config.NewEnvVarProvider())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("biotwin API starting",
		"environment", cfg.Environment,
		"build", cfg.Build.String(),
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		pool.Close()
		return fmt.Errorf("loading AWS SDK config: %w", err)
	}

	deps := serverDeps{
		Records:     db.NewHealthRecordRepository(pool),
		Labs:        db.NewLabResultRepository(pool),
		Assessments: db.NewAssessmentRepository(pool),
		Probes:      []core.HealthProbe{core.DatabaseProbe{DB: pool}},
		Closers:     []func(){pool.Close},
	}

	if cfg.Observability.EnableMetrics {
		recorder := metrics.NewCloudWatchRecorder(
			cloudwatch.NewFromConfig(awsCfg),
			cfg.Observability.MetricNamespace,
			&slogAdapter{logger: logger},
		)
		recorder.Start(cfg.Observability.MetricsFlushInterval)
		deps.Metrics = recorder
		// Publish buffered metrics before the pool closes.
		deps.Closers = append([]func(){recorder.Close}, deps.Closers...)
	}

	if cfg.AWS.AssessmentQueueURL != "" {
		deps.Queue = queue.NewAssessmentTrigger(sqs.NewFromConfig(awsCfg), cfg.AWS, logger)
	} else {
		logger.Warn("SQS_ASSESSMENTS not set, queued assessments are disabled")
	}

	srv, err := buildServer(cfg, logger, deps)
	if err != nil {
		pool.Close()
		return fmt.Errorf("creating server: %w", err)
	}

	return runHTTPServer(srv, cfg, logger)
}

// serverDeps carries the infrastructure built in run. Nil stores, metrics
// and queue are allowed; the affected routes then report errors.
type serverDeps struct {
	Records     assessment.HealthRecordStore
	Labs        assessment.LabResultStore
	Assessments assessment.AssessmentStore
	Metrics     *metrics.CloudWatchRecorder
	Queue       *queue.AssessmentTrigger
	Probes      []core.HealthProbe
	Closers     []func()
}

// buildServer wires the assessment service and handlers onto the chassis and
// mounts every route.
func buildServer(cfg *config.Config, logger *slog.Logger, deps serverDeps) (*core.Server, error) {
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, err
	}
	srv.HealthProbes = deps.Probes
	srv.Closers = deps.Closers

	clock := types.RealClock{}
	svcDeps := assessment.Deps{
		Records:     deps.Records,
		Labs:        deps.Labs,
		Assessments: deps.Assessments,
		Insights: insights.NewEngine(
			insights.WithClock(clock),
			insights.WithHydrationReminders(cfg.Engine.HydrationReminders),
		),
		Clock:  clock,
		Logger: logger,
	}
	// A typed nil pointer must not reach the interface fields.
	if deps.Metrics != nil {
		svcDeps.Metrics = deps.Metrics
		srv.Metrics = deps.Metrics
	}
	svc := assessment.NewService(assessment.Config{
		WindowDays:       cfg.Engine.HistoryWindowDays,
		BatchConcurrency: cfg.Engine.BatchConcurrency,
	}, svcDeps)

	var enqueuer handlers.AssessmentEnqueuer
	if deps.Queue != nil {
		enqueuer = deps.Queue
	}

	assessmentHandler := handlers.NewAssessmentHandler(svc, srv.Validator, logger, cfg.Engine.MaxBatchSize)
	scoringHandler := handlers.NewScoringHandler(srv.Validator, clock, logger)
	syntheticHandler := handlers.NewSyntheticHandler(synthetic.NewGenerator(nil, clock), logger)
	userHandler := handlers.NewUserHandler(svc, enqueuer, srv.Validator, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		assessmentHandler.RegisterRoutes,
		scoringHandler.RegisterRoutes,
		syntheticHandler.RegisterRoutes,
		userHandler.RegisterRoutes,
	)

	if err := srv.MountRoutes(); err != nil {
		return nil, err
	}
	return srv, nil
}

// newPool opens and verifies the Postgres pool.
func newPool(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dbCfg.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	poolCfg.MaxConns = dbCfg.MaxConns
	poolCfg.MinConns = dbCfg.MinConns
	poolCfg.MaxConnLifetime = dbCfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = dbCfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// loadAWSConfig applies the configured region and, for LocalStack, the
// endpoint override.
func loadAWSConfig(ctx context.Context, awsCfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsCfg.Region),
	}
	if awsCfg.EndpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(awsCfg.EndpointURL))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Channel to capture server errors from ListenAndServe.
	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// Release the DB pool after in-flight requests have drained.
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// Compile-time checks that the production types satisfy the handler contracts.
var (
	_ handlers.AssessmentEnqueuer = (*queue.AssessmentTrigger)(nil)
	_ core.MetricsCollector       = (*metrics.CloudWatchRecorder)(nil)
	_ assessment.Recorder         = (*metrics.CloudWatchRecorder)(nil)
)
