// Package main is the entrypoint for the Assessment Worker Lambda function.
//
// The worker consumes AssessmentMessages from the assessment SQS queue. For
// each message it evaluates the user's stored history window and latest lab
// panel and stores the resulting snapshot. Messages that fail transiently
// are reported as batch item failures so SQS redelivers only those.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/jackc/pgx/v5/pgxpool"

	"biotwin/internal/assessment"
	"biotwin/internal/config"
	"biotwin/internal/db"
	"biotwin/internal/insights"
	"biotwin/internal/metrics"
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

// UserEvaluator is the slice of assessment.Service the worker needs.
type UserEvaluator interface {
	EvaluateUser(ctx context.Context, userID, source string) (*types.Assessment, error)
}

// MetricsFlusher publishes buffered metrics. Implemented by
// metrics.CloudWatchRecorder.
type MetricsFlusher interface {
	Flush()
}

// Handler holds the dependencies for the assessment worker.
type Handler struct {
	evaluator UserEvaluator
	clock     types.Clock
	logger    types.Logger
	// metrics is flushed after every batch; the runtime may freeze the
	// process as soon as Handle returns. Nil when metrics are disabled.
	metrics MetricsFlusher
}

// Handle processes an SQS batch. Each message is handled independently.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		if err := h.processMessage(ctx, record); err != nil {
			h.logger.Error("failed to process SQS message",
				"message_id", record.MessageId,
				"error", err.Error(),
			)
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}

	if h.metrics != nil {
		h.metrics.Flush()
	}
	return response, nil
}

// processMessage returns an error only for failures worth retrying.
func (h *Handler) processMessage(ctx context.Context, record events.SQSMessage) error {
	var msg types.AssessmentMessage
	if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
		// Permanent parse failure: ACK so it is not redelivered forever.
		h.logger.Error("failed to unmarshal assessment message",
			"message_id", record.MessageId,
			"error", err.Error(),
		)
		return nil
	}
	if msg.UserID == "" {
		h.logger.Error("assessment message has no user_id", "message_id", record.MessageId)
		return nil
	}

	logger := h.logger.With(
		"assessment_message_id", msg.MessageID,
		"user_id", msg.UserID,
		"reason", string(msg.Reason),
		"trace_id", msg.TraceID,
	)
	if lag, ok := h.queueLag(record); ok {
		logger = logger.With("queue_lag_ms", lag.Milliseconds())
	}

	ctx = types.WithRequestID(ctx, msg.TraceID)
	a, err := h.evaluator.EvaluateUser(ctx, msg.UserID, assessment.SourceWorker)
	if err != nil {
		if isPermanent(err) {
			logger.Warn("skipping assessment", "error", err.Error())
			return nil
		}
		return fmt.Errorf("evaluate user %s: %w", msg.UserID, err)
	}

	logger.Info("assessment stored",
		"assessment_id", a.ID,
		"bio_score", a.BioScore,
		"longevity_score", a.LongevityScore,
	)
	return nil
}

// isPermanent reports errors a redelivery cannot fix.
func isPermanent(err error) bool {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case types.ErrCodeNotFoundRecords, types.ErrCodeValidationEmptyHistory:
		return true
	}
	return false
}

func (h *Handler) queueLag(record events.SQSMessage) (time.Duration, bool) {
	raw, ok := record.Attributes["SentTimestamp"]
	if !ok {
		return 0, false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return h.clock.Now().Sub(time.UnixMilli(millis)), true
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger.Info("Assessment Worker Lambda initializing (cold start)")

	cfg, err := config.LoadConfig(config.NewEnvVarProvider())
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Database.URL.Unmask())
	if err != nil {
		logger.Error("Failed to create database pool", "error", err)
		os.Exit(1)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		os.Exit(1)
	}

	typedLogger := &slogAdapter{logger: logger}
	clock := types.RealClock{}

	svcDeps := assessment.Deps{
		Records:     db.NewHealthRecordRepository(pool),
		Labs:        db.NewLabResultRepository(pool),
		Assessments: db.NewAssessmentRepository(pool),
		Insights: insights.NewEngine(
			insights.WithClock(clock),
			insights.WithHydrationReminders(cfg.Engine.HydrationReminders),
		),
		Clock:  clock,
		Logger: logger,
	}

	var recorder *metrics.CloudWatchRecorder
	if cfg.Observability.EnableMetrics {
		awsCfg, err := loadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			logger.Error("Failed to load AWS SDK config", "error", err)
			os.Exit(1)
		}
		recorder = metrics.NewCloudWatchRecorder(
			cloudwatch.NewFromConfig(awsCfg),
			cfg.Observability.MetricNamespace,
			typedLogger,
		)
		svcDeps.Metrics = recorder
	}

	svc := assessment.NewService(assessment.Config{
		WindowDays:       cfg.Engine.HistoryWindowDays,
		BatchConcurrency: cfg.Engine.BatchConcurrency,
	}, svcDeps)

	handler := &Handler{
		evaluator: svc,
		clock:     clock,
		logger:    typedLogger,
	}
	if recorder != nil {
		handler.metrics = recorder
	}

	logger.Info("Assessment Worker Lambda initialized",
		"build", cfg.Build.String(),
		"window_days", cfg.Engine.HistoryWindowDays,
		"metrics_enabled", cfg.Observability.EnableMetrics,
	)

	// Local mode: read a JSON SQS event from stdin instead of starting the
	// Lambda runtime.
	if cfg.Environment == "local" {
		logger.Info("APP_ENV=local: reading SQS event from stdin")
		if err := runLocal(ctx, handler, os.Stdin, os.Stderr); err != nil {
			logger.Error("Local run failed", "error", err)
			os.Exit(1)
		}
		pool.Close()
		return
	}

	lambda.Start(handler.Handle)
}

// runLocal feeds one SQS event from r through the handler and writes any
// partial failures to w.
func runLocal(ctx context.Context, h *Handler, r io.Reader, w io.Writer) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if len(payload) == 0 {
		return errors.New("no input received on stdin")
	}
	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(payload, &sqsEvent); err != nil {
		return fmt.Errorf("parse SQS event: %w", err)
	}

	response, err := h.Handle(ctx, sqsEvent)
	if err != nil {
		return err
	}
	if len(response.BatchItemFailures) > 0 {
		respJSON, _ := json.MarshalIndent(response, "", "  ")
		fmt.Fprintln(w, string(respJSON))
	}
	h.logger.Info("Handler execution completed",
		"records_processed", len(sqsEvent.Records),
		"failures", len(response.BatchItemFailures),
	)
	return nil
}

func loadAWSConfig(ctx context.Context, awsCfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsCfg.Region),
	}
	if awsCfg.EndpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(awsCfg.EndpointURL))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// Compile-time assertions for the worker's collaborators.
var (
	_ types.Logger   = (*slogAdapter)(nil)
	_ MetricsFlusher = (*metrics.CloudWatchRecorder)(nil)
)
