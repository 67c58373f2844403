// Package assessment runs the full scoring pipeline over a health history
// and manages stored assessment snapshots.
package assessment

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"biotwin/internal/bioscore"
	"biotwin/internal/bloodtest"
	"biotwin/internal/history"
	"biotwin/internal/insights"
	"biotwin/internal/longevity"
	"biotwin/internal/report"
	"biotwin/internal/types"
)

// Metric sources.
const (
	SourceAPI    = "api"
	SourceBatch  = "batch"
	SourceUser   = "user"
	SourceWorker = "worker"
)

// HealthRecordStore stores daily records and loads a trailing window,
// oldest first.
type HealthRecordStore interface {
	Insert(ctx context.Context, userID string, source types.RecordSource, records []types.HealthRecord) error
	ListRecent(ctx context.Context, userID string, asOf time.Time, days int) ([]types.HealthRecord, error)
}

// LabResultStore stores panels. Latest returns nil when the user has none.
type LabResultStore interface {
	Insert(ctx context.Context, userID string, b types.BiomarkerData) error
	Latest(ctx context.Context, userID string) (*types.BiomarkerData, error)
}

// AssessmentStore persists snapshots.
type AssessmentStore interface {
	Create(ctx context.Context, a *types.Assessment) error
	GetLatest(ctx context.Context, userID string) (*types.Assessment, error)
}

// Recorder receives assessment telemetry.
type Recorder interface {
	RecordAssessment(ctx context.Context, source string, a *types.Assessment)
	RecordAssessmentFailure(ctx context.Context, source string)
}

// Input is one history to evaluate. Biomarkers is optional.
type Input struct {
	UserID      string
	PatientName string
	History     []types.HealthRecord
	Biomarkers  *types.BiomarkerData
	Source      string
}

// BatchResult pairs each batch input with its outcome. Exactly one of
// Assessment and Err is set.
type BatchResult struct {
	Index      int
	Assessment *types.Assessment
	Err        error
}

// Config tunes the service.
type Config struct {
	WindowDays       int
	BatchConcurrency int
}

// Deps are the collaborators. Stores and Metrics may be nil; the Insights
// engine must be safe for concurrent use.
type Deps struct {
	Records     HealthRecordStore
	Labs        LabResultStore
	Assessments AssessmentStore
	Insights    *insights.Engine
	Metrics     Recorder
	Clock       types.Clock
	Logger      *slog.Logger
}

// Service evaluates histories and stored user data.
type Service struct {
	records     HealthRecordStore
	labs        LabResultStore
	assessments AssessmentStore
	insights    *insights.Engine
	metrics     Recorder
	clock       types.Clock
	logger      *slog.Logger
	windowDays  int
	concurrency int
}

// NewService fills defaults for anything left zero in cfg or deps.
func NewService(cfg Config, deps Deps) *Service {
	s := &Service{
		records:     deps.Records,
		labs:        deps.Labs,
		assessments: deps.Assessments,
		insights:    deps.Insights,
		metrics:     deps.Metrics,
		clock:       deps.Clock,
		logger:      deps.Logger,
		windowDays:  cfg.WindowDays,
		concurrency: cfg.BatchConcurrency,
	}
	if s.clock == nil {
		s.clock = types.RealClock{}
	}
	if s.insights == nil {
		s.insights = insights.NewEngine(insights.WithClock(s.clock))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.windowDays <= 0 {
		s.windowDays = 7
	}
	if s.concurrency <= 0 {
		s.concurrency = 4
	}
	return s
}

// Evaluate runs every engine over in.History and assembles the report.
func (s *Service) Evaluate(ctx context.Context, in Input) (*types.Assessment, error) {
	source := in.Source
	if source == "" {
		source = SourceAPI
	}

	a, err := s.evaluate(ctx, in)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordAssessmentFailure(ctx, source)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordAssessment(ctx, source, a)
	}
	s.logger.InfoContext(ctx, "assessment completed",
		"assessment_id", a.ID,
		"user_id", a.UserID,
		"source", source,
		"bio_score", a.BioScore,
		"adjusted_score", a.Adjusted.AdjustedScore,
		"longevity_score", a.LongevityScore,
		"alerts", len(a.Alerts),
	)
	return a, nil
}

func (s *Service) evaluate(ctx context.Context, in Input) (*types.Assessment, error) {
	if err := history.Validate(in.History); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	latest := types.Latest(in.History)
	bio := bioscore.CalculateBioScore(latest)

	alerts, err := longevity.AnalyzeCorrelations(in.History, in.Biomarkers)
	if err != nil {
		return nil, err
	}
	longevityScore, err := longevity.CalculateLongevityScore(in.History, in.Biomarkers)
	if err != nil {
		return nil, err
	}
	patterns, err := longevity.IdentifyPatterns(in.History)
	if err != nil {
		return nil, err
	}
	predictions, err := s.insights.GenerateInsights(in.History, in.Biomarkers)
	if err != nil {
		return nil, err
	}

	var bloodTest *types.BloodTestReport
	if in.Biomarkers != nil {
		r := bloodtest.AnalyzeBloodTest(*in.Biomarkers)
		bloodTest = &r
	}

	now := s.clock.Now()
	return &types.Assessment{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		BioScore:       bio,
		Adjusted:       longevity.CalculateAdjustedBioScore(bio, alerts),
		LongevityScore: longevityScore,
		Status:         bioscore.Status(latest),
		Daily:          bioscore.DailyRecommendation(latest),
		Alerts:         alerts,
		Patterns:       patterns,
		Insights:       predictions,
		BloodTest:      bloodTest,
		Report: report.Assemble(report.Input{
			PatientName:    in.PatientName,
			BioScore:       bio,
			LongevityScore: longevityScore,
			History:        in.History,
			Biomarkers:     in.Biomarkers,
			BloodTest:      bloodTest,
			Alerts:         alerts,
			Now:            now,
		}),
		CreatedAt: now,
	}, nil
}

// EvaluateBatch evaluates inputs concurrently. A failing input never affects
// the others; results come back in input order.
func (s *Service) EvaluateBatch(ctx context.Context, inputs []Input) []BatchResult {
	results := make([]BatchResult, len(inputs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, in := range inputs {
		if in.Source == "" {
			in.Source = SourceBatch
		}
		g.Go(func() error {
			a, err := s.Evaluate(gCtx, in)
			// Each goroutine owns its slot.
			results[i] = BatchResult{Index: i, Assessment: a, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// EvaluateUser evaluates the user's stored window and latest lab panel, then
// stores the snapshot.
func (s *Service) EvaluateUser(ctx context.Context, userID, source string) (*types.Assessment, error) {
	if s.records == nil || s.assessments == nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "user storage is not configured", nil)
	}

	records, err := s.records.ListRecent(ctx, userID, s.clock.Now(), s.windowDays)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, types.NewAppError(types.ErrCodeNotFoundRecords, "no health records in the assessment window", nil).
			WithDetails(map[string]any{"window_days": s.windowDays})
	}

	var biomarkers *types.BiomarkerData
	if s.labs != nil {
		if biomarkers, err = s.labs.Latest(ctx, userID); err != nil {
			return nil, err
		}
	}

	a, err := s.Evaluate(ctx, Input{
		UserID:      userID,
		PatientName: userID,
		History:     records,
		Biomarkers:  biomarkers,
		Source:      source,
	})
	if err != nil {
		return nil, err
	}

	if err := s.assessments.Create(ctx, a); err != nil {
		s.logger.ErrorContext(ctx, "failed to store assessment",
			"assessment_id", a.ID,
			"user_id", userID,
			"error", err,
		)
		return nil, err
	}
	return a, nil
}

// LatestForUser returns the newest stored snapshot.
func (s *Service) LatestForUser(ctx context.Context, userID string) (*types.Assessment, error) {
	if s.assessments == nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "assessment storage is not configured", nil)
	}
	return s.assessments.GetLatest(ctx, userID)
}

// IngestRecords stores wearable records for a user. Records are oldest
// first; one without a timestamp is dated by its position, the last being
// today.
func (s *Service) IngestRecords(ctx context.Context, userID string, source types.RecordSource, records []types.HealthRecord) error {
	if s.records == nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "record storage is not configured", nil)
	}
	if err := history.Validate(records); err != nil {
		return err
	}

	today := s.clock.Now()
	records = slices.Clone(records)
	for i := range records {
		if records[i].Timestamp.IsZero() {
			records[i].Timestamp = today.AddDate(0, 0, i-(len(records)-1))
		}
	}
	if err := s.records.Insert(ctx, userID, source, records); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "health records ingested",
		"user_id", userID,
		"source", string(source),
		"count", len(records),
	)
	return nil
}

// IngestLabResult stores one lab panel for a user. A zero timestamp is
// replaced with the current time.
func (s *Service) IngestLabResult(ctx context.Context, userID string, b types.BiomarkerData) error {
	if s.labs == nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "lab storage is not configured", nil)
	}
	if b.Timestamp.IsZero() {
		b.Timestamp = s.clock.Now()
	}
	if err := s.labs.Insert(ctx, userID, b); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "lab result ingested", "user_id", userID)
	return nil
}
