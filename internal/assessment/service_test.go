package assessment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"biotwin/internal/bioscore"
	"biotwin/internal/insights"
	"biotwin/internal/types"
)

// --- Mocks ---

type mockRecordStore struct{ mock.Mock }

func (m *mockRecordStore) Insert(ctx context.Context, userID string, source types.RecordSource, records []types.HealthRecord) error {
	return m.Called(ctx, userID, source, records).Error(0)
}

func (m *mockRecordStore) ListRecent(ctx context.Context, userID string, asOf time.Time, days int) ([]types.HealthRecord, error) {
	args := m.Called(ctx, userID, asOf, days)
	records, _ := args.Get(0).([]types.HealthRecord)
	return records, args.Error(1)
}

type mockLabStore struct{ mock.Mock }

func (m *mockLabStore) Insert(ctx context.Context, userID string, b types.BiomarkerData) error {
	return m.Called(ctx, userID, b).Error(0)
}

func (m *mockLabStore) Latest(ctx context.Context, userID string) (*types.BiomarkerData, error) {
	args := m.Called(ctx, userID)
	b, _ := args.Get(0).(*types.BiomarkerData)
	return b, args.Error(1)
}

type mockAssessmentStore struct{ mock.Mock }

func (m *mockAssessmentStore) Create(ctx context.Context, a *types.Assessment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAssessmentStore) GetLatest(ctx context.Context, userID string) (*types.Assessment, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).(*types.Assessment)
	return a, args.Error(1)
}

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) RecordAssessment(ctx context.Context, source string, a *types.Assessment) {
	m.Called(ctx, source, a)
}

func (m *mockRecorder) RecordAssessmentFailure(ctx context.Context, source string) {
	m.Called(ctx, source)
}

// --- Fixtures ---

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func week() []types.HealthRecord {
	records := make([]types.HealthRecord, 7)
	for i := range records {
		records[i] = types.HealthRecord{
			Steps:            9000 + i*100,
			RestingHeartRate: 60,
			SleepHours:       7.5,
			ActiveCalories:   450,
			Distance:         6.5,
			HRVVariability:   55,
			Timestamp:        testNow.AddDate(0, 0, i-6),
		}
	}
	return records
}

func stressedWeek() []types.HealthRecord {
	records := week()
	for i := range records {
		records[i].Steps = 2500
		records[i].RestingHeartRate = 88
		records[i].SleepHours = 5
		records[i].HRVVariability = 22
	}
	return records
}

func labs() *types.BiomarkerData {
	return &types.BiomarkerData{
		Cortisol:      24,
		VitaminD:      18,
		Hemoglobin:    14,
		Glucose:       92,
		Triglycerides: 120,
		Cholesterol:   180,
		Timestamp:     testNow.AddDate(0, 0, -2),
	}
}

type fixture struct {
	records     *mockRecordStore
	labs        *mockLabStore
	assessments *mockAssessmentStore
	metrics     *mockRecorder
	svc         *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		records:     &mockRecordStore{},
		labs:        &mockLabStore{},
		assessments: &mockAssessmentStore{},
		metrics:     &mockRecorder{},
	}
	clock := types.FixedClock(testNow)
	f.svc = NewService(Config{WindowDays: 7, BatchConcurrency: 2}, Deps{
		Records:     f.records,
		Labs:        f.labs,
		Assessments: f.assessments,
		Insights:    insights.NewEngine(insights.WithClock(clock), insights.WithRandomSource(fixedRand(0.9))),
		Metrics:     f.metrics,
		Clock:       clock,
	})
	t.Cleanup(func() {
		f.records.AssertExpectations(t)
		f.labs.AssertExpectations(t)
		f.assessments.AssertExpectations(t)
		f.metrics.AssertExpectations(t)
	})
	return f
}

// --- Evaluate ---

func TestEvaluate_WithoutBiomarkers(t *testing.T) {
	f := newFixture(t)
	f.metrics.On("RecordAssessment", mock.Anything, SourceAPI, mock.AnythingOfType("*types.Assessment")).Once()

	history := week()
	a, err := f.svc.Evaluate(context.Background(), Input{PatientName: "Ada", History: history})
	require.NoError(t, err)

	latest := history[len(history)-1]
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, bioscore.CalculateBioScore(latest), a.BioScore)
	assert.Equal(t, bioscore.Status(latest), a.Status)
	assert.Equal(t, bioscore.DailyRecommendation(latest), a.Daily)
	assert.Nil(t, a.BloodTest)
	assert.Nil(t, a.Report.BloodTest)
	assert.Equal(t, "Ada", a.Report.PatientName)
	assert.Equal(t, a.BioScore, a.Report.BioScore)
	assert.Equal(t, a.LongevityScore, a.Report.LongevityScore)
	assert.True(t, a.CreatedAt.Equal(testNow))
	assert.GreaterOrEqual(t, a.LongevityScore, 0)
	assert.LessOrEqual(t, a.LongevityScore, 100)
}

func TestEvaluate_WithBiomarkers(t *testing.T) {
	f := newFixture(t)
	f.metrics.On("RecordAssessment", mock.Anything, SourceBatch, mock.Anything).Once()

	a, err := f.svc.Evaluate(context.Background(), Input{
		UserID:     "user-1",
		History:    stressedWeek(),
		Biomarkers: labs(),
		Source:     SourceBatch,
	})
	require.NoError(t, err)

	require.NotNil(t, a.BloodTest)
	assert.Len(t, a.BloodTest.Analyses, 6)
	assert.Equal(t, a.BloodTest, a.Report.BloodTest)
	assert.Equal(t, "user-1", a.UserID)
	assert.NotEmpty(t, a.Alerts, "a stressed week with high cortisol should raise alerts")
	assert.Less(t, a.Adjusted.AdjustedScore, a.BioScore)
	assert.Equal(t, a.Alerts, a.Report.Alerts)
}

func TestEvaluate_EmptyHistory(t *testing.T) {
	f := newFixture(t)
	f.metrics.On("RecordAssessmentFailure", mock.Anything, SourceAPI).Once()

	a, err := f.svc.Evaluate(context.Background(), Input{})
	assert.Nil(t, a)
	assert.ErrorIs(t, err, types.ErrEmptyHistory)
}

func TestEvaluate_CanceledContext(t *testing.T) {
	f := newFixture(t)
	f.metrics.On("RecordAssessmentFailure", mock.Anything, SourceAPI).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Evaluate(ctx, Input{History: week()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(Config{}, Deps{})

	assert.Equal(t, 7, svc.windowDays)
	assert.Equal(t, 4, svc.concurrency)
	assert.NotNil(t, svc.insights)
	assert.NotNil(t, svc.logger)

	a, err := svc.Evaluate(context.Background(), Input{History: week()})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
}

// --- EvaluateBatch ---

func TestEvaluateBatch_IsolatesFailures(t *testing.T) {
	f := newFixture(t)
	f.metrics.On("RecordAssessment", mock.Anything, SourceBatch, mock.Anything).Times(2)
	f.metrics.On("RecordAssessmentFailure", mock.Anything, SourceBatch).Once()

	inputs := []Input{
		{UserID: "a", History: week()},
		{UserID: "b"},
		{UserID: "c", History: stressedWeek(), Biomarkers: labs()},
	}
	results := f.svc.EvaluateBatch(context.Background(), inputs)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}
	require.NoError(t, results[0].Err)
	assert.Equal(t, "a", results[0].Assessment.UserID)

	assert.Nil(t, results[1].Assessment)
	assert.ErrorIs(t, results[1].Err, types.ErrEmptyHistory)

	require.NoError(t, results[2].Err)
	assert.Equal(t, "c", results[2].Assessment.UserID)
	assert.NotNil(t, results[2].Assessment.BloodTest)
}

func TestEvaluateBatch_Empty(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.svc.EvaluateBatch(context.Background(), nil))
}

// --- EvaluateUser ---

func TestEvaluateUser_StoresSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.records.On("ListRecent", ctx, "user-1", testNow, 7).Return(week(), nil).Once()
	f.labs.On("Latest", ctx, "user-1").Return(labs(), nil).Once()
	f.metrics.On("RecordAssessment", ctx, SourceWorker, mock.Anything).Once()
	f.assessments.On("Create", ctx, mock.MatchedBy(func(a *types.Assessment) bool {
		return a.UserID == "user-1" && a.BloodTest != nil
	})).Return(nil).Once()

	a, err := f.svc.EvaluateUser(ctx, "user-1", SourceWorker)
	require.NoError(t, err)
	assert.Equal(t, "user-1", a.Report.PatientName)
	assert.Len(t, a.Report.History, 7)
}

func TestEvaluateUser_NoLabResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.records.On("ListRecent", ctx, "user-1", testNow, 7).Return(week(), nil).Once()
	f.labs.On("Latest", ctx, "user-1").Return(nil, nil).Once()
	f.metrics.On("RecordAssessment", ctx, SourceUser, mock.Anything).Once()
	f.assessments.On("Create", ctx, mock.Anything).Return(nil).Once()

	a, err := f.svc.EvaluateUser(ctx, "user-1", SourceUser)
	require.NoError(t, err)
	assert.Nil(t, a.BloodTest)
}

func TestEvaluateUser_NoRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.records.On("ListRecent", ctx, "ghost", testNow, 7).Return([]types.HealthRecord{}, nil).Once()

	_, err := f.svc.EvaluateUser(ctx, "ghost", SourceUser)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundRecords, appErr.Code)
	assert.Equal(t, 7, appErr.Details["window_days"])
}

func TestEvaluateUser_StoreErrors(t *testing.T) {
	dbErr := types.NewAppError(types.ErrCodeInternalDB, "failed to list health records", errors.New("conn reset"))

	t.Run("records", func(t *testing.T) {
		f := newFixture(t)
		f.records.On("ListRecent", mock.Anything, "user-1", testNow, 7).Return(nil, dbErr).Once()

		_, err := f.svc.EvaluateUser(context.Background(), "user-1", SourceUser)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("labs", func(t *testing.T) {
		f := newFixture(t)
		f.records.On("ListRecent", mock.Anything, "user-1", testNow, 7).Return(week(), nil).Once()
		f.labs.On("Latest", mock.Anything, "user-1").Return(nil, dbErr).Once()

		_, err := f.svc.EvaluateUser(context.Background(), "user-1", SourceUser)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("create", func(t *testing.T) {
		f := newFixture(t)
		f.records.On("ListRecent", mock.Anything, "user-1", testNow, 7).Return(week(), nil).Once()
		f.labs.On("Latest", mock.Anything, "user-1").Return(nil, nil).Once()
		f.metrics.On("RecordAssessment", mock.Anything, SourceUser, mock.Anything).Once()
		f.assessments.On("Create", mock.Anything, mock.Anything).Return(dbErr).Once()

		a, err := f.svc.EvaluateUser(context.Background(), "user-1", SourceUser)
		assert.Nil(t, a)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestEvaluateUser_StorageNotConfigured(t *testing.T) {
	svc := NewService(Config{}, Deps{})

	_, err := svc.EvaluateUser(context.Background(), "user-1", SourceUser)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalUnexpected, appErr.Code)
}

// --- LatestForUser ---

func TestLatestForUser(t *testing.T) {
	f := newFixture(t)
	want := &types.Assessment{ID: "a-1", UserID: "user-1"}
	f.assessments.On("GetLatest", mock.Anything, "user-1").Return(want, nil).Once()

	got, err := f.svc.LatestForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestLatestForUser_NotFound(t *testing.T) {
	f := newFixture(t)
	notFound := types.NewAppError(types.ErrCodeNotFoundAssessment, "assessment not found", nil)
	f.assessments.On("GetLatest", mock.Anything, "user-2").Return(nil, notFound).Once()

	_, err := f.svc.LatestForUser(context.Background(), "user-2")
	assert.ErrorIs(t, err, notFound)
}

// --- Ingestion ---

func TestIngestRecords(t *testing.T) {
	f := newFixture(t)
	records := week()
	f.records.On("Insert", mock.Anything, "user-1", types.SourceAppleHealth, records).Return(nil).Once()

	require.NoError(t, f.svc.IngestRecords(context.Background(), "user-1", types.SourceAppleHealth, records))
}

func TestIngestRecords_DatesUntimedRecords(t *testing.T) {
	f := newFixture(t)
	records := []types.HealthRecord{{Steps: 1000}, {Steps: 2000}, {Steps: 3000}}

	f.records.On("Insert", mock.Anything, "user-1", types.SourceManual, mock.MatchedBy(func(got []types.HealthRecord) bool {
		return len(got) == 3 &&
			got[0].Timestamp.Equal(testNow.AddDate(0, 0, -2)) &&
			got[1].Timestamp.Equal(testNow.AddDate(0, 0, -1)) &&
			got[2].Timestamp.Equal(testNow)
	})).Return(nil).Once()

	require.NoError(t, f.svc.IngestRecords(context.Background(), "user-1", types.SourceManual, records))
	assert.True(t, records[0].Timestamp.IsZero(), "caller's slice must not be modified")
}

func TestIngestRecords_RejectsEmpty(t *testing.T) {
	f := newFixture(t)

	err := f.svc.IngestRecords(context.Background(), "user-1", types.SourceManual, nil)
	assert.ErrorIs(t, err, types.ErrEmptyHistory)
	f.records.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestLabResult_DefaultsTimestamp(t *testing.T) {
	f := newFixture(t)
	panel := *labs()
	panel.Timestamp = time.Time{}

	f.labs.On("Insert", mock.Anything, "user-1", mock.MatchedBy(func(b types.BiomarkerData) bool {
		return b.Timestamp.Equal(testNow) && b.Cortisol == panel.Cortisol
	})).Return(nil).Once()

	require.NoError(t, f.svc.IngestLabResult(context.Background(), "user-1", panel))
}

func TestIngestLabResult_StoreError(t *testing.T) {
	f := newFixture(t)
	dbErr := errors.New("insert failed")
	f.labs.On("Insert", mock.Anything, "user-1", mock.Anything).Return(dbErr).Once()

	assert.ErrorIs(t, f.svc.IngestLabResult(context.Background(), "user-1", *labs()), dbErr)
}
