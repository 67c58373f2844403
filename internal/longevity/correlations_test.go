package longevity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biotwin/internal/types"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func rec(steps int, rhr, sleep, hrv float64) types.HealthRecord {
	return types.HealthRecord{Steps: steps, RestingHeartRate: rhr, SleepHours: sleep, HRVVariability: hrv, Timestamp: day0}
}

// week returns six unremarkable days followed by latest.
func week(latest types.HealthRecord) []types.HealthRecord {
	out := make([]types.HealthRecord, 0, 7)
	for i := 0; i < 6; i++ {
		r := rec(9000, 62, 8, 55)
		r.Timestamp = day0.AddDate(0, 0, i)
		out = append(out, r)
	}
	latest.Timestamp = day0.AddDate(0, 0, 6)
	return append(out, latest)
}

func ids(alerts []types.CorrelationAlert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}

func TestAnalyzeCorrelations_LowActivityPoorSleep(t *testing.T) {
	alerts, err := AnalyzeCorrelations(week(rec(3000, 65, 5, 45)), nil)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, "low-activity-poor-sleep", alerts[0].ID)
	assert.Equal(t, -15, alerts[0].BioScoreImpact)
	assert.Equal(t, types.RiskHigh, alerts[0].RiskLevel)
	assert.Equal(t, []string{"steps", "sleepHours"}, alerts[0].Metrics)
	assert.Contains(t, alerts[0].Description, "3000 steps")
	assert.Contains(t, alerts[0].Description, "5.0h")
}

func TestAnalyzeCorrelations_OnlyLatestRecordCounts(t *testing.T) {
	records := []types.HealthRecord{rec(1000, 90, 4, 10), rec(12000, 60, 8, 60)}
	records[1].Timestamp = day0.AddDate(0, 0, 1)

	alerts, err := AnalyzeCorrelations(records, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"longevity-optimization"}, ids(alerts))
}

func TestAnalyzeCorrelations_CriticalSortsFirst(t *testing.T) {
	// Fires rules 1, 2 and 3: recovery crisis is critical, the rest high.
	alerts, err := AnalyzeCorrelations(week(rec(3000, 80, 5, 25)), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"recovery-crisis", "low-activity-poor-sleep", "high-hr-low-sleep-stress"}, ids(alerts))
	assert.Equal(t, types.RiskCritical, alerts[0].RiskLevel)
	assert.Len(t, alerts[0].Recommendations, 5)
}

func TestAnalyzeCorrelations_BiomarkerRules(t *testing.T) {
	labs := &types.BiomarkerData{Triglycerides: 180, VitaminD: 22, Cortisol: 24}

	alerts, err := AnalyzeCorrelations(week(rec(3500, 72, 6.5, 35)), labs)
	require.NoError(t, err)
	assert.Equal(t, []string{"metabolic-syndrome-risk", "immune-suppression"}, ids(alerts))
	assert.Equal(t, types.TimeframeThisWeek, alerts[0].Timeframe)
	assert.Equal(t, -18, alerts[0].BioScoreImpact)
	assert.Equal(t, -16, alerts[1].BioScoreImpact)

	withoutLabs, err := AnalyzeCorrelations(week(rec(3500, 72, 6.5, 35)), nil)
	require.NoError(t, err)
	assert.Empty(t, withoutLabs, "lab rules must be skipped silently")
}

func TestAnalyzeCorrelations_AllSixRiskOrdering(t *testing.T) {
	labs := &types.BiomarkerData{Triglycerides: 200, VitaminD: 10, Cortisol: 30}

	alerts, err := AnalyzeCorrelations(week(rec(1000, 90, 4, 10)), labs)
	require.NoError(t, err)

	require.Len(t, alerts, 5)
	for i := 1; i < len(alerts); i++ {
		assert.LessOrEqual(t, alerts[i-1].RiskLevel.Rank(), alerts[i].RiskLevel.Rank())
	}
	assert.Equal(t, "recovery-crisis", alerts[0].ID)
	assert.Equal(t, []string{
		"recovery-crisis",
		"low-activity-poor-sleep",
		"high-hr-low-sleep-stress",
		"metabolic-syndrome-risk",
		"immune-suppression",
	}, ids(alerts))
}

func TestAnalyzeCorrelations_Idempotent(t *testing.T) {
	h := week(rec(3000, 80, 5, 25))
	a, err := AnalyzeCorrelations(h, nil)
	require.NoError(t, err)
	b, err := AnalyzeCorrelations(h, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAnalyzeCorrelations_EmptyHistory(t *testing.T) {
	_, err := AnalyzeCorrelations(nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrEmptyHistory))
}

func TestCalculateAdjustedBioScore(t *testing.T) {
	alerts := []types.CorrelationAlert{{BioScoreImpact: -20}, {BioScoreImpact: -15}}

	assert.Equal(t, types.AdjustedBioScore{AdjustedScore: 45, TotalImpact: -35}, CalculateAdjustedBioScore(80, alerts))
	assert.Equal(t, types.AdjustedBioScore{AdjustedScore: 0, TotalImpact: -35}, CalculateAdjustedBioScore(20, alerts))
	assert.Equal(t, types.AdjustedBioScore{AdjustedScore: 100, TotalImpact: 10},
		CalculateAdjustedBioScore(95, []types.CorrelationAlert{{BioScoreImpact: 10}}))
	assert.Equal(t, types.AdjustedBioScore{AdjustedScore: 70}, CalculateAdjustedBioScore(70, nil))
}
