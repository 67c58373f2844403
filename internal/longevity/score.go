package longevity

import (
	"biotwin/internal/history"
	"biotwin/internal/ladder"
	"biotwin/internal/types"
)

var (
	stepsCredit = ladder.Ladder[int]{Rungs: []ladder.Rung[int]{
		{Match: ladder.AtLeast(10000), Value: 25},
		{Match: ladder.AtLeast(8000), Value: 20},
		{Match: ladder.AtLeast(5000), Value: 15},
		{Match: ladder.AtLeast(3000), Value: 10},
	}}
	sleepCredit = ladder.Ladder[int]{Rungs: []ladder.Rung[int]{
		{Match: ladder.Closed(7, 9), Value: 25},
		{Match: ladder.AtLeast(6.5), Value: 20},
		{Match: ladder.AtLeast(6), Value: 15},
	}}
	heartRateCredit = ladder.Ladder[int]{Rungs: []ladder.Rung[int]{
		{Match: ladder.Closed(60, 70), Value: 25},
		{Match: ladder.Closed(55, 75), Value: 20},
		{Match: ladder.Closed(50, 85), Value: 15},
	}}
	hrvCredit = ladder.Ladder[int]{Rungs: []ladder.Rung[int]{
		{Match: ladder.AtLeast(50), Value: 25},
		{Match: ladder.AtLeast(40), Value: 20},
		{Match: ladder.AtLeast(30), Value: 15},
		{Match: ladder.AtLeast(20), Value: 10},
	}}
)

// CalculateLongevityScore scores the latest record of the history in
// [0, 100]. The biomarkers argument is accepted for call-site symmetry with
// AnalyzeCorrelations but does not contribute to the score.
func CalculateLongevityScore(records []types.HealthRecord, _ *types.BiomarkerData) (int, error) {
	if err := history.Validate(records); err != nil {
		return 0, err
	}
	latest := types.Latest(records)

	score := 50 +
		stepsCredit.Eval(float64(latest.Steps)) +
		sleepCredit.Eval(latest.SleepHours) +
		heartRateCredit.Eval(latest.RestingHeartRate) +
		hrvCredit.Eval(latest.HRVVariability)
	return ladder.Clamp(score, 0, 100), nil
}
