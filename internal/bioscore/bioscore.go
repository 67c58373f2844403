// Package bioscore computes the single-day Bio-Score and the status labels
// and daily recommendation shown alongside it.
package bioscore

import (
	"biotwin/internal/ladder"
	"biotwin/internal/types"
)

const (
	baseScore = 50
	maxScore  = 100
)

var sleepCredit = ladder.Ladder[int]{
	Rungs: []ladder.Rung[int]{
		{Match: ladder.Closed(7, 9), Value: 25},
		{Match: ladder.HalfOpen(6.5, 7), Value: 20},
		{Match: ladder.HalfOpen(6, 6.5), Value: 15},
		{Match: ladder.Below(6), Value: 5},
	},
}

var stepsCredit = ladder.Ladder[int]{
	Rungs: []ladder.Rung[int]{
		{Match: ladder.AtLeast(10000), Value: 25},
		{Match: ladder.AtLeast(8000), Value: 20},
		{Match: ladder.AtLeast(5000), Value: 15},
		{Match: ladder.AtLeast(3000), Value: 10},
	},
}

var heartRateCredit = ladder.Ladder[int]{
	Rungs: []ladder.Rung[int]{
		{Match: ladder.Closed(60, 70), Value: 25},
		{Match: ladder.HalfOpen(55, 60), Value: 20},
		{Match: ladder.OpenClosed(70, 75), Value: 20},
		{Match: ladder.OpenClosed(75, 85), Value: 10},
	},
}

var caloriesCredit = ladder.Ladder[int]{
	Rungs: []ladder.Rung[int]{
		{Match: ladder.AtLeast(500), Value: 25},
		{Match: ladder.AtLeast(400), Value: 20},
		{Match: ladder.AtLeast(300), Value: 15},
		{Match: ladder.AtLeast(200), Value: 10},
	},
}

// CalculateBioScore scores one day of metrics in [0, 100]. Unusable inputs
// (NaN, infinite, negative) earn no credit in their band.
func CalculateBioScore(r types.HealthRecord) int {
	score := baseScore +
		sleepCredit.Eval(r.SleepHours) +
		stepsCredit.Eval(float64(r.Steps)) +
		heartRateCredit.Eval(r.RestingHeartRate) +
		caloriesCredit.Eval(r.ActiveCalories)
	return ladder.Clamp(score, 0, maxScore)
}

// Status labels.
const (
	ActivityVeryActive = "very active"
	ActivityActive     = "active"
	ActivityModerate   = "moderate"
	ActivityLowActive  = "low active"
	ActivitySedentary  = "sedentary"

	RecoveryOptimal      = "optimal"
	RecoveryGood         = "good"
	RecoveryAdequate     = "adequate"
	RecoveryInsufficient = "insufficient"

	StressLow      = "low"
	StressModerate = "moderate"
	StressElevated = "elevated"
	StressVeryLow  = "very low"
)

var activityLabel = ladder.Ladder[string]{
	Rungs: []ladder.Rung[string]{
		{Match: ladder.AtLeast(10000), Value: ActivityVeryActive},
		{Match: ladder.AtLeast(8000), Value: ActivityActive},
		{Match: ladder.AtLeast(5000), Value: ActivityModerate},
		{Match: ladder.AtLeast(3000), Value: ActivityLowActive},
	},
	Fallback: ActivitySedentary,
}

var recoveryLabel = ladder.Ladder[string]{
	Rungs: []ladder.Rung[string]{
		{Match: ladder.Closed(7, 9), Value: RecoveryOptimal},
		{Match: ladder.AtLeast(6.5), Value: RecoveryGood},
		{Match: ladder.AtLeast(6), Value: RecoveryAdequate},
	},
	Fallback: RecoveryInsufficient,
}

var stressLabel = ladder.Ladder[string]{
	Rungs: []ladder.Rung[string]{
		{Match: ladder.Closed(60, 70), Value: StressLow},
		{Match: ladder.Closed(70, 80), Value: StressModerate},
		{Match: ladder.Above(80), Value: StressElevated},
	},
	Fallback: StressVeryLow,
}

// ActivityStatus labels a daily step count.
func ActivityStatus(steps int) string { return activityLabel.Eval(float64(steps)) }

// RecoveryStatus labels a night's sleep. Sleep above nine hours is "good",
// not "optimal".
func RecoveryStatus(sleepHours float64) string { return recoveryLabel.Eval(sleepHours) }

// StressStatus labels a resting heart rate. Rates under 60 bpm are "very low".
func StressStatus(restingHeartRate float64) string { return stressLabel.Eval(restingHeartRate) }

// Status returns all three labels for a record.
func Status(r types.HealthRecord) types.StatusLabels {
	return types.StatusLabels{
		Activity: ActivityStatus(r.Steps),
		Recovery: RecoveryStatus(r.SleepHours),
		Stress:   StressStatus(r.RestingHeartRate),
	}
}
