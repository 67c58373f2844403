// Package history holds the aggregate helpers shared by every engine that
// reads a multi-day health history.
package history

import "biotwin/internal/types"

// Mean averages f over the records. It returns 0 for an empty slice.
func Mean(records []types.HealthRecord, f func(types.HealthRecord) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += f(r)
	}
	return sum / float64(len(records))
}

func Steps(r types.HealthRecord) float64            { return float64(r.Steps) }
func RestingHeartRate(r types.HealthRecord) float64 { return r.RestingHeartRate }
func SleepHours(r types.HealthRecord) float64       { return r.SleepHours }
func ActiveCalories(r types.HealthRecord) float64   { return r.ActiveCalories }
func HRV(r types.HealthRecord) float64              { return r.HRVVariability }

// Averages computes the per-metric means. An empty history yields zeros.
func Averages(records []types.HealthRecord) types.HistoryAverages {
	return types.HistoryAverages{
		Steps:            Mean(records, Steps),
		RestingHeartRate: Mean(records, RestingHeartRate),
		SleepHours:       Mean(records, SleepHours),
		ActiveCalories:   Mean(records, ActiveCalories),
		HRVVariability:   Mean(records, HRV),
	}
}

// HalfSplitChange returns the percent change from the mean of the first half
// of the history to the mean of the second half. The split point is
// floor(n/2), so with an odd length the extra record lands in the second
// half. It returns 0 when either half is empty or the first mean is zero.
func HalfSplitChange(records []types.HealthRecord, f func(types.HealthRecord) float64) float64 {
	mid := len(records) / 2
	first, second := records[:mid], records[mid:]
	if len(first) == 0 || len(second) == 0 {
		return 0
	}
	firstMean := Mean(first, f)
	if firstMean == 0 {
		return 0
	}
	return (Mean(second, f) - firstMean) / firstMean * 100
}

// Delta returns last minus first for f. It returns 0 for an empty history.
func Delta(records []types.HealthRecord, f func(types.HealthRecord) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	return f(records[len(records)-1]) - f(records[0])
}

// Validate rejects an empty history.
func Validate(records []types.HealthRecord) error {
	if len(records) == 0 {
		return types.ErrEmptyHistory
	}
	return nil
}
