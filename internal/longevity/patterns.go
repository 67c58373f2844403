package longevity

import (
	"biotwin/internal/history"
	"biotwin/internal/types"
)

// IdentifyPatterns averages the whole history and reports each behavioral
// pattern whose threshold is crossed. Prevalence is the normalized distance
// past the threshold, clamped to [0, 1].
func IdentifyPatterns(records []types.HealthRecord) ([]types.HealthPattern, error) {
	if err := history.Validate(records); err != nil {
		return nil, err
	}
	avg := history.Averages(records)

	patterns := []types.HealthPattern{}
	if avg.Steps < 6000 {
		patterns = append(patterns, types.HealthPattern{
			ID:                     "sedentary-lifestyle",
			Name:                   "Sedentary Lifestyle",
			Description:            "Physical activity below the recommended level",
			Indicators:             []string{"low_steps", "low_calories"},
			Prevalence:             prevalence((6000 - avg.Steps) / 6000),
			InterventionSuggestion: "Increase activity gradually: +1000 steps/week",
		})
	}
	if avg.SleepHours < 7 {
		patterns = append(patterns, types.HealthPattern{
			ID:                     "sleep-deprivation",
			Name:                   "Sleep Deprivation",
			Description:            "Insufficient or irregular sleep",
			Indicators:             []string{"low_sleep", "variable_sleep"},
			Prevalence:             prevalence((7 - avg.SleepHours) / 7),
			InterventionSuggestion: "Set a consistent routine: go to bed and wake up at the same times",
		})
	}
	if avg.RestingHeartRate > 72 {
		patterns = append(patterns, types.HealthPattern{
			ID:                     "chronic-stress",
			Name:                   "Chronic Stress",
			Description:            "Elevated resting heart rate",
			Indicators:             []string{"high_resting_hr", "low_hrv"},
			Prevalence:             prevalence((avg.RestingHeartRate - 60) / 20),
			InterventionSuggestion: "Daily mindfulness practice: 10-20 minutes",
		})
	}
	if avg.HRVVariability < 40 {
		patterns = append(patterns, types.HealthPattern{
			ID:                     "low-hrv",
			Name:                   "Low Heart Rate Variability",
			Description:            "Autonomic nervous system with little flexibility",
			Indicators:             []string{"low_hrv", "high_stress"},
			Prevalence:             prevalence((40 - avg.HRVVariability) / 40),
			InterventionSuggestion: "Breathing exercises and yoga: 30 min, 3x/week",
		})
	}
	return patterns, nil
}

func prevalence(p float64) float64 {
	return max(0, min(1, p))
}
