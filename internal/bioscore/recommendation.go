package bioscore

import "biotwin/internal/types"

type recommendationRule struct {
	applies func(r types.HealthRecord) bool
	rec     types.Recommendation
}

// Order matters: the first matching rule is the day's recommendation.
var recommendationRules = []recommendationRule{
	{
		applies: func(r types.HealthRecord) bool { return r.SleepHours < 6 },
		rec: types.Recommendation{
			Title:       "Take a 20-minute nap",
			Description: "You slept less than 6 hours last night. A short nap between 1pm and 3pm can restore energy and sharpen focus.",
			Priority:    types.RecommendationHigh,
			Icon:        types.IconAlert,
			Category:    types.CategorySleep,
		},
	},
	{
		applies: func(r types.HealthRecord) bool { return r.SleepHours < 7 },
		rec: types.Recommendation{
			Title:       "Sleep more tomorrow",
			Description: "You slept a little less than the recommended 7-9 hours. Try going to bed 30 minutes earlier to improve recovery.",
			Priority:    types.RecommendationMedium,
			Icon:        types.IconTip,
			Category:    types.CategorySleep,
		},
	},
	{
		applies: func(r types.HealthRecord) bool { return r.Steps < 5000 },
		rec: types.Recommendation{
			Title:       "Increase your activity",
			Description: "You took fewer than 5,000 steps today. A 30-minute walk at lunch or some light activity gets you closer to 10,000.",
			Priority:    types.RecommendationHigh,
			Icon:        types.IconAlert,
			Category:    types.CategoryActivity,
		},
	},
	{
		applies: func(r types.HealthRecord) bool { return r.Steps < 8000 },
		rec: types.Recommendation{
			Title:       "Keep moving",
			Description: "You are on track. Another 2,000 steps and you reach the daily goal of 10,000; a brisk walk will finish it.",
			Priority:    types.RecommendationMedium,
			Icon:        types.IconTrend,
			Category:    types.CategoryActivity,
		},
	},
	{
		applies: func(r types.HealthRecord) bool { return r.RestingHeartRate > 75 },
		rec: types.Recommendation{
			Title:       "Reduce stress",
			Description: "Your resting heart rate is elevated (above 75 bpm), a possible sign of stress. Try 10 minutes of meditation or deep breathing.",
			Priority:    types.RecommendationHigh,
			Icon:        types.IconAlert,
			Category:    types.CategoryStress,
		},
	},
	{
		applies: func(r types.HealthRecord) bool { return r.RestingHeartRate > 70 },
		rec: types.Recommendation{
			Title:       "Practice relaxation",
			Description: "Your resting heart rate is slightly elevated. Yoga or an easy walk can help bring it down.",
			Priority:    types.RecommendationMedium,
			Icon:        types.IconTip,
			Category:    types.CategoryStress,
		},
	},
	{
		applies: func(r types.HealthRecord) bool {
			return r.SleepHours >= 7 && r.Steps >= 8000 && r.RestingHeartRate <= 70
		},
		rec: types.Recommendation{
			Title:       "You are in great shape!",
			Description: "Your sleep, activity and heart rate metrics are excellent. Keep up these healthy habits.",
			Priority:    types.RecommendationLow,
			Icon:        types.IconTrend,
			Category:    types.CategoryRecovery,
		},
	},
}

var maintainRecommendation = types.Recommendation{
	Title:       "Keep the pace",
	Description: "Your health data is within the expected range. Keep monitoring your metrics and adjust as needed.",
	Priority:    types.RecommendationLow,
	Icon:        types.IconTip,
	Category:    types.CategoryRecovery,
}

// DailyRecommendation picks exactly one recommendation for the record.
func DailyRecommendation(r types.HealthRecord) types.Recommendation {
	for _, rule := range recommendationRules {
		if rule.applies(r) {
			return rule.rec
		}
	}
	return maintainRecommendation
}
