// Package insights turns multi-day trends and lab values into a prioritized
// list of short, actionable suggestions.
package insights

import (
	"fmt"
	"math"
	"slices"

	"biotwin/internal/history"
	"biotwin/internal/types"
)

// Engine generates predictive insights. The zero value is not usable; build
// one with NewEngine.
type Engine struct {
	rng       types.RandomSource
	clock     types.Clock
	hydration bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandomSource replaces the source used for the hydration reminder draw.
func WithRandomSource(r types.RandomSource) Option {
	return func(e *Engine) { e.rng = r }
}

// WithClock sets the clock used to stamp insights.
func WithClock(c types.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithHydrationReminders toggles the random hydration reminder entirely.
func WithHydrationReminders(enabled bool) Option {
	return func(e *Engine) { e.hydration = enabled }
}

// NewEngine returns an Engine using the process-wide random source and the
// system clock unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rng:       types.GlobalRand{},
		clock:     types.RealClock{},
		hydration: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Trends summarizes a history for the insight rules.
type Trends struct {
	HRVChangePercent float64 `json:"hrv_change_percent"`
	SleepAverage     float64 `json:"sleep_average"`
	SleepDelta       float64 `json:"sleep_delta"`
	StressAverage    float64 `json:"stress_average"`
	StressDelta      float64 `json:"stress_delta"`
	ActivityAverage  float64 `json:"activity_average"`
	ActivityDelta    float64 `json:"activity_delta"`
}

// AnalyzeTrends computes the HRV half-split change and the sleep, resting
// heart rate and step means with their last-minus-first deltas.
func AnalyzeTrends(records []types.HealthRecord) (Trends, error) {
	if err := history.Validate(records); err != nil {
		return Trends{}, err
	}
	return Trends{
		HRVChangePercent: history.HalfSplitChange(records, history.HRV),
		SleepAverage:     history.Mean(records, history.SleepHours),
		SleepDelta:       history.Delta(records, history.SleepHours),
		StressAverage:    history.Mean(records, history.RestingHeartRate),
		StressDelta:      history.Delta(records, history.RestingHeartRate),
		ActivityAverage:  history.Mean(records, history.Steps),
		ActivityDelta:    history.Delta(records, history.Steps),
	}, nil
}

// GenerateInsights evaluates the trend pairs, the hydration reminder and the
// lab rules. Insights are sorted urgent first; equal priorities keep
// generation order.
func (e *Engine) GenerateInsights(records []types.HealthRecord, biomarkers *types.BiomarkerData) ([]types.PredictiveInsight, error) {
	trends, err := AnalyzeTrends(records)
	if err != nil {
		return nil, err
	}

	var out []types.PredictiveInsight
	add := func(in *types.PredictiveInsight) {
		if in != nil {
			out = append(out, *in)
		}
	}

	add(hrvInsight(trends.HRVChangePercent))
	add(sleepInsight(trends.SleepAverage))
	add(stressInsight(trends.StressAverage))
	add(activityInsight(trends.ActivityAverage))
	if e.hydration && e.rng.Float64() > 0.5 {
		add(&hydrationReminder)
	}
	if biomarkers != nil {
		out = append(out, biomarkerInsights(*biomarkers)...)
	}

	now := e.clock.Now()
	for i := range out {
		out[i].Timestamp = now
	}
	slices.SortStableFunc(out, func(a, b types.PredictiveInsight) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
	if out == nil {
		out = []types.PredictiveInsight{}
	}
	return out, nil
}

func hrvInsight(change float64) *types.PredictiveInsight {
	switch {
	case change < -10:
		return &types.PredictiveInsight{
			ID:              "hrv-drop-meditation",
			Title:           "Your heart rate variability dropped",
			Description:     fmt.Sprintf("We detected a %.1f%% drop in your HRV over the last few days, a sign of accumulated stress.", math.Abs(change)),
			Action:          "Do 5 minutes of meditation now",
			Priority:        types.PriorityUrgent,
			Category:        types.CategoryMeditation,
			Icon:            types.IconMeditation,
			TimeToAct:       "now",
			EstimatedImpact: "+15% HRV improvement",
		}
	case change < -5:
		return &types.PredictiveInsight{
			ID:              "hrv-slight-drop",
			Title:           "Heart rate variability is declining",
			Description:     fmt.Sprintf("Your HRV is trending down (%.1f%%). Consider adding more relaxing activities.", math.Abs(change)),
			Action:          "Practice deep breathing for 10 minutes",
			Priority:        types.PriorityImportant,
			Category:        types.CategoryMeditation,
			Icon:            types.IconTip,
			TimeToAct:       "today",
			EstimatedImpact: "+8% HRV improvement",
		}
	}
	return nil
}

func sleepInsight(avg float64) *types.PredictiveInsight {
	switch {
	case avg < 6:
		return &types.PredictiveInsight{
			ID:              "sleep-insufficient",
			Title:           "Insufficient sleep detected",
			Description:     fmt.Sprintf("You slept %.1f hours on average over the last few days. Recommended: 7-9 hours.", avg),
			Action:          "Take a 20-minute nap between 1pm and 3pm",
			Priority:        types.PriorityUrgent,
			Category:        types.CategorySleep,
			Icon:            types.IconAlert,
			TimeToAct:       "today",
			EstimatedImpact: "+30% energy restoration",
		}
	case avg < 7:
		return &types.PredictiveInsight{
			ID:              "sleep-suboptimal",
			Title:           "Sleep below the ideal",
			Description:     fmt.Sprintf("You slept %.1f hours on average. A little more sleep can improve your recovery.", avg),
			Action:          "Go to bed 30 minutes earlier tomorrow",
			Priority:        types.PriorityImportant,
			Category:        types.CategorySleep,
			Icon:            types.IconTip,
			TimeToAct:       "tonight",
			EstimatedImpact: "+10% recovery",
		}
	}
	return nil
}

func stressInsight(avg float64) *types.PredictiveInsight {
	switch {
	case avg > 75:
		return &types.PredictiveInsight{
			ID:              "stress-elevated",
			Title:           "Elevated stress levels",
			Description:     fmt.Sprintf("Your resting heart rate averages %.0f bpm, indicating elevated stress.", avg),
			Action:          "Do a yoga session or a 20-minute walk",
			Priority:        types.PriorityUrgent,
			Category:        types.CategoryStress,
			Icon:            types.IconAlert,
			TimeToAct:       "now",
			EstimatedImpact: "-12 bpm resting heart rate",
		}
	case avg > 70:
		return &types.PredictiveInsight{
			ID:              "stress-moderate",
			Title:           "Moderate stress detected",
			Description:     fmt.Sprintf("Your resting heart rate is slightly elevated at %.0f bpm. Relaxation can help.", avg),
			Action:          "Practice guided meditation or deep breathing",
			Priority:        types.PriorityImportant,
			Category:        types.CategoryMeditation,
			Icon:            types.IconTip,
			TimeToAct:       "today",
			EstimatedImpact: "-5 bpm resting heart rate",
		}
	}
	return nil
}

func activityInsight(avg float64) *types.PredictiveInsight {
	switch {
	case avg < 5000:
		return &types.PredictiveInsight{
			ID:              "activity-low",
			Title:           "Insufficient physical activity",
			Description:     fmt.Sprintf("You averaged %.0f steps. Recommended goal: 10,000 steps.", avg),
			Action:          "Walk for 30 minutes at lunch",
			Priority:        types.PriorityImportant,
			Category:        types.CategoryActivity,
			Icon:            types.IconTrend,
			TimeToAct:       "today",
			EstimatedImpact: "+2000 steps",
		}
	case avg < 8000:
		return &types.PredictiveInsight{
			ID:              "activity-moderate",
			Title:           "You are on the right track",
			Description:     fmt.Sprintf("You averaged %.0f steps. A little more to reach the goal!", avg),
			Action:          "Take a brisk walk to complete 10,000 steps",
			Priority:        types.PriorityInformational,
			Category:        types.CategoryActivity,
			Icon:            types.IconTip,
			TimeToAct:       "today",
			EstimatedImpact: "+2000 steps",
		}
	}
	return nil
}

var hydrationReminder = types.PredictiveInsight{
	ID:              "hydration-reminder",
	Title:           "Stay hydrated",
	Description:     "Good hydration improves heart rate variability and reduces stress.",
	Action:          "Drink 500ml of water now",
	Priority:        types.PriorityInformational,
	Category:        types.CategoryHydration,
	Icon:            types.IconWater,
	TimeToAct:       "now",
	EstimatedImpact: "+5% HRV improvement",
}

func biomarkerInsights(b types.BiomarkerData) []types.PredictiveInsight {
	var out []types.PredictiveInsight
	if b.Cortisol > 20 {
		out = append(out, types.PredictiveInsight{
			ID:              "cortisol-high",
			Title:           "Elevated cortisol detected",
			Description:     fmt.Sprintf("Your cortisol is %.1f µg/dL (normal: 10-20), a sign of chronic stress.", b.Cortisol),
			Action:          "Add relaxing activities: yoga, meditation or massage",
			Priority:        types.PriorityImportant,
			Category:        types.CategoryStress,
			Icon:            types.IconAlert,
			TimeToAct:       "this week",
			EstimatedImpact: "-2 µg/dL cortisol reduction",
		})
	}
	if b.VitaminD < 30 {
		out = append(out, types.PredictiveInsight{
			ID:              "vitamin-d-low",
			Title:           "Low vitamin D",
			Description:     fmt.Sprintf("Your vitamin D is %.1f ng/mL (optimal: 30-50). Deficiency can affect mood and immunity.", b.VitaminD),
			Action:          "Get more sun (15-20 min/day) or take a supplement",
			Priority:        types.PriorityImportant,
			Category:        types.CategoryNutrition,
			Icon:            types.IconTip,
			TimeToAct:       "this week",
			EstimatedImpact: "+10 ng/mL vitamin D",
		})
	}
	if b.Glucose > 110 {
		out = append(out, types.PredictiveInsight{
			ID:              "glucose-elevated",
			Title:           "Elevated fasting glucose",
			Description:     fmt.Sprintf("Your glucose is %.0f mg/dL (normal: 70-100). Consider reviewing your diet.", b.Glucose),
			Action:          "Cut refined carbohydrates and increase physical activity",
			Priority:        types.PriorityImportant,
			Category:        types.CategoryNutrition,
			Icon:            types.IconAlert,
			TimeToAct:       "this week",
			EstimatedImpact: "-15 mg/dL glucose",
		})
	}
	if b.Triglycerides > 150 {
		out = append(out, types.PredictiveInsight{
			ID:              "triglycerides-high",
			Title:           "Elevated triglycerides",
			Description:     fmt.Sprintf("Your triglycerides are %.0f mg/dL (normal: <150), which may indicate cardiovascular risk.", b.Triglycerides),
			Action:          "Increase aerobic exercise and reduce simple sugars",
			Priority:        types.PriorityImportant,
			Category:        types.CategoryActivity,
			Icon:            types.IconAlert,
			TimeToAct:       "this week",
			EstimatedImpact: "-30 mg/dL triglycerides",
		})
	}
	return out
}
