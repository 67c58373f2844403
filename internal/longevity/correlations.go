// Package longevity detects cross-metric risk combinations, multi-day
// behavioral patterns and computes the Longevity Score.
package longevity

import (
	"fmt"
	"slices"

	"biotwin/internal/history"
	"biotwin/internal/types"
)

// correlationRule fires when check returns true. Rules that need lab values
// set needsBiomarkers and are skipped when none are supplied.
type correlationRule struct {
	needsBiomarkers bool
	check           func(r types.HealthRecord, b *types.BiomarkerData) bool
	build           func(r types.HealthRecord, b *types.BiomarkerData) types.CorrelationAlert
}

// Evaluation order is the tie-break among alerts of equal risk.
var correlationRules = []correlationRule{
	{
		check: func(r types.HealthRecord, _ *types.BiomarkerData) bool {
			return r.Steps < 5000 && r.SleepHours < 6
		},
		build: func(r types.HealthRecord, _ *types.BiomarkerData) types.CorrelationAlert {
			return types.CorrelationAlert{
				ID:    "low-activity-poor-sleep",
				Title: "Chronic Fatigue Risk",
				Description: fmt.Sprintf("You logged %d steps and only %.1fh of sleep. This combination significantly raises fatigue risk and lowers immunity.",
					r.Steps, r.SleepHours),
				Metrics:        []string{types.FieldSteps, types.FieldSleepHours},
				BioScoreImpact: -15,
				RiskLevel:      types.RiskHigh,
				Recommendations: []string{
					"Prioritize 7-8 hours of sleep tonight",
					"Take a light 20-minute walk",
					"Increase water intake (2L+)",
					"Avoid caffeine after 2pm",
				},
				Timeframe: types.TimeframeImmediate,
			}
		},
	},
	{
		check: func(r types.HealthRecord, _ *types.BiomarkerData) bool {
			return r.RestingHeartRate > 75 && r.SleepHours < 7
		},
		build: func(r types.HealthRecord, _ *types.BiomarkerData) types.CorrelationAlert {
			return types.CorrelationAlert{
				ID:    "high-hr-low-sleep-stress",
				Title: "Chronic Stress Pattern Detected",
				Description: fmt.Sprintf("A resting heart rate of %.0f bpm with inadequate sleep suggests sympathetic nervous system activation.",
					r.RestingHeartRate),
				Metrics:        []string{types.FieldRestingHeartRate, types.FieldSleepHours},
				BioScoreImpact: -12,
				RiskLevel:      types.RiskHigh,
				Recommendations: []string{
					"Meditation practice: 10-15 minutes",
					"Diaphragmatic breathing: 4-7-8 (inhale 4s, hold 7s, exhale 8s)",
					"Cut back on caffeine and alcohol",
					"See a sleep specialist",
				},
				Timeframe: types.TimeframeImmediate,
			}
		},
	},
	{
		check: func(r types.HealthRecord, _ *types.BiomarkerData) bool {
			return r.HRVVariability < 30 && r.RestingHeartRate > 70 && r.SleepHours < 7
		},
		build: func(r types.HealthRecord, _ *types.BiomarkerData) types.CorrelationAlert {
			return types.CorrelationAlert{
				ID:    "recovery-crisis",
				Title: "Recovery Crisis Detected",
				Description: fmt.Sprintf("Low HRV (%.0fms), elevated heart rate and insufficient sleep indicate a strained autonomic nervous system.",
					r.HRVVariability),
				Metrics:        []string{types.FieldHRVVariability, types.FieldRestingHeartRate, types.FieldSleepHours},
				BioScoreImpact: -20,
				RiskLevel:      types.RiskCritical,
				Recommendations: []string{
					"URGENT: cut back on strenuous activity",
					"Increase sleep to 8-9 hours",
					"Restorative yoga or tai chi",
					"Supplementation: magnesium + omega-3",
					"See a doctor if this persists for more than 3 days",
				},
				Timeframe: types.TimeframeImmediate,
			}
		},
	},
	{
		needsBiomarkers: true,
		check: func(r types.HealthRecord, b *types.BiomarkerData) bool {
			return r.Steps < 4000 && b.Triglycerides > 150
		},
		build: func(r types.HealthRecord, b *types.BiomarkerData) types.CorrelationAlert {
			return types.CorrelationAlert{
				ID:    "metabolic-syndrome-risk",
				Title: "Metabolic Syndrome Risk",
				Description: fmt.Sprintf("Low activity (%d steps) with elevated triglycerides (%.0f mg/dL) raises cardiovascular risk.",
					r.Steps, b.Triglycerides),
				Metrics:        []string{types.FieldSteps, types.FieldTriglycerides},
				BioScoreImpact: -18,
				RiskLevel:      types.RiskHigh,
				Recommendations: []string{
					"Progressively increase activity: +2000 steps/day",
					"Reduce refined carbohydrates",
					"Increase soluble fiber",
					"Aerobic exercise: 30 min, 5x/week",
					"Monitor lipids regularly",
				},
				Timeframe: types.TimeframeThisWeek,
			}
		},
	},
	{
		needsBiomarkers: true,
		check: func(r types.HealthRecord, b *types.BiomarkerData) bool {
			return b.VitaminD < 30 && b.Cortisol > 20 && r.SleepHours < 7
		},
		build: func(r types.HealthRecord, b *types.BiomarkerData) types.CorrelationAlert {
			return types.CorrelationAlert{
				ID:    "immune-suppression",
				Title: "Immune Suppression Detected",
				Description: fmt.Sprintf("Low vitamin D (%.0f ng/mL), elevated cortisol (%.1f µg/dL) and %.1fh of sleep compromise immunity.",
					b.VitaminD, b.Cortisol, r.SleepHours),
				Metrics:        []string{types.FieldVitaminD, types.FieldCortisol, types.FieldSleepHours},
				BioScoreImpact: -16,
				RiskLevel:      types.RiskHigh,
				Recommendations: []string{
					"Sun exposure: 15-20 minutes between 10 and 11am",
					"Vitamin D supplementation: 2000-4000 IU/day",
					"Vitamin D rich foods: salmon, eggs, mushrooms",
					"Reduce stress through meditation",
					"Sleep: 8-9 hours a night",
				},
				Timeframe: types.TimeframeThisWeek,
			}
		},
	},
	{
		check: func(r types.HealthRecord, _ *types.BiomarkerData) bool {
			return r.Steps >= 10000 && r.SleepHours >= 7.5 && r.RestingHeartRate <= 65 && r.HRVVariability >= 50
		},
		build: func(types.HealthRecord, *types.BiomarkerData) types.CorrelationAlert {
			return types.CorrelationAlert{
				ID:             "longevity-optimization",
				Title:          "Optimized Longevity Pattern",
				Description:    "You are keeping an exceptional health pattern with ideal activity, sleep, heart rate and HRV.",
				Metrics:        []string{types.FieldSteps, types.FieldSleepHours, types.FieldRestingHeartRate, types.FieldHRVVariability},
				BioScoreImpact: 10,
				RiskLevel:      types.RiskLow,
				Recommendations: []string{
					"Keep your current habits",
					"Consider performance challenges",
					"Explore advanced nutrition optimization",
					"Take part in longevity studies",
				},
				Timeframe: types.TimeframeOngoing,
			}
		},
	},
}

// AnalyzeCorrelations evaluates every rule against the latest record and the
// optional lab panel. Alerts come back most severe first; alerts of equal
// risk keep rule order.
func AnalyzeCorrelations(records []types.HealthRecord, biomarkers *types.BiomarkerData) ([]types.CorrelationAlert, error) {
	if err := history.Validate(records); err != nil {
		return nil, err
	}
	latest := types.Latest(records)

	alerts := []types.CorrelationAlert{}
	for _, rule := range correlationRules {
		if rule.needsBiomarkers && biomarkers == nil {
			continue
		}
		if rule.check(latest, biomarkers) {
			alerts = append(alerts, rule.build(latest, biomarkers))
		}
	}

	slices.SortStableFunc(alerts, func(a, b types.CorrelationAlert) int {
		return a.RiskLevel.Rank() - b.RiskLevel.Rank()
	})
	return alerts, nil
}

// CalculateAdjustedBioScore shifts base by the summed impact of the alerts and
// clamps the result to [0, 100].
func CalculateAdjustedBioScore(base int, alerts []types.CorrelationAlert) types.AdjustedBioScore {
	total := 0
	for _, a := range alerts {
		total += a.BioScoreImpact
	}
	return types.AdjustedBioScore{
		AdjustedScore: max(0, min(100, base+total)),
		TotalImpact:   total,
	}
}
