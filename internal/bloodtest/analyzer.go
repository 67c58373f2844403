// Package bloodtest interprets a lab panel against fixed per-biomarker
// threshold ladders and builds the aggregate blood-test report.
package bloodtest

import (
	"slices"

	"biotwin/internal/ladder"
	"biotwin/internal/types"
)

const maxPriorityActions = 5

// Overall assessment messages, chosen in this order.
const (
	AssessmentCritical  = "Critical results detected. See a doctor immediately."
	AssessmentSeveral   = "Several markers are outside the ideal range. A medical consultation is recommended soon."
	AssessmentAttention = "Some markers need attention. Put the suggested recommendations into practice."
	AssessmentNormal    = "Results are generally within normal limits. Maintain your healthy habits."
)

type outcome struct {
	status          types.BiomarkerStatus
	severity        types.Severity
	interpretation  string
	recommendations []string
}

type marker struct {
	kind      types.BiomarkerKind
	outcomes  ladder.Ladder[outcome]
	timeframe func(o outcome) types.ActionTimeframe
}

func immediateIfCritical(o outcome) types.ActionTimeframe {
	if o.severity == types.SeverityCritical {
		return types.ActImmediately
	}
	return types.ActThisWeek
}

func thisMonth(outcome) types.ActionTimeframe { return types.ActThisMonth }

func thisWeekIfHigh(o outcome) types.ActionTimeframe {
	if o.status == types.BiomarkerHigh {
		return types.ActThisWeek
	}
	return types.ActThisMonth
}

func normal(interpretation string, recs ...string) outcome {
	return outcome{
		status:          types.BiomarkerNormal,
		severity:        types.SeverityNormal,
		interpretation:  interpretation,
		recommendations: recs,
	}
}

// markers is the panel in report order.
var markers = []marker{
	{
		kind: types.BiomarkerCortisol,
		outcomes: ladder.Ladder[outcome]{
			Rungs: []ladder.Rung[outcome]{
				{Match: ladder.Below(8), Value: outcome{
					status:         types.BiomarkerLow,
					severity:       types.SeverityInfo,
					interpretation: "Low cortisol may indicate adrenal insufficiency or chronic fatigue.",
					recommendations: []string{
						"Increase salt intake (1-2 g/day)",
						"DHEA supplementation (consult a doctor)",
						"Increase moderate physical activity",
						"Avoid prolonged fasting",
					},
				}},
				{Match: ladder.Above(20), Value: outcome{
					status:         types.BiomarkerHigh,
					severity:       types.SeverityCritical,
					interpretation: "Elevated cortisol indicates chronic stress and may compromise immunity.",
					recommendations: []string{
						"Stress reduction: meditate 15 min/day",
						"Increase sleep to 8-9 hours",
						"Avoid caffeine after 2pm",
						"Supplementation: ashwagandha or rhodiola",
					},
				}},
			},
			Fallback: normal("Cortisol is within normal limits.",
				"Keep a consistent sleep routine",
				"Continue your relaxation practices"),
		},
		timeframe: immediateIfCritical,
	},
	{
		kind: types.BiomarkerVitaminD,
		outcomes: ladder.Ladder[outcome]{
			Rungs: []ladder.Rung[outcome]{
				{Match: ladder.Below(20), Value: outcome{
					status:         types.BiomarkerLow,
					severity:       types.SeverityCritical,
					interpretation: "Severe vitamin D deficiency. Raises the risk of osteoporosis, infections and depression.",
					recommendations: []string{
						"Immediate supplementation: 4000-5000 IU/day",
						"Sun exposure: 15-20 minutes between 10 and 11am, 4-5x/week",
						"Vitamin D rich foods: salmon, sardines, egg yolk",
						"Retest in 8 weeks",
					},
				}},
				{Match: ladder.Below(30), Value: outcome{
					status:         types.BiomarkerLow,
					severity:       types.SeverityWarning,
					interpretation: "Insufficient vitamin D. Supplementation is recommended.",
					recommendations: []string{
						"Supplementation: 2000-3000 IU/day",
						"Sun exposure: 15-20 minutes between 10 and 11am, 3-4x/week",
						"Eat more oily fish",
						"Retest in 12 weeks",
					},
				}},
				{Match: ladder.Above(100), Value: outcome{
					status:         types.BiomarkerHigh,
					severity:       types.SeverityWarning,
					interpretation: "Vitamin D is excessively high. May cause hypercalcemia.",
					recommendations: []string{
						"Reduce supplementation",
						"Increase water intake",
						"Monitor calcium levels",
						"Consult a doctor",
					},
				}},
			},
			Fallback: normal("Vitamin D is at an optimal level for bone health and immunity.",
				"Keep regular sun exposure",
				"Continue supplementation if applicable"),
		},
		timeframe: immediateIfCritical,
	},
	{
		kind: types.BiomarkerHemoglobin,
		outcomes: ladder.Ladder[outcome]{
			Rungs: []ladder.Rung[outcome]{
				{Match: ladder.Below(12), Value: outcome{
					status:         types.BiomarkerLow,
					severity:       types.SeverityWarning,
					interpretation: "Mild anemia detected. May cause fatigue and shortness of breath.",
					recommendations: []string{
						"Increase iron intake: red meat, beans, spinach",
						"Iron supplementation (consult a doctor)",
						"Increase vitamin C for better absorption",
						"Retest in 6-8 weeks",
					},
				}},
				{Match: ladder.Above(17.5), Value: outcome{
					status:         types.BiomarkerHigh,
					severity:       types.SeverityInfo,
					interpretation: "Elevated hemoglobin. May indicate dehydration or polycythemia.",
					recommendations: []string{
						"Increase water intake (2-3 L/day)",
						"Reduce altitude exposure or strenuous activity",
						"Monitor hydration during exercise",
					},
				}},
			},
			Fallback: normal("Hemoglobin is normal. Good oxygen transport capacity.",
				"Keep a balanced diet",
				"Continue regular physical activity"),
		},
		timeframe: thisMonth,
	},
	{
		kind: types.BiomarkerGlucose,
		outcomes: ladder.Ladder[outcome]{
			Rungs: []ladder.Rung[outcome]{
				{Match: ladder.Below(70), Value: outcome{
					status:         types.BiomarkerLow,
					severity:       types.SeverityWarning,
					interpretation: "Low fasting glucose. May indicate hypoglycemia or metabolic problems.",
					recommendations: []string{
						"Increase complex carbohydrate intake",
						"Eat small meals every 3 hours",
						"Avoid prolonged fasting",
						"Consult an endocrinologist",
					},
				}},
				{Match: ladder.Above(110), Value: outcome{
					status:         types.BiomarkerHigh,
					severity:       types.SeverityWarning,
					interpretation: "Elevated fasting glucose. Increased risk of prediabetes or diabetes.",
					recommendations: []string{
						"Reduce refined carbohydrates and sugars",
						"Increase soluble fiber",
						"Aerobic exercise: 30 min, 5x/week",
						"Lose weight if needed",
						"Retest in 3 months",
					},
				}},
			},
			Fallback: normal("Fasting glucose is normal. Carbohydrate metabolism is adequate.",
				"Keep a balanced diet",
				"Continue regular physical activity"),
		},
		timeframe: thisWeekIfHigh,
	},
	{
		kind: types.BiomarkerTriglycerides,
		outcomes: ladder.Ladder[outcome]{
			Rungs: []ladder.Rung[outcome]{
				{Match: ladder.Above(200), Value: outcome{
					status:         types.BiomarkerHigh,
					severity:       types.SeverityCritical,
					interpretation: "Very high triglycerides. Significant risk of cardiovascular disease.",
					recommendations: []string{
						"Reduce refined carbohydrates and sugars",
						"Increase omega-3: salmon, sardines, flaxseed",
						"Aerobic exercise: 45 min, 5x/week",
						"Supplementation: omega-3 (1000-2000 mg/day)",
						"Consult a cardiologist",
					},
				}},
				{Match: ladder.Above(150), Value: outcome{
					status:         types.BiomarkerHigh,
					severity:       types.SeverityWarning,
					interpretation: "Elevated triglycerides. Increases cardiovascular risk.",
					recommendations: []string{
						"Reduce saturated fats",
						"Increase physical activity",
						"Reduce alcohol",
						"Supplementation: omega-3",
						"Retest in 3 months",
					},
				}},
			},
			Fallback: normal("Triglycerides are at a healthy level.",
				"Keep a balanced diet",
				"Continue regular exercise"),
		},
		timeframe: immediateIfCritical,
	},
	{
		kind: types.BiomarkerCholesterol,
		outcomes: ladder.Ladder[outcome]{
			Rungs: []ladder.Rung[outcome]{
				{Match: ladder.Above(240), Value: outcome{
					status:         types.BiomarkerHigh,
					severity:       types.SeverityWarning,
					interpretation: "Elevated total cholesterol. Increases the risk of atherosclerosis and heart disease.",
					recommendations: []string{
						"Reduce saturated fats",
						"Increase soluble fiber",
						"Aerobic exercise: 30 min, 5x/week",
						"Supplementation: plant sterols or policosanol",
						"Retest in 3 months",
					},
				}},
				{Match: ladder.Above(200), Value: outcome{
					status:         types.BiomarkerHigh,
					severity:       types.SeverityInfo,
					interpretation: "Total cholesterol is slightly elevated.",
					recommendations: []string{
						"Eat more foods with unsaturated fats",
						"Reduce refined carbohydrates",
						"Increase physical activity",
					},
				}},
			},
			Fallback: normal("Total cholesterol is at a desirable level.",
				"Keep a healthy diet",
				"Continue regular exercise"),
		},
		timeframe: thisMonth,
	},
}

// followUps maps a (biomarker, status) finding to the tests it suggests.
var followUps = []struct {
	kind   types.BiomarkerKind
	status types.BiomarkerStatus
	tests  []string
}{
	{types.BiomarkerGlucose, types.BiomarkerHigh, []string{"HbA1c (glycated hemoglobin)", "Glucose tolerance test"}},
	{types.BiomarkerTriglycerides, types.BiomarkerHigh, []string{"Full lipid panel (HDL, LDL)", "Apolipoprotein B"}},
	{types.BiomarkerCortisol, types.BiomarkerHigh, []string{"Dexamethasone suppression test", "24h salivary cortisol"}},
	{types.BiomarkerVitaminD, types.BiomarkerLow, []string{"Serum calcium", "Phosphorus", "Alkaline phosphatase"}},
}

// Analyze interprets a single biomarker value.
func Analyze(kind types.BiomarkerKind, value float64) types.BloodTestAnalysis {
	for _, m := range markers {
		if m.kind == kind {
			return m.analyze(value)
		}
	}
	panic("bloodtest: unknown biomarker " + string(kind))
}

func (m marker) analyze(value float64) types.BloodTestAnalysis {
	ref := rangeFor(m.kind)
	o := m.outcomes.Eval(value)
	return types.BloodTestAnalysis{
		Biomarker:       types.Biomarker{Kind: m.kind, Name: ref.Name},
		Value:           value,
		Unit:            ref.Unit,
		ReferenceMin:    ref.Min,
		ReferenceMax:    ref.Max,
		Status:          o.status,
		Severity:        o.severity,
		Interpretation:  o.interpretation,
		Recommendations: slices.Clone(o.recommendations),
		ActionTimeframe: m.timeframe(o),
	}
}

// AnalyzeBloodTest builds the full report for a lab panel. Analyses always
// come back in the order cortisol, vitamin D, hemoglobin, glucose,
// triglycerides, cholesterol.
func AnalyzeBloodTest(b types.BiomarkerData) types.BloodTestReport {
	analyses := make([]types.BloodTestAnalysis, 0, len(markers))
	for _, m := range markers {
		analyses = append(analyses, m.analyze(valueOf(b, m.kind)))
	}
	return types.BloodTestReport{
		Timestamp:         b.Timestamp,
		Analyses:          analyses,
		OverallAssessment: overallAssessment(analyses),
		PriorityActions:   priorityActions(analyses),
		FollowUpTests:     followUpTests(analyses),
	}
}

func overallAssessment(analyses []types.BloodTestAnalysis) string {
	var critical, warnings int
	for _, a := range analyses {
		switch a.Severity {
		case types.SeverityCritical:
			critical++
		case types.SeverityWarning:
			warnings++
		}
	}
	switch {
	case critical > 0:
		return AssessmentCritical
	case warnings > 2:
		return AssessmentSeveral
	case warnings > 0:
		return AssessmentAttention
	default:
		return AssessmentNormal
	}
}

func priorityActions(analyses []types.BloodTestAnalysis) []string {
	seen := make(map[string]struct{})
	actions := make([]string, 0, maxPriorityActions)
	for _, a := range analyses {
		if a.Severity == types.SeverityNormal {
			continue
		}
		for _, rec := range a.Recommendations[:min(2, len(a.Recommendations))] {
			if _, ok := seen[rec]; ok {
				continue
			}
			seen[rec] = struct{}{}
			actions = append(actions, rec)
		}
	}
	if len(actions) > maxPriorityActions {
		actions = actions[:maxPriorityActions]
	}
	return actions
}

func followUpTests(analyses []types.BloodTestAnalysis) []string {
	seen := make(map[string]struct{})
	tests := []string{}
	for _, a := range analyses {
		for _, f := range followUps {
			if a.Biomarker.Kind != f.kind || a.Status != f.status {
				continue
			}
			for _, t := range f.tests {
				if _, ok := seen[t]; !ok {
					seen[t] = struct{}{}
					tests = append(tests, t)
				}
			}
		}
	}
	return tests
}
