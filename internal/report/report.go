// Package report assembles the shareable longevity report from the outputs
// of the scoring engines.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"biotwin/internal/history"
	"biotwin/internal/types"
)

// CheckupInterval is the gap between a report and the suggested next checkup.
const CheckupInterval = 30 * 24 * time.Hour

const (
	maxAlertRecommendations     = 3
	maxBloodTestRecommendations = 2
)

// Input carries everything Assemble needs. Biomarkers and BloodTest are
// optional.
type Input struct {
	PatientName    string
	BioScore       int
	LongevityScore int
	History        []types.HealthRecord
	Biomarkers     *types.BiomarkerData
	BloodTest      *types.BloodTestReport
	Alerts         []types.CorrelationAlert
	Now            time.Time
}

// Assemble builds the report. Alerts are expected in the engine's severity
// order; only the first three contribute recommendations.
func Assemble(in Input) types.LongevityReport {
	return types.LongevityReport{
		ID:              uuid.NewString(),
		PatientName:     in.PatientName,
		ReportDate:      in.Now,
		BioScore:        in.BioScore,
		LongevityScore:  in.LongevityScore,
		History:         in.History,
		Averages:        history.Averages(in.History),
		Biomarkers:      in.Biomarkers,
		BloodTest:       in.BloodTest,
		Alerts:          in.Alerts,
		Recommendations: Recommendations(in.BioScore, in.Alerts, in.BloodTest),
		NextCheckup:     in.Now.Add(CheckupInterval),
	}
}

// Recommendations lists two bio-score band lines, one line per leading
// alert, then the first blood-test priority actions.
func Recommendations(bioScore int, alerts []types.CorrelationAlert, bloodTest *types.BloodTestReport) []string {
	var recs []string
	switch {
	case bioScore < 40:
		recs = append(recs,
			"URGENT: see a doctor for a complete health evaluation",
			"Make immediate changes: sleep more, reduce stress, increase activity")
	case bioScore < 60:
		recs = append(recs,
			"Prioritize improvements in sleep and physical activity",
			"Consider a consultation with a preventive medicine specialist")
	case bioScore < 80:
		recs = append(recs,
			"Continue your current healthy habits",
			"Explore advanced health optimizations")
	default:
		recs = append(recs,
			"Excellent overall health. Keep your current habits",
			"Consider taking part in longevity studies")
	}

	for _, a := range alerts[:min(maxAlertRecommendations, len(alerts))] {
		if len(a.Recommendations) == 0 {
			continue
		}
		recs = append(recs, fmt.Sprintf("%s: %s", a.Title, a.Recommendations[0]))
	}

	if bloodTest != nil {
		n := min(maxBloodTestRecommendations, len(bloodTest.PriorityActions))
		recs = append(recs, bloodTest.PriorityActions[:n]...)
	}
	return recs
}
