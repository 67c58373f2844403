// Package synthetic generates plausible health histories and lab panels for
// demo accounts and load tests.
package synthetic

import (
	"fmt"
	"math"

	"biotwin/internal/types"
)

// Profile selects the lifestyle a generated history imitates.
type Profile string

const (
	ProfileHealthy        Profile = "healthy"
	ProfileIrregularSleep Profile = "irregular_sleep"
	ProfileHighStress     Profile = "high_stress"
	ProfileSedentary      Profile = "sedentary"
)

// Profiles lists every supported profile.
var Profiles = []Profile{ProfileHealthy, ProfileIrregularSleep, ProfileHighStress, ProfileSedentary}

// DefaultDays is the conventional trailing-week history length.
const DefaultDays = 7

// ParseProfile validates a profile name.
func ParseProfile(s string) (Profile, error) {
	for _, p := range Profiles {
		if string(p) == s {
			return p, nil
		}
	}
	return "", types.NewAppErrorWithDetails(
		types.ErrCodeValidationProfile,
		fmt.Sprintf("unknown profile %q", s),
		nil,
		map[string]any{"supported": Profiles},
	)
}

// Generator produces synthetic records. It is safe for concurrent use when
// its random source is.
type Generator struct {
	rng   types.RandomSource
	clock types.Clock
}

// NewGenerator returns a Generator. Nil arguments select the process-wide
// random source and the system clock.
func NewGenerator(rng types.RandomSource, clock types.Clock) *Generator {
	if rng == nil {
		rng = types.GlobalRand{}
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Generator{rng: rng, clock: clock}
}

func (g *Generator) between(lo, hi float64) float64 {
	return g.rng.Float64()*(hi-lo) + lo
}

// History returns days records, oldest first, with the last one dated today.
// An unknown profile falls back to healthy.
func (g *Generator) History(p Profile, days int) []types.HealthRecord {
	if days <= 0 {
		days = DefaultDays
	}
	today := g.clock.Now()
	out := make([]types.HealthRecord, 0, days)
	for dayIndex := days - 1; dayIndex >= 0; dayIndex-- {
		r := g.day(p, dayIndex)
		r.Timestamp = today.AddDate(0, 0, -dayIndex)
		out = append(out, r)
	}
	return out
}

// day builds one record. dayIndex counts back from today (0).
func (g *Generator) day(p Profile, dayIndex int) types.HealthRecord {
	switch p {
	case ProfileIrregularSleep:
		sleep := 5.5 + math.Sin(float64(dayIndex)*math.Pi/3.5)*1.5
		return types.HealthRecord{
			Steps:            int(math.Round(g.between(6000, 9000))),
			RestingHeartRate: g.between(68, 78),
			SleepHours:       max(4.5, min(7, sleep)),
			ActiveCalories:   g.between(300, 450),
			Distance:         g.between(4, 6),
			HRVVariability:   g.between(25, 40),
		}
	case ProfileHighStress:
		// Stress eases slightly toward today.
		relief := float64(dayIndex) * 0.5
		return types.HealthRecord{
			Steps:            int(math.Round(g.between(5000, 8000))),
			RestingHeartRate: max(70, g.between(80, 95)-relief),
			SleepHours:       g.between(6, 7.5),
			ActiveCalories:   g.between(250, 400),
			Distance:         g.between(3, 5),
			HRVVariability:   max(20, g.between(30, 45)-relief),
		}
	case ProfileSedentary:
		return types.HealthRecord{
			Steps:            int(math.Round(g.between(2000, 4000))),
			RestingHeartRate: g.between(72, 85),
			SleepHours:       g.between(6.5, 8),
			ActiveCalories:   g.between(150, 300),
			Distance:         g.between(1, 3),
			HRVVariability:   g.between(30, 45),
		}
	default:
		return types.HealthRecord{
			Steps:            int(math.Round(g.between(9000, 12000))),
			RestingHeartRate: g.between(58, 65),
			SleepHours:       g.between(7.5, 8.5),
			ActiveCalories:   g.between(450, 600),
			Distance:         g.between(6.5, 8.5),
			HRVVariability:   g.between(45, 65),
		}
	}
}

type labRanges struct {
	cortisol, vitaminD, hemoglobin, glucose, triglycerides, cholesterol [2]float64
}

var profileLabs = map[Profile]labRanges{
	ProfileHighStress: {
		cortisol: [2]float64{18, 25}, vitaminD: [2]float64{20, 30}, hemoglobin: [2]float64{13, 14.5},
		glucose: [2]float64{95, 110}, triglycerides: [2]float64{120, 180}, cholesterol: [2]float64{200, 240},
	},
	ProfileIrregularSleep: {
		cortisol: [2]float64{15, 22}, vitaminD: [2]float64{25, 35}, hemoglobin: [2]float64{13.5, 15},
		glucose: [2]float64{90, 105}, triglycerides: [2]float64{100, 150}, cholesterol: [2]float64{180, 220},
	},
	ProfileSedentary: {
		cortisol: [2]float64{16, 24}, vitaminD: [2]float64{15, 28}, hemoglobin: [2]float64{12.5, 14},
		glucose: [2]float64{100, 120}, triglycerides: [2]float64{140, 200}, cholesterol: [2]float64{210, 260},
	},
	ProfileHealthy: {
		cortisol: [2]float64{10, 15}, vitaminD: [2]float64{30, 50}, hemoglobin: [2]float64{14, 15.5},
		glucose: [2]float64{85, 100}, triglycerides: [2]float64{80, 120}, cholesterol: [2]float64{160, 200},
	},
}

// Biomarkers returns a lab panel drawn from the profile's ranges, stamped
// now. An unknown profile falls back to healthy.
func (g *Generator) Biomarkers(p Profile) types.BiomarkerData {
	r, ok := profileLabs[p]
	if !ok {
		r = profileLabs[ProfileHealthy]
	}
	draw := func(b [2]float64) float64 { return g.between(b[0], b[1]) }
	return types.BiomarkerData{
		Cortisol:      draw(r.cortisol),
		VitaminD:      draw(r.vitaminD),
		Hemoglobin:    draw(r.hemoglobin),
		Glucose:       draw(r.glucose),
		Triglycerides: draw(r.triglycerides),
		Cholesterol:   draw(r.cholesterol),
		Timestamp:     g.clock.Now(),
	}
}
