package bloodtest

import (
	"biotwin/internal/ladder"
	"biotwin/internal/types"
)

// ReferenceRange is the clinical reference interval of a biomarker.
type ReferenceRange struct {
	Kind  types.BiomarkerKind `json:"kind"`
	Name  string              `json:"name"`
	Min   float64             `json:"min"`
	Max   float64             `json:"max"`
	Unit  string              `json:"unit"`
	Label string              `json:"label"`
}

var referenceRanges = []ReferenceRange{
	{Kind: types.BiomarkerCortisol, Name: "Cortisol", Min: 10, Max: 20, Unit: "µg/dL", Label: "normal"},
	{Kind: types.BiomarkerVitaminD, Name: "Vitamin D", Min: 30, Max: 100, Unit: "ng/mL", Label: "optimal"},
	{Kind: types.BiomarkerHemoglobin, Name: "Hemoglobin", Min: 13.5, Max: 17.5, Unit: "g/dL", Label: "normal"},
	{Kind: types.BiomarkerGlucose, Name: "Glucose (Fasting)", Min: 70, Max: 100, Unit: "mg/dL", Label: "fasting"},
	{Kind: types.BiomarkerTriglycerides, Name: "Triglycerides", Min: 0, Max: 150, Unit: "mg/dL", Label: "normal"},
	{Kind: types.BiomarkerCholesterol, Name: "Total Cholesterol", Min: 0, Max: 200, Unit: "mg/dL", Label: "desirable"},
}

// ReferenceRanges returns the six reference ranges in report order.
func ReferenceRanges() []ReferenceRange {
	out := make([]ReferenceRange, len(referenceRanges))
	copy(out, referenceRanges)
	return out
}

func rangeFor(kind types.BiomarkerKind) ReferenceRange {
	for _, r := range referenceRanges {
		if r.Kind == kind {
			return r
		}
	}
	panic("bloodtest: unknown biomarker " + string(kind))
}

// valueOf extracts the lab value for kind.
func valueOf(b types.BiomarkerData, kind types.BiomarkerKind) float64 {
	switch kind {
	case types.BiomarkerCortisol:
		return b.Cortisol
	case types.BiomarkerVitaminD:
		return b.VitaminD
	case types.BiomarkerHemoglobin:
		return b.Hemoglobin
	case types.BiomarkerGlucose:
		return b.Glucose
	case types.BiomarkerTriglycerides:
		return b.Triglycerides
	case types.BiomarkerCholesterol:
		return b.Cholesterol
	default:
		return 0
	}
}

// Classification is the range-only status of every biomarker.
type Classification map[types.BiomarkerKind]types.BiomarkerStatus

// ClassifyBiomarkers places each value below, inside or above its reference
// range. Bounds are inclusive. NaN, infinite and negative values are not
// measurements and classify as normal, matching AnalyzeBloodTest.
func ClassifyBiomarkers(b types.BiomarkerData) Classification {
	out := make(Classification, len(referenceRanges))
	for _, r := range referenceRanges {
		v := valueOf(b, r.Kind)
		switch {
		case !ladder.Usable(v):
			out[r.Kind] = types.BiomarkerNormal
		case v < r.Min:
			out[r.Kind] = types.BiomarkerLow
		case v > r.Max:
			out[r.Kind] = types.BiomarkerHigh
		default:
			out[r.Kind] = types.BiomarkerNormal
		}
	}
	return out
}
