package types

import "time"

// HealthRecord is one day of wearable metrics. A history is a slice of
// records ordered oldest first; the last element is the latest day.
type HealthRecord struct {
	Steps            int       `json:"steps" validate:"gte=0"`
	RestingHeartRate float64   `json:"resting_heart_rate" validate:"gte=0,lte=250"`
	SleepHours       float64   `json:"sleep_hours" validate:"gte=0,lte=24"`
	ActiveCalories   float64   `json:"active_calories" validate:"gte=0"`
	Distance         float64   `json:"distance_km" validate:"gte=0"`
	HRVVariability   float64   `json:"hrv_variability" validate:"gte=0"`
	Timestamp        time.Time `json:"timestamp"`
}

// Latest returns the last record of a non-empty history.
func Latest(history []HealthRecord) HealthRecord {
	return history[len(history)-1]
}

// BiomarkerData holds one set of lab values. Cortisol is in µg/dL, vitamin D
// in ng/mL, hemoglobin in g/dL; glucose (fasting), triglycerides and total
// cholesterol are in mg/dL.
type BiomarkerData struct {
	Cortisol      float64   `json:"cortisol" validate:"gte=0"`
	VitaminD      float64   `json:"vitamin_d" validate:"gte=0"`
	Hemoglobin    float64   `json:"hemoglobin" validate:"gte=0"`
	Glucose       float64   `json:"glucose" validate:"gte=0"`
	Triglycerides float64   `json:"triglycerides" validate:"gte=0"`
	Cholesterol   float64   `json:"cholesterol" validate:"gte=0"`
	Timestamp     time.Time `json:"timestamp"`
}

// CorrelationAlert is a cross-metric risk finding on the latest record.
type CorrelationAlert struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Metrics         []string       `json:"metrics"`
	BioScoreImpact  int            `json:"bio_score_impact"`
	RiskLevel       RiskLevel      `json:"risk_level"`
	Recommendations []string       `json:"recommendations"`
	Timeframe       AlertTimeframe `json:"timeframe"`
}

// HealthPattern is a behavioral pattern detected over a whole history.
type HealthPattern struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Description            string   `json:"description"`
	Indicators             []string `json:"indicators"`
	Prevalence             float64  `json:"prevalence"`
	InterventionSuggestion string   `json:"intervention_suggestion"`
}

// AdjustedBioScore is a base score shifted by the impacts of a set of alerts.
type AdjustedBioScore struct {
	AdjustedScore int `json:"adjusted_score"`
	TotalImpact   int `json:"total_impact"`
}

// PredictiveInsight is a short, prioritized, actionable suggestion.
type PredictiveInsight struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Action          string          `json:"action"`
	Priority        InsightPriority `json:"priority"`
	Category        InsightCategory `json:"category"`
	Icon            Icon            `json:"icon"`
	TimeToAct       string          `json:"time_to_act,omitempty"`
	EstimatedImpact string          `json:"estimated_impact,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Recommendation is the single daily suggestion derived from one record.
type Recommendation struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Priority    RecommendationPriority `json:"priority"`
	Icon        Icon                   `json:"icon"`
	Category    InsightCategory        `json:"category"`
}

// Biomarker names one analyzed lab value.
type Biomarker struct {
	Kind BiomarkerKind `json:"kind"`
	Name string        `json:"name"`
}

// BloodTestAnalysis is the interpretation of one biomarker.
type BloodTestAnalysis struct {
	Biomarker       Biomarker       `json:"biomarker"`
	Value           float64         `json:"value"`
	Unit            string          `json:"unit"`
	ReferenceMin    float64         `json:"reference_min"`
	ReferenceMax    float64         `json:"reference_max"`
	Status          BiomarkerStatus `json:"status"`
	Severity        Severity        `json:"severity"`
	Interpretation  string          `json:"interpretation"`
	Recommendations []string        `json:"recommendations"`
	ActionTimeframe ActionTimeframe `json:"action_timeframe"`
}

// BloodTestReport aggregates the six analyses of one blood test.
type BloodTestReport struct {
	Timestamp         time.Time           `json:"timestamp"`
	Analyses          []BloodTestAnalysis `json:"analyses"`
	OverallAssessment string              `json:"overall_assessment"`
	PriorityActions   []string            `json:"priority_actions"`
	FollowUpTests     []string            `json:"follow_up_tests"`
}

// HistoryAverages are the per-metric means over a history.
type HistoryAverages struct {
	Steps            float64 `json:"steps"`
	RestingHeartRate float64 `json:"resting_heart_rate"`
	SleepHours       float64 `json:"sleep_hours"`
	ActiveCalories   float64 `json:"active_calories"`
	HRVVariability   float64 `json:"hrv_variability"`
}

// LongevityReport is the assembled, shareable summary of one assessment.
type LongevityReport struct {
	ID              string             `json:"id"`
	PatientName     string             `json:"patient_name"`
	ReportDate      time.Time          `json:"report_date"`
	BioScore        int                `json:"bio_score"`
	LongevityScore  int                `json:"longevity_score"`
	History         []HealthRecord     `json:"history"`
	Averages        HistoryAverages    `json:"averages"`
	Biomarkers      *BiomarkerData     `json:"biomarkers,omitempty"`
	BloodTest       *BloodTestReport   `json:"blood_test,omitempty"`
	Alerts          []CorrelationAlert `json:"alerts"`
	Recommendations []string           `json:"recommendations"`
	NextCheckup     time.Time          `json:"next_checkup"`
}

// StatusLabels are the human-readable classifications of the latest record.
type StatusLabels struct {
	Activity string `json:"activity"`
	Recovery string `json:"recovery"`
	Stress   string `json:"stress"`
}

// Assessment is the full result of evaluating one history.
type Assessment struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id,omitempty"`
	BioScore       int                 `json:"bio_score"`
	Adjusted       AdjustedBioScore    `json:"adjusted"`
	LongevityScore int                 `json:"longevity_score"`
	Status         StatusLabels        `json:"status"`
	Daily          Recommendation      `json:"daily_recommendation"`
	Alerts         []CorrelationAlert  `json:"alerts"`
	Patterns       []HealthPattern     `json:"patterns"`
	Insights       []PredictiveInsight `json:"insights"`
	BloodTest      *BloodTestReport    `json:"blood_test,omitempty"`
	Report         LongevityReport     `json:"report"`
	CreatedAt      time.Time           `json:"created_at"`
}
