package types

// RiskLevel ranks a correlation alert. Lower rank means more severe.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// Rank returns the sort position of the risk level (critical first).
// Unknown levels sort after every known level.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskCritical:
		return 0
	case RiskHigh:
		return 1
	case RiskMedium:
		return 2
	case RiskLow:
		return 3
	default:
		return 4
	}
}

// AlertTimeframe is the free-text urgency label carried by a correlation alert.
type AlertTimeframe string

const (
	TimeframeImmediate AlertTimeframe = "immediate"
	TimeframeThisWeek  AlertTimeframe = "this week"
	TimeframeOngoing   AlertTimeframe = "ongoing"
)

// InsightPriority ranks a predictive insight. Lower rank means more urgent.
type InsightPriority string

const (
	PriorityUrgent        InsightPriority = "urgent"
	PriorityImportant     InsightPriority = "important"
	PriorityInformational InsightPriority = "informational"
)

// Rank returns the sort position of the priority (urgent first).
func (p InsightPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityImportant:
		return 1
	case PriorityInformational:
		return 2
	default:
		return 3
	}
}

// InsightCategory groups insights by the habit they target.
type InsightCategory string

const (
	CategorySleep      InsightCategory = "sleep"
	CategoryActivity   InsightCategory = "activity"
	CategoryStress     InsightCategory = "stress"
	CategoryRecovery   InsightCategory = "recovery"
	CategoryNutrition  InsightCategory = "nutrition"
	CategoryMeditation InsightCategory = "meditation"
	CategoryHydration  InsightCategory = "hydration"
)

// Icon is the card icon hint attached to insights and recommendations.
type Icon string

const (
	IconAlert      Icon = "alert"
	IconTip        Icon = "tip"
	IconTrend      Icon = "trend"
	IconMeditation Icon = "meditation"
	IconWater      Icon = "water"
)

// RecommendationPriority is the priority of the single daily recommendation.
type RecommendationPriority string

const (
	RecommendationHigh   RecommendationPriority = "high"
	RecommendationMedium RecommendationPriority = "medium"
	RecommendationLow    RecommendationPriority = "low"
)

// BiomarkerStatus places a lab value relative to its reference range.
type BiomarkerStatus string

const (
	BiomarkerLow    BiomarkerStatus = "low"
	BiomarkerNormal BiomarkerStatus = "normal"
	BiomarkerHigh   BiomarkerStatus = "high"
)

// Severity grades a single blood-test analysis.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
	SeverityNormal   Severity = "normal"
)

// ActionTimeframe tells the user how soon to act on a blood-test analysis.
type ActionTimeframe string

const (
	ActImmediately ActionTimeframe = "immediate"
	ActThisWeek    ActionTimeframe = "this_week"
	ActThisMonth   ActionTimeframe = "this_month"
)

// BiomarkerKind identifies one of the six analyzed lab values.
type BiomarkerKind string

const (
	BiomarkerCortisol      BiomarkerKind = "cortisol"
	BiomarkerVitaminD      BiomarkerKind = "vitamin_d"
	BiomarkerHemoglobin    BiomarkerKind = "hemoglobin"
	BiomarkerGlucose       BiomarkerKind = "glucose"
	BiomarkerTriglycerides BiomarkerKind = "triglycerides"
	BiomarkerCholesterol   BiomarkerKind = "cholesterol"
)

// RecordSource identifies where a health record came from.
type RecordSource string

const (
	SourceManual      RecordSource = "manual"
	SourceAppleHealth RecordSource = "apple_health"
	SourceGoogleFit   RecordSource = "google_fit"
	SourceSynthetic   RecordSource = "synthetic"
)

// Metric field names used in CorrelationAlert.Metrics.
const (
	FieldSteps            = "steps"
	FieldRestingHeartRate = "restingHeartRate"
	FieldSleepHours       = "sleepHours"
	FieldHRVVariability   = "hrvVariability"
	FieldTriglycerides    = "triglycerides"
	FieldVitaminD         = "vitaminD"
	FieldCortisol         = "cortisol"
)
