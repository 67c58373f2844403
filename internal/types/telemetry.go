package types

// Telemetry metric names for CloudWatch.
const (
	MetricAssessmentCompleted = "AssessmentCompleted"
	MetricAssessmentFailed    = "AssessmentFailed"
	MetricBioScore            = "BioScore"
	MetricAdjustedBioScore    = "AdjustedBioScore"
	MetricLongevityScore      = "LongevityScore"
	MetricCorrelationAlerts   = "CorrelationAlerts"
	MetricAPILatency          = "APILatency"
	MetricAPIRequest          = "APIRequest"

	DimEndpoint  = "Endpoint"
	DimStatus    = "Status"
	DimRiskLevel = "RiskLevel"
	DimSource    = "Source"

	MetricNamespace = "BioTwin"
)
