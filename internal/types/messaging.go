package types

import "time"

// AssessmentReason records why an assessment was queued.
type AssessmentReason string

const (
	ReasonRecordsIngested AssessmentReason = "records_ingested"
	ReasonLabIngested     AssessmentReason = "lab_result_ingested"
	ReasonManual          AssessmentReason = "manual"
)

// AssessmentMessage is the SQS payload asking the assessment worker to
// evaluate a user's stored history.
type AssessmentMessage struct {
	MessageID   string           `json:"message_id"`
	UserID      string           `json:"user_id"`
	Reason      AssessmentReason `json:"reason"`
	TraceID     string           `json:"trace_id,omitempty"`
	RequestedAt time.Time        `json:"requested_at"`
}
