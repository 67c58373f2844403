// Package handlers contains the HTTP handler implementations for the Bio-Twin API.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"biotwin/internal/assessment"
	"biotwin/internal/core"
	"biotwin/internal/types"
)

// DefaultMaxBatchSize bounds POST /v1/assessments/batch when no limit is configured.
const DefaultMaxBatchSize = 50

// AssessmentEvaluator is the slice of assessment.Service used for posted histories.
type AssessmentEvaluator interface {
	Evaluate(ctx context.Context, in assessment.Input) (*types.Assessment, error)
	EvaluateBatch(ctx context.Context, inputs []assessment.Input) []assessment.BatchResult
}

// --- Request/Response Models ---

// AssessmentRequest is the body for POST /v1/assessments and one item of a batch.
type AssessmentRequest struct {
	UserID      string               `json:"user_id,omitempty" validate:"omitempty,max=128"`
	PatientName string               `json:"patient_name,omitempty" validate:"omitempty,max=200"`
	History     []types.HealthRecord `json:"history" validate:"required,min=1,dive"`
	Biomarkers  *types.BiomarkerData `json:"biomarkers,omitempty"`
}

func (req AssessmentRequest) input(source string) assessment.Input {
	return assessment.Input{
		UserID:      req.UserID,
		PatientName: req.PatientName,
		History:     req.History,
		Biomarkers:  req.Biomarkers,
		Source:      source,
	}
}

// BatchAssessmentRequest is the body for POST /v1/assessments/batch.
type BatchAssessmentRequest struct {
	Items []AssessmentRequest `json:"items" validate:"required,min=1,dive"`
}

// BatchItemError is the per-item failure in a batch response.
type BatchItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchItemResponse holds either an assessment or an error, never both.
type BatchItemResponse struct {
	Index      int               `json:"index"`
	Assessment *types.Assessment `json:"assessment,omitempty"`
	Error      *BatchItemError   `json:"error,omitempty"`
}

// AssessmentHandler evaluates histories posted by the client. Nothing is stored.
type AssessmentHandler struct {
	service      AssessmentEvaluator
	validator    *core.Validator
	logger       *slog.Logger
	maxBatchSize int
}

// NewAssessmentHandler creates an AssessmentHandler. A non-positive
// maxBatchSize selects DefaultMaxBatchSize.
func NewAssessmentHandler(svc AssessmentEvaluator, val *core.Validator, logger *slog.Logger, maxBatchSize int) *AssessmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	return &AssessmentHandler{
		service:      svc,
		validator:    val,
		logger:       logger,
		maxBatchSize: maxBatchSize,
	}
}

// RegisterRoutes mounts the assessment endpoints.
func (h *AssessmentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/assessments", h.HandleEvaluate)
	r.Post("/assessments/batch", h.HandleEvaluateBatch)
}

// HandleEvaluate handles POST /v1/assessments.
func (h *AssessmentHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req AssessmentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.service.Evaluate(r.Context(), req.input(assessment.SourceAPI))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result})
}

// HandleEvaluateBatch handles POST /v1/assessments/batch.
// The response is 200 even when some items fail; Meta.Failed counts them.
func (h *AssessmentHandler) HandleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchAssessmentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	// Size is checked before validation so an oversized batch is never walked.
	if len(req.Items) > h.maxBatchSize {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationBatchSize,
			fmt.Sprintf("batch size exceeds maximum of %d items", h.maxBatchSize),
			nil,
			map[string]any{"max": h.maxBatchSize, "received": len(req.Items)},
		))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	inputs := make([]assessment.Input, len(req.Items))
	for i, item := range req.Items {
		inputs[i] = item.input(assessment.SourceBatch)
	}

	results := h.service.EvaluateBatch(r.Context(), inputs)

	items := make([]BatchItemResponse, len(results))
	failed := 0
	for i, res := range results {
		items[i] = BatchItemResponse{Index: res.Index, Assessment: res.Assessment}
		if res.Err != nil {
			failed++
			items[i].Error = batchItemError(res.Err)
			h.logger.WarnContext(r.Context(), "batch item failed",
				"index", res.Index,
				"error", res.Err,
			)
		}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: items,
		Meta: &core.ResponseMeta{Count: len(items), Failed: failed},
	})
}

func batchItemError(err error) *BatchItemError {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return &BatchItemError{Code: string(appErr.Code), Message: appErr.Message}
	}
	return &BatchItemError{
		Code:    string(types.ErrCodeInternalUnexpected),
		Message: "an unexpected error occurred",
	}
}
