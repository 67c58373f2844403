package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"biotwin/internal/assessment"
	"biotwin/internal/core"
	"biotwin/internal/types"
)

// UserService is the slice of assessment.Service backing the per-user routes.
type UserService interface {
	IngestRecords(ctx context.Context, userID string, source types.RecordSource, records []types.HealthRecord) error
	IngestLabResult(ctx context.Context, userID string, b types.BiomarkerData) error
	EvaluateUser(ctx context.Context, userID, source string) (*types.Assessment, error)
	LatestForUser(ctx context.Context, userID string) (*types.Assessment, error)
}

// AssessmentEnqueuer queues an asynchronous assessment. Implemented by
// queue.AssessmentTrigger.
type AssessmentEnqueuer interface {
	Enqueue(ctx context.Context, userID string, reason types.AssessmentReason) (string, error)
}

// --- Request/Response Models ---

// IngestRecordsRequest is the body for POST /v1/users/{userID}/records.
type IngestRecordsRequest struct {
	Source  types.RecordSource   `json:"source,omitempty" validate:"omitempty,oneof=manual apple_health google_fit synthetic"`
	Records []types.HealthRecord `json:"records" validate:"required,min=1,max=366,dive"`
}

// IngestResponse acknowledges stored data.
type IngestResponse struct {
	UserID    string `json:"user_id"`
	Count     int    `json:"count"`
	MessageID string `json:"assessment_message_id,omitempty"`
}

// EnqueueResponse is returned with 202 by the enqueue endpoint.
type EnqueueResponse struct {
	UserID    string `json:"user_id"`
	MessageID string `json:"message_id"`
}

type userPath struct {
	UserID string `json:"user_id" validate:"required,max=128,printascii"`
}

// UserHandler serves stored per-user data: ingestion, synchronous and
// queued assessments, and the latest snapshot.
type UserHandler struct {
	service   UserService
	queue     AssessmentEnqueuer
	validator *core.Validator
	logger    *slog.Logger
}

// NewUserHandler creates a UserHandler. queue may be nil when no assessment
// queue is configured; ingestion then skips the follow-up assessment and the
// enqueue endpoint answers 503.
func NewUserHandler(svc UserService, queue AssessmentEnqueuer, val *core.Validator, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		service:   svc,
		queue:     queue,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the per-user endpoints.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Post("/records", h.HandleIngestRecords)
		r.Post("/lab-results", h.HandleIngestLabResult)
		r.Post("/assessments", h.HandleEvaluate)
		r.Post("/assessments/enqueue", h.HandleEnqueue)
		r.Get("/assessments/latest", h.HandleGetLatest)
	})
}

func (h *UserHandler) userID(r *http.Request) (string, error) {
	p := userPath{UserID: chi.URLParam(r, "userID")}
	if err := h.validator.ValidateStruct(p); err != nil {
		return "", err
	}
	return p.UserID, nil
}

// HandleIngestRecords handles POST /v1/users/{userID}/records.
func (h *UserHandler) HandleIngestRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var req IngestRecordsRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}
	if req.Source == "" {
		req.Source = types.SourceManual
	}

	if err := h.service.IngestRecords(r.Context(), userID, req.Source, req.Records); err != nil {
		core.Error(w, r, err)
		return
	}

	resp := IngestResponse{UserID: userID, Count: len(req.Records)}
	meta := h.followUp(r.Context(), userID, types.ReasonRecordsIngested, &resp)
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: resp, Meta: meta})
}

// HandleIngestLabResult handles POST /v1/users/{userID}/lab-results.
func (h *UserHandler) HandleIngestLabResult(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var panel types.BiomarkerData
	if err := core.DecodeJSON(w, r, &panel); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(panel); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.service.IngestLabResult(r.Context(), userID, panel); err != nil {
		core.Error(w, r, err)
		return
	}

	resp := IngestResponse{UserID: userID, Count: 1}
	meta := h.followUp(r.Context(), userID, types.ReasonLabIngested, &resp)
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: resp, Meta: meta})
}

// followUp queues a fresh assessment after ingestion. The data is already
// stored, so a queue failure only produces a warning.
func (h *UserHandler) followUp(ctx context.Context, userID string, reason types.AssessmentReason, resp *IngestResponse) *core.ResponseMeta {
	if h.queue == nil {
		return nil
	}
	id, err := h.queue.Enqueue(ctx, userID, reason)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to queue follow-up assessment",
			"user_id", userID,
			"reason", string(reason),
			"error", err,
		)
		return &core.ResponseMeta{Warnings: []string{"assessment could not be queued; request one manually"}}
	}
	resp.MessageID = id
	return nil
}

// HandleEvaluate handles POST /v1/users/{userID}/assessments.
func (h *UserHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.service.EvaluateUser(r.Context(), userID, assessment.SourceUser)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: result})
}

// HandleEnqueue handles POST /v1/users/{userID}/assessments/enqueue.
func (h *UserHandler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if h.queue == nil {
		core.Error(w, r, types.NewAppError(types.ErrCodeUpstreamQueue, "assessment queue is not configured", nil))
		return
	}

	id, err := h.queue.Enqueue(r.Context(), userID, types.ReasonManual)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusAccepted, core.APIResponse{Data: EnqueueResponse{UserID: userID, MessageID: id}})
}

// HandleGetLatest handles GET /v1/users/{userID}/assessments/latest.
func (h *UserHandler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.service.LatestForUser(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result})
}
