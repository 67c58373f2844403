package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"biotwin/internal/bioscore"
	"biotwin/internal/bloodtest"
	"biotwin/internal/core"
	"biotwin/internal/types"
)

// BioScoreResponse is the body returned by POST /v1/bioscore.
type BioScoreResponse struct {
	BioScore            int                  `json:"bio_score"`
	Status              types.StatusLabels   `json:"status"`
	DailyRecommendation types.Recommendation `json:"daily_recommendation"`
}

// ScoringHandler exposes the single-record and single-panel calculators.
// They are pure, so the handler has no service.
type ScoringHandler struct {
	validator *core.Validator
	clock     types.Clock
	logger    *slog.Logger
}

// NewScoringHandler creates a ScoringHandler. A nil clock selects the system clock.
func NewScoringHandler(val *core.Validator, clock types.Clock, logger *slog.Logger) *ScoringHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &ScoringHandler{validator: val, clock: clock, logger: logger}
}

// RegisterRoutes mounts the scoring endpoints.
func (h *ScoringHandler) RegisterRoutes(r chi.Router) {
	r.Post("/bioscore", h.HandleBioScore)
	r.Post("/blood-tests/analyze", h.HandleAnalyzeBloodTest)
}

// HandleBioScore handles POST /v1/bioscore. The body is one HealthRecord.
func (h *ScoringHandler) HandleBioScore(w http.ResponseWriter, r *http.Request) {
	var rec types.HealthRecord
	if err := core.DecodeJSON(w, r, &rec); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(rec); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: BioScoreResponse{
		BioScore:            bioscore.CalculateBioScore(rec),
		Status:              bioscore.Status(rec),
		DailyRecommendation: bioscore.DailyRecommendation(rec),
	}})
}

// HandleAnalyzeBloodTest handles POST /v1/blood-tests/analyze. A panel
// without a timestamp is stamped with the current time.
func (h *ScoringHandler) HandleAnalyzeBloodTest(w http.ResponseWriter, r *http.Request) {
	var panel types.BiomarkerData
	if err := core.DecodeJSON(w, r, &panel); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(panel); err != nil {
		core.Error(w, r, err)
		return
	}
	if panel.Timestamp.IsZero() {
		panel.Timestamp = h.clock.Now()
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: bloodtest.AnalyzeBloodTest(panel)})
}
