package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"biotwin/internal/core"
	"biotwin/internal/synthetic"
	"biotwin/internal/types"
)

const maxSyntheticDays = 90

// SyntheticResponse is the body returned by GET /v1/synthetic/{profile}.
type SyntheticResponse struct {
	Profile    synthetic.Profile    `json:"profile"`
	History    []types.HealthRecord `json:"history"`
	Biomarkers types.BiomarkerData  `json:"biomarkers"`
}

// SyntheticHandler serves generated demo data.
type SyntheticHandler struct {
	generator *synthetic.Generator
	logger    *slog.Logger
}

// NewSyntheticHandler creates a SyntheticHandler. A nil generator uses the
// process-wide random source and the system clock.
func NewSyntheticHandler(gen *synthetic.Generator, logger *slog.Logger) *SyntheticHandler {
	if gen == nil {
		gen = synthetic.NewGenerator(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SyntheticHandler{generator: gen, logger: logger}
}

// RegisterRoutes mounts the synthetic data endpoint.
func (h *SyntheticHandler) RegisterRoutes(r chi.Router) {
	r.Get("/synthetic/{profile}", h.HandleGenerate)
}

// HandleGenerate handles GET /v1/synthetic/{profile}?days=N.
func (h *SyntheticHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	profile, err := synthetic.ParseProfile(chi.URLParam(r, "profile"))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	days := synthetic.DefaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > maxSyntheticDays {
			core.Error(w, r, types.NewAppErrorWithDetails(
				types.ErrCodeValidationInvalidRecord,
				"days must be an integer between 1 and 90",
				nil,
				map[string]any{"days": raw},
			))
			return
		}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: SyntheticResponse{
			Profile:    profile,
			History:    h.generator.History(profile, days),
			Biomarkers: h.generator.Biomarkers(profile),
		},
		Meta: &core.ResponseMeta{Count: days},
	})
}
