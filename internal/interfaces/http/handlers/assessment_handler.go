package handlers

import (
	"net/http"

	appassessment "github.com/razinkele/marbefes-eva-app/internal/application/assessment"
	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
	"github.com/razinkele/marbefes-eva-app/pkg/types/eva"
)

// AssessmentHandler serves the assessment pipeline endpoints.
type AssessmentHandler struct {
	service appassessment.Service
	logger  logging.Logger
}

// NewAssessmentHandler constructs an AssessmentHandler.
func NewAssessmentHandler(service appassessment.Service, log logging.Logger) *AssessmentHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AssessmentHandler{service: service, logger: log.Named("assessment_handler")}
}

// Run handles POST /api/v1/assessments: it executes the full AQ/EV pipeline
// on the submitted dataset and returns the result table.
func (h *AssessmentHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req eva.AssessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	outcome, err := h.service.Run(r.Context(), &req)
	if err != nil {
		h.logger.Warn("assessment rejected", logging.Err(err))
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome.Response)
}

// Methodology handles GET /api/v1/methodology: the AQ reference metadata.
func (h *AssessmentHandler) Methodology(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Methodology())
}
