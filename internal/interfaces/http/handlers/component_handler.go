package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	appassessment "github.com/razinkele/marbefes-eva-app/internal/application/assessment"
	"github.com/razinkele/marbefes-eva-app/internal/application/component"
	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
	"github.com/razinkele/marbefes-eva-app/pkg/errors"
	"github.com/razinkele/marbefes-eva-app/pkg/types/eva"
)

// ComponentHandler serves the saved ecosystem component endpoints.
type ComponentHandler struct {
	assessments appassessment.Service
	store       component.Store
	logger      logging.Logger
}

// NewComponentHandler constructs a ComponentHandler.
func NewComponentHandler(assessments appassessment.Service, store component.Store, log logging.Logger) *ComponentHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ComponentHandler{
		assessments: assessments,
		store:       store,
		logger:      log.Named("component_handler"),
	}
}

// Save handles PUT /api/v1/components/{name}: it runs the assessment in the
// request body and snapshots the outcome under the component name.
func (h *ComponentHandler) Save(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeAppError(w, errors.New(errors.CodeComponentNameEmpty, "component name is required"))
		return
	}

	var req eva.SaveComponentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	outcome, err := h.assessments.Run(r.Context(), &req.Assessment)
	if err != nil {
		writeAppError(w, err)
		return
	}
	summary, err := h.store.Save(r.Context(), name, outcome, req.Overwrite)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

// List handles GET /api/v1/components.
func (h *ComponentHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List(r.Context()))
}

// Get handles GET /api/v1/components/{idOrName}.
func (h *ComponentHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.store.Get(r.Context(), chi.URLParam(r, "idOrName"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Delete handles DELETE /api/v1/components/{idOrName}.
func (h *ComponentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "idOrName")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Aggregate handles GET /api/v1/aggregate: the cross-component Total EV
// table.  An optional comma-separated "components" query parameter selects a
// subset; by default all saved components are aggregated.
func (h *ComponentHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var names []string
	if raw := r.URL.Query().Get("components"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}

	resp, err := h.store.Aggregate(r.Context(), names...)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
