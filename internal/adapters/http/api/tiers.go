// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
)

// TiersHandler handles population-level tier requests.
type TiersHandler struct {
	deps Dependencies
}

// NewTiersHandler creates a new tiers handler.
func NewTiersHandler(deps Dependencies) *TiersHandler {
	return &TiersHandler{deps: deps}
}

// HandleGetSummary handles GET /tiers/summary requests.
func (h *TiersHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.tier_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	summary, err := h.deps.TierSummary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleGetStudents handles GET /tiers/students requests. The optional
// tier query parameter (1-3) filters to one tier.
func (h *TiersHandler) HandleGetStudents(w http.ResponseWriter, r *http.Request) {
	const op = "api.tier_students"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	tier := 0
	if raw := r.URL.Query().Get("tier"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 3 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		tier = n
	}
	students, err := h.deps.TierStudents(r.Context(), tier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if students == nil {
		students = []StudentTier{}
	}
	writeJSON(w, http.StatusOK, students)
}
