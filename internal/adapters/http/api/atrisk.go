// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// AtRiskHandler handles early-warning list requests.
type AtRiskHandler struct {
	deps Dependencies
}

// NewAtRiskHandler creates a new at-risk handler.
func NewAtRiskHandler(deps Dependencies) *AtRiskHandler {
	return &AtRiskHandler{deps: deps}
}

// HandleGetAtRisk handles GET /at-risk requests.
func (h *AtRiskHandler) HandleGetAtRisk(w http.ResponseWriter, r *http.Request) {
	const op = "api.at_risk"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	students, err := h.deps.AtRisk(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if students == nil {
		students = []AtRiskStudent{}
	}
	writeJSON(w, http.StatusOK, students)
}
