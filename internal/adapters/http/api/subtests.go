// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/edulytics/screener/internal/domain/catalog"
)

// SubtestsHandler serves the assessment catalog.
type SubtestsHandler struct{}

// NewSubtestsHandler creates a new subtests handler.
func NewSubtestsHandler() *SubtestsHandler {
	return &SubtestsHandler{}
}

// HandleGetSubtests handles GET /subtests requests.
func (h *SubtestsHandler) HandleGetSubtests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Subtests())
}
