// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/edulytics/screener/internal/adapters/repository"
	"github.com/edulytics/screener/internal/domain/risk"
)

// userHeader names the caller for watchlist operations. Requests
// without it share the default watchlist.
const (
	userHeader  = "X-User-ID"
	defaultUser = "default"
)

// StudentsHandler handles per-student requests.
type StudentsHandler struct {
	deps Dependencies
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(deps Dependencies) *StudentsHandler {
	return &StudentsHandler{deps: deps}
}

// watchResponse is the body of a watchlist toggle.
type watchResponse struct {
	StudentID   string `json:"student_id"`
	OnWatchlist bool   `json:"on_watchlist"`
}

// HandleStudent dispatches /students/{id}/... requests.
func (h *StudentsHandler) HandleStudent(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/students/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	studentID := parts[0]
	rest := strings.Join(parts[1:], "/")

	switch {
	case rest == "tier" && r.Method == http.MethodGet:
		h.handleTier(w, r, studentID)
	case rest == "tiers/history" && r.Method == http.MethodGet:
		h.handleHistory(w, r, studentID)
	case rest == "watchlist" && r.Method == http.MethodPost:
		h.handleWatchlist(w, r, studentID)
	default:
		http.NotFound(w, r)
	}
}

// handleTier handles GET /students/{id}/tier requests.
func (h *StudentsHandler) handleTier(w http.ResponseWriter, r *http.Request, studentID string) {
	const op = "api.student_tier"
	st, err := h.deps.StudentTier(r.Context(), studentID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleHistory handles GET /students/{id}/tiers/history requests.
func (h *StudentsHandler) handleHistory(w http.ResponseWriter, r *http.Request, studentID string) {
	const op = "api.tier_history"
	history, err := h.deps.TierHistory(r.Context(), studentID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if history == nil {
		history = []TierPeriod{}
	}
	writeJSON(w, http.StatusOK, history)
}

// handleWatchlist handles POST /students/{id}/watchlist requests.
func (h *StudentsHandler) handleWatchlist(w http.ResponseWriter, r *http.Request, studentID string) {
	const op = "api.toggle_watch"
	userID := r.Header.Get(userHeader)
	if userID == "" {
		userID = defaultUser
	}
	watching, err := h.deps.ToggleWatch(r.Context(), userID, studentID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, watchResponse{StudentID: studentID, OnWatchlist: watching})
}

// isNotFound translates domain lookup failures into a 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, risk.ErrNoData)
}
