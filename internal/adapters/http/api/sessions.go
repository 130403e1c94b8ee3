// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/edulytics/screener/internal/domain/model"
	"github.com/google/uuid"
)

// SessionsHandler handles test session ingestion.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandlePostSession handles POST /sessions requests.
func (h *SessionsHandler) HandlePostSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	// Clients may omit the session ID; assign one so the ack can echo it.
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.SessionID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, SessionID: req.SessionID})
		return
	}

	if err := h.deps.RegisterStudent(r.Context(), model.Student{
		ID:        req.Student.ID,
		FirstName: req.Student.FirstName,
		LastName:  req.Student.LastName,
		Grade:     req.Student.Grade,
		School:    req.Student.School,
	}); err != nil {
		h.deps.Unrecord(r.Context(), req.SessionID)
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	// Try to enqueue for async classification
	if ok := h.deps.Enqueue(r.Context(), req.toSession()); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.SessionID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, SessionID: req.SessionID})
}

// toSession converts a validated request into the domain session.
func (s sessionRequest) toSession() model.TestSession {
	completed, _ := time.Parse(time.RFC3339, s.CompletedAt)
	scores := make([]model.Observation, 0, len(s.Scores))
	for _, sc := range s.Scores {
		scores = append(scores, model.Observation{
			Subtest:   s.Subtest,
			Target:    sc.Target,
			SubTarget: sc.SubTarget,
			RawScore:  sc.RawScore,
			MaxScore:  sc.MaxScore,
		})
	}
	return model.TestSession{
		SessionID:    s.SessionID,
		StudentID:    s.Student.ID,
		Subtest:      s.Subtest,
		Grade:        s.Grade,
		AcademicYear: s.AcademicYear,
		TimeOfYear:   model.TimeOfYear(s.TimeOfYear),
		CompletedAt:  completed,
		Scores:       scores,
	}
}
