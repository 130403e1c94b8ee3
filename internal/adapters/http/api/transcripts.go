// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// TranscriptsHandler handles transcript analysis requests.
type TranscriptsHandler struct {
	deps Dependencies
}

// NewTranscriptsHandler creates a new transcripts handler.
func NewTranscriptsHandler(deps Dependencies) *TranscriptsHandler {
	return &TranscriptsHandler{deps: deps}
}

// transcriptRequest is the body of POST /transcripts/analyze.
type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

// HandleAnalyze handles POST /transcripts/analyze requests.
func (h *TranscriptsHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_transcript"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.AnalyzeTranscript(r.Context(), req.Transcript))
}
