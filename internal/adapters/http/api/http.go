// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/edulytics/screener/internal/app"
	"github.com/edulytics/screener/internal/domain/catalog"
	"github.com/edulytics/screener/internal/domain/dedupe"
	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/internal/domain/narrative"
)

// Read shapes returned by the service layer.
type (
	StudentTier   = service.StudentTier
	TierSummary   = service.TierSummary
	TierPeriod    = service.TierPeriod
	AtRiskStudent = service.AtRiskStudent
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	dedupe.Deduper

	// RegisterStudent upserts a roster entry.
	RegisterStudent(ctx context.Context, student model.Student) error

	// Enqueue pushes a session for async classification. Returns false
	// on backpressure.
	Enqueue(ctx context.Context, s model.TestSession) bool

	// Read operations expose screening results.
	StudentTier(ctx context.Context, studentID string) (StudentTier, error)
	TierSummary(ctx context.Context) (TierSummary, error)
	TierStudents(ctx context.Context, tier int) ([]StudentTier, error)
	TierHistory(ctx context.Context, studentID string) ([]TierPeriod, error)
	AtRisk(ctx context.Context) ([]AtRiskStudent, error)
	AnalyzeTranscript(ctx context.Context, transcript string) narrative.Result
	ToggleWatch(ctx context.Context, userID, studentID string) (bool, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	sessionsHandler    *SessionsHandler
	tiersHandler       *TiersHandler
	studentsHandler    *StudentsHandler
	atRiskHandler      *AtRiskHandler
	transcriptsHandler *TranscriptsHandler
	subtestsHandler    *SubtestsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		sessionsHandler:    NewSessionsHandler(deps),
		tiersHandler:       NewTiersHandler(deps),
		studentsHandler:    NewStudentsHandler(deps),
		atRiskHandler:      NewAtRiskHandler(deps),
		transcriptsHandler: NewTranscriptsHandler(deps),
		subtestsHandler:    NewSubtestsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandlePostSession, "sessions"))
	mux.HandleFunc("/tiers/summary", MetricsMiddleware(s.tiersHandler.HandleGetSummary, "tier_summary"))
	mux.HandleFunc("/tiers/students", MetricsMiddleware(s.tiersHandler.HandleGetStudents, "tier_students"))
	mux.HandleFunc("/students/", MetricsMiddleware(s.studentsHandler.HandleStudent, "students"))
	mux.HandleFunc("/at-risk", MetricsMiddleware(s.atRiskHandler.HandleGetAtRisk, "at_risk"))
	mux.HandleFunc("/transcripts/analyze", MetricsMiddleware(s.transcriptsHandler.HandleAnalyze, "transcripts"))
	mux.HandleFunc("/subtests", MetricsMiddleware(s.subtestsHandler.HandleGetSubtests, "subtests"))
}

// studentPayload mirrors the roster block of POST /sessions.
type studentPayload struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Grade     string `json:"grade"`
	School    string `json:"school"`
}

// scorePayload mirrors one observation of POST /sessions.
type scorePayload struct {
	Target    string   `json:"target"`
	SubTarget string   `json:"sub_target,omitempty"`
	RawScore  *float64 `json:"raw_score"`
	MaxScore  *float64 `json:"max_score,omitempty"`
}

// sessionRequest mirrors the wire schema for POST /sessions.
type sessionRequest struct {
	SessionID    string         `json:"session_id"`
	Student      studentPayload `json:"student"`
	Subtest      string         `json:"subtest"`
	Grade        string         `json:"grade"`
	AcademicYear string         `json:"academic_year"`
	TimeOfYear   string         `json:"time_of_year"`
	CompletedAt  string         `json:"completed_at"`
	Scores       []scorePayload `json:"scores"`
}

func (s sessionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.Student.ID) == "":
		return errors.New("missing student.id")
	case strings.TrimSpace(s.Subtest) == "":
		return errors.New("missing subtest")
	case strings.TrimSpace(s.Grade) == "":
		return errors.New("missing grade")
	case strings.TrimSpace(s.AcademicYear) == "":
		return errors.New("missing academic_year")
	case strings.TrimSpace(s.CompletedAt) == "":
		return errors.New("missing completed_at")
	case len(s.Scores) == 0:
		return errors.New("missing scores")
	}
	if _, ok := catalog.Lookup(s.Subtest); !ok {
		return errors.New("unknown subtest")
	}
	switch model.TimeOfYear(s.TimeOfYear) {
	case model.BOY, model.MOY, model.EOY:
	default:
		return errors.New("invalid time_of_year; must be BOY, MOY, or EOY")
	}
	if _, err := time.Parse(time.RFC3339, s.CompletedAt); err != nil {
		return errors.New("invalid completed_at; must be RFC3339")
	}
	for _, sc := range s.Scores {
		if !catalog.ValidTarget(s.Subtest, sc.Target) {
			return errors.New("unknown target " + sc.Target + " for subtest " + s.Subtest)
		}
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
