// Package seed generates a demo roster with benchmark-consistent test
// sessions and submits it to a running screening service.
package seed

import "time"

// Config holds configuration for the seed run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumStudents  int           // Number of students to generate
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	AcademicYear string        // Academic year for generated sessions
	Verbose      bool          // Enable verbose logging
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
	Target   string  `json:"target"`
	RawScore float64 `json:"raw_score"`
}

// sessionPayload mirrors the wire schema for POST /sessions.
type sessionPayload struct {
	SessionID    string         `json:"session_id"`
	Student      studentPayload `json:"student"`
	Subtest      string         `json:"subtest"`
	Grade        string         `json:"grade"`
	AcademicYear string         `json:"academic_year"`
	TimeOfYear   string         `json:"time_of_year"`
	CompletedAt  string         `json:"completed_at"`
	Scores       []scorePayload `json:"scores"`
}

// ackResponse mirrors the session submission response.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	SessionID string `json:"session_id"`
}

// Stats holds seed run statistics.
type Stats struct {
	StudentsGenerated int
	SessionsGenerated int
	SessionsAccepted  int64
	SessionsDuplicate int64
	SessionsFailed    int64
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
