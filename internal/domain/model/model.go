// Package model contains domain models passed between layers.
package model

import "time"

// RiskLabel classifies a raw score against norm-referenced cut points.
// Labels are ordered from best to worst outcome.
type RiskLabel string

// Risk labels, best to worst.
const (
	RiskAdvanced  RiskLabel = "advanced"
	RiskBenchmark RiskLabel = "benchmark"
	RiskModerate  RiskLabel = "moderate"
	RiskHigh      RiskLabel = "high"
)

// TimeOfYear is one of the three assessment windows in an academic year.
type TimeOfYear string

// Assessment windows, in chronological order.
const (
	BOY TimeOfYear = "BOY" // beginning of year
	MOY TimeOfYear = "MOY" // middle of year
	EOY TimeOfYear = "EOY" // end of year
)

// Order returns the chronological position of the window within a year.
// Unknown windows sort last.
func (t TimeOfYear) Order() int {
	switch t {
	case BOY:
		return 0
	case MOY:
		return 1
	case EOY:
		return 2
	default:
		return 99
	}
}

// Student identifies one student on a roster.
type Student struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Grade     string `json:"grade"`
	School    string `json:"school"`
}

// Observation is one scored target (or sub-target) within a test session.
// SubTarget is empty for target-level rows; sub-target rows never enter
// classification, tiering, or trajectory.
type Observation struct {
	Subtest   string    `json:"subtest"`
	Target    string    `json:"target"`
	SubTarget string    `json:"sub_target,omitempty"`
	RawScore  *float64  `json:"raw_score"`
	MaxScore  *float64  `json:"max_score,omitempty"`
	Risk      RiskLabel `json:"risk_level,omitempty"`
}

// TestSession is one completed administration of a subtest for a student.
// All observations in a session share its window and completion time.
type TestSession struct {
	SessionID    string        `json:"session_id"`
	StudentID    string        `json:"student_id"`
	Subtest      string        `json:"subtest"`
	Grade        string        `json:"grade"`
	AcademicYear string        `json:"academic_year"`
	TimeOfYear   TimeOfYear    `json:"time_of_year"`
	CompletedAt  time.Time     `json:"completed_at"`
	Scores       []Observation `json:"scores"`
}

// Float64 returns a pointer to v, for building optional score fields.
func Float64(v float64) *float64 { return &v }
