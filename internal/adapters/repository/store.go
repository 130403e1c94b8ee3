// Package repository defines the screening store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/edulytics/screener/internal/domain/model"
)

// ScoreRecord is one flattened observation with its session context,
// as returned by History.
type ScoreRecord struct {
	SessionID    string            `json:"session_id"`
	Subtest      string            `json:"subtest"`
	AcademicYear string            `json:"academic_year"`
	TimeOfYear   model.TimeOfYear  `json:"time_of_year"`
	CompletedAt  time.Time         `json:"completed_at"`
	Observation  model.Observation `json:"observation"`
}

// Store provides read/write access to the screening state.
type Store interface {
	// UpsertStudent creates or replaces a roster entry.
	UpsertStudent(ctx context.Context, student model.Student) error

	// Student returns one roster entry.
	// Returns ErrNotFound if the student is unknown.
	Student(ctx context.Context, id string) (model.Student, error)

	// Students returns the roster ordered by last name, first name, ID.
	Students(ctx context.Context) []model.Student

	// AddSession stores a completed, labeled test session.
	AddSession(ctx context.Context, session model.TestSession) error

	// Sessions returns a student's sessions ordered by completion time.
	// Returns ErrNotFound if the student is unknown.
	Sessions(ctx context.Context, studentID string) ([]model.TestSession, error)

	// History returns a student's observations flattened across
	// sessions, in session completion order.
	History(ctx context.Context, studentID string) ([]ScoreRecord, error)

	// ToggleWatch flips the watch relation between a user and a student
	// and returns the new state. Returns ErrNotFound for unknown students.
	ToggleWatch(ctx context.Context, userID, studentID string) (bool, error)

	// Watched returns the student IDs a user watches, sorted.
	Watched(ctx context.Context, userID string) []string

	// StudentCount and SessionCount report store sizes.
	StudentCount(ctx context.Context) int
	SessionCount(ctx context.Context) int
}
