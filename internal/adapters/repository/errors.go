package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("student not found")
	ErrInvalidStudent = errors.New("invalid student")
	ErrInvalidSession = errors.New("invalid session")
)
