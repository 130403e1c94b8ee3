package risk

import "errors"

// Sentinel kinds for risk aggregation errors.
var (
	// ErrNoData means no classifiable labels exist for a student.
	// Callers must not read it as tier 1.
	ErrNoData = errors.New("no classifiable data")
)
