package benchmark

import "errors"

// Sentinel kinds for benchmark table errors.
var (
	ErrLoadTable    = errors.New("load benchmark table failed")
	ErrInvalidTable = errors.New("invalid benchmark table")
)
