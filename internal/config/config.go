// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Layer overrides on top via Load (file, then environment).
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"

	"github.com/edulytics/screener/internal/domain/narrative"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SessionQueueSize bounds the in-memory session queue.
	SessionQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of classification workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the session store.
	ShardCount int `koanf:"shard_count"`

	// BenchmarkFile points at a YAML cut-point table. Empty means the
	// embedded reference data.
	BenchmarkFile string `koanf:"benchmark_file"`

	// DropThreshold is the fractional score decline that flags a
	// student's trajectory, in (0, 1].
	DropThreshold float64 `koanf:"drop_threshold"`

	// Lexicon overrides the transcript analyzer word lists. Empty
	// lists keep the built-in defaults.
	Lexicon narrative.Lexicon `koanf:"lexicon"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		SessionQueueSize: 100_000,
		WorkerCount:      runtime.NumCPU() * 2,
		DedupeSize:       50_000,
		ShardCount:       16,
		DropThreshold:    0.2,
	}
}
