package service

import (
	"github.com/edulytics/screener/internal/domain/benchmark"
	"github.com/edulytics/screener/internal/domain/narrative"
	"github.com/edulytics/screener/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of classification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the session queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the store shard count.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithBenchmarkTable injects a pre-loaded benchmark table, mainly for
// tests. Takes precedence over WithBenchmarkFile.
func WithBenchmarkTable(table *benchmark.Table) Option {
	return func(s *Service) {
		if table != nil {
			s.table = table
		}
	}
}

// WithBenchmarkFile loads cut points from a file instead of the
// embedded reference data.
func WithBenchmarkFile(path string) Option {
	return func(s *Service) {
		s.benchmarkFile = path
	}
}

// WithDropThreshold sets the trajectory decline threshold.
func WithDropThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 1 {
			s.dropThreshold = threshold
		}
	}
}

// WithLexicon overrides the transcript analyzer word lists.
func WithLexicon(lex narrative.Lexicon) Option {
	return func(s *Service) {
		s.lexicon = lex
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}
