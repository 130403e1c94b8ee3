// Package service provides the core screening service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	sessionqueue "github.com/edulytics/screener/internal/adapters/mq/queue"
	workerpool "github.com/edulytics/screener/internal/adapters/mq/worker"
	"github.com/edulytics/screener/internal/adapters/repository"
	"github.com/edulytics/screener/internal/domain/benchmark"
	"github.com/edulytics/screener/internal/domain/dedupe"
	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/internal/domain/narrative"
	"github.com/edulytics/screener/internal/domain/risk"
	"github.com/edulytics/screener/internal/domain/trend"
	"github.com/edulytics/screener/pkg/logger"
	"github.com/edulytics/screener/pkg/metrics"
)

// Service implements the API dependencies for the screening system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	queue      sessionqueue.Queue
	pool       *workerpool.Pool
	table      *benchmark.Table
	classifier *risk.Classifier
	detector   *trend.Detector
	analyzer   *narrative.Analyzer

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	shardCount    int
	dropThreshold float64
	lexicon       narrative.Lexicon
	benchmarkFile string

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		dedupeSize:  50000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting screening service...")

	if s.table == nil {
		var err error
		if s.benchmarkFile != "" {
			s.table, err = benchmark.LoadFile(s.benchmarkFile)
		} else {
			s.table, err = benchmark.Load()
		}
		if err != nil {
			return err
		}
	}
	s.classifier = risk.NewClassifier(s.table)

	var trendOpts []trend.Option
	if s.dropThreshold > 0 {
		trendOpts = append(trendOpts, trend.WithDropThreshold(s.dropThreshold))
	}
	s.detector = trend.NewDetector(trendOpts...)
	s.analyzer = narrative.NewAnalyzer(narrative.WithLexicon(s.lexicon))

	var storeOpts []repository.Option
	if s.shardCount > 0 {
		storeOpts = append(storeOpts, repository.WithShardCount(s.shardCount))
	}
	s.store = repository.NewMemStore(storeOpts...)

	s.deduper = dedupe.NewMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = sessionqueue.NewInMemoryQueue(
		sessionqueue.WithCapacity(s.queueSize),
		sessionqueue.WithBufferSize(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "screening service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("benchmarkKeys", s.table.Len()),
	)
	return nil
}

// Stop gracefully shuts down the service, draining the queue first.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping screening service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "screening service stopped")
}

// SeenAndRecord atomically checks whether a session id was seen and
// records it if not. Returns true when the session is a duplicate.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSessionDuplicate()
	}
	return seen
}

// Unrecord removes a session ID from the seen list so it can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of tracked session IDs.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// RegisterStudent upserts a roster entry.
func (s *Service) RegisterStudent(ctx context.Context, student model.Student) error {
	return s.store.UpsertStudent(ctx, student)
}

// Enqueue submits a session for asynchronous classification. Returns
// false on backpressure.
func (s *Service) Enqueue(ctx context.Context, session model.TestSession) bool {
	s.logger.Debug(ctx, "enqueueing session",
		logger.String("sessionID", session.SessionID),
		logger.String("studentID", session.StudentID),
		logger.String("subtest", session.Subtest),
	)
	return s.queue.Enqueue(ctx, session)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["queueLength"] = s.queue.Len(ctx)
		stats["students"] = s.store.StudentCount(ctx)
		stats["sessions"] = s.store.SessionCount(ctx)
		stats["dedupeEntries"] = s.Size()
		stats["benchmarkKeys"] = s.table.Len()
	}
	return stats
}
