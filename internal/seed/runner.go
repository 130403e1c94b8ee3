package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/edulytics/screener/pkg/logger"
)

// processingDelay gives workers time to drain the queue before the
// verification reads.
const processingDelay = 2 * time.Second

// Run executes the complete seed flow: health check, generation,
// submission, and a verification pass over the read endpoints.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("seed")

	log.Info(ctx, "starting seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("students", config.NumStudents),
		logger.Int("workers", config.Workers),
		logger.String("academicYear", config.AcademicYear))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	sessions, err := generateSessions(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("session generation failed: %w", err)
	}

	if err := submitSessions(ctx, config, sessions, stats); err != nil {
		return fmt.Errorf("session submission failed: %w", err)
	}

	log.Info(ctx, "waiting for sessions to be processed")
	time.Sleep(processingDelay)

	summary, err := fetchSummary(ctx, config)
	if err != nil {
		return fmt.Errorf("tier summary retrieval failed: %w", err)
	}
	atRisk, err := fetchAtRiskCount(ctx, config)
	if err != nil {
		return fmt.Errorf("at-risk retrieval failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "seed run complete",
		logger.Int("students", stats.StudentsGenerated),
		logger.Int("sessions", stats.SessionsGenerated),
		logger.Int("accepted", int(stats.SessionsAccepted)),
		logger.Int("duplicate", int(stats.SessionsDuplicate)),
		logger.Int("failed", int(stats.SessionsFailed)),
		logger.Int("atRisk", atRisk),
		logger.Any("tierSummary", summary),
		logger.String("duration", stats.Duration.String()))

	if stats.SessionsFailed > 0 {
		return fmt.Errorf("%d sessions failed to submit", stats.SessionsFailed)
	}
	return nil
}
