package service

import (
	"context"
	"time"

	"github.com/edulytics/screener/internal/domain/catalog"
	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/pkg/metrics"
)

// LabelSession classifies every target-level observation of a session
// against the benchmark table. Observations without norms for their
// (key, grade, window) triple stay unlabeled; that is a legitimate
// outcome, not an error. Sub-target rows pass through untouched.
func (s *Service) LabelSession(ctx context.Context, sess model.TestSession) (model.TestSession, error) {
	start := time.Now()
	defer func() {
		metrics.RecordClassifyLatency(float64(time.Since(start).Milliseconds()))
	}()

	for i := range sess.Scores {
		obs := &sess.Scores[i]
		if obs.Subtest == "" {
			obs.Subtest = sess.Subtest
		}
		if obs.SubTarget != "" || obs.RawScore == nil {
			continue
		}

		key, ok := catalog.BenchmarkKey(sess.Subtest, obs.Target)
		if !ok {
			metrics.RecordScoreUnscored()
			continue
		}
		label, ok := s.classifier.Classify(key, sess.Grade, sess.TimeOfYear, *obs.RawScore)
		if !ok {
			metrics.RecordScoreUnscored()
			continue
		}
		obs.Risk = label
		metrics.RecordScoreClassified(string(label))
	}
	return sess, nil
}
