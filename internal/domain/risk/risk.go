// Package risk classifies raw scores against benchmark cut points and
// aggregates per-target risk labels into multi-tier support levels.
package risk

import (
	"sort"
	"time"

	"github.com/edulytics/screener/internal/domain/benchmark"
	"github.com/edulytics/screener/internal/domain/model"
)

// Classifier maps raw scores to risk labels using an immutable benchmark
// table. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	table *benchmark.Table
}

// NewClassifier creates a classifier over the given table.
func NewClassifier(table *benchmark.Table) *Classifier {
	return &Classifier{table: table}
}

// Classify returns the risk label for a raw score, or ok=false when the
// (key, grade, window) triple has no benchmark entry. Cut points are
// compared in descending order with inclusive comparison, so a score
// equal to a cut point earns the better label. A missing cut point is
// skipped, never treated as zero. A score below every defined cut point
// is high risk.
func (c *Classifier) Classify(key, grade string, toy model.TimeOfYear, rawScore float64) (model.RiskLabel, bool) {
	cp, ok := c.table.Lookup(key, grade, toy)
	if !ok {
		return "", false
	}
	switch {
	case cp.Advanced != nil && rawScore >= *cp.Advanced:
		return model.RiskAdvanced, true
	case cp.Benchmark != nil && rawScore >= *cp.Benchmark:
		return model.RiskBenchmark, true
	case cp.Moderate != nil && rawScore >= *cp.Moderate:
		return model.RiskModerate, true
	default:
		return model.RiskHigh, true
	}
}

// Tier is the aggregated support level derived from risk labels.
type Tier int

// Support tiers.
const (
	Tier1 Tier = 1 // general instruction sufficient
	Tier2 Tier = 2 // targeted support
	Tier3 Tier = 3 // intensive support
)

// TierFor maps a risk label to its implied support tier.
func TierFor(label model.RiskLabel) Tier {
	switch label {
	case model.RiskModerate:
		return Tier2
	case model.RiskHigh:
		return Tier3
	default:
		return Tier1
	}
}

// AggregateTier computes the worst-case tier across a student's most
// recent risk labels. One high label forces tier 3 no matter how many
// benchmark labels sit beside it. An empty input is an error: tier 1
// asserts a verified benchmark status, which absence of data cannot.
func AggregateTier(labels []model.RiskLabel) (Tier, error) {
	if len(labels) == 0 {
		return 0, ErrNoData
	}
	worst := Tier1
	for _, label := range labels {
		if t := TierFor(label); t > worst {
			worst = t
		}
	}
	return worst, nil
}

// labeledKey identifies one (subtest, target) pair.
type labeledKey struct {
	subtest string
	target  string
}

// LatestObservations reduces a student's sessions to one observation
// per (subtest, target) pair, keeping the one from the session with
// the latest completion time. When completion times tie, the session
// later in the input wins. Sub-target rows and unlabeled rows are
// skipped. Output order is deterministic: sorted by subtest then
// target.
func LatestObservations(sessions []model.TestSession) []model.Observation {
	type latest struct {
		obs model.Observation
		at  time.Time
	}
	byTarget := make(map[labeledKey]latest)
	keys := make([]labeledKey, 0)

	for _, sess := range sessions {
		for _, obs := range sess.Scores {
			if obs.SubTarget != "" || obs.Risk == "" {
				continue
			}
			k := labeledKey{subtest: obs.Subtest, target: obs.Target}
			cur, seen := byTarget[k]
			if !seen {
				keys = append(keys, k)
			}
			if !seen || !sess.CompletedAt.Before(cur.at) {
				byTarget[k] = latest{obs: obs, at: sess.CompletedAt}
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].subtest != keys[j].subtest {
			return keys[i].subtest < keys[j].subtest
		}
		return keys[i].target < keys[j].target
	})

	out := make([]model.Observation, 0, len(keys))
	for _, k := range keys {
		out = append(out, byTarget[k].obs)
	}
	return out
}

// LatestLabels is LatestObservations reduced to the labels alone.
func LatestLabels(sessions []model.TestSession) []model.RiskLabel {
	observations := LatestObservations(sessions)
	labels := make([]model.RiskLabel, 0, len(observations))
	for _, obs := range observations {
		labels = append(labels, obs.Risk)
	}
	return labels
}
