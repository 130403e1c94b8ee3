// Package trend detects declining performance trajectories across a
// student's score history within one academic year.
//
// Two rule sets exist in the lineage of this screener. This package
// implements the stricter one: only target-level scores participate,
// a drop must reach the configured threshold (default 20%) of the
// previous score, and a benchmark/moderate to high escalation marks
// decline regardless of the score change. The "any decrease counts"
// variant is intentionally not implemented.
package trend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edulytics/screener/internal/domain/model"
)

// Probability buckets an at-risk student's likelihood of further decline.
type Probability string

// Probability buckets, least to most urgent.
const (
	Low    Probability = "low"
	Medium Probability = "medium"
	High   Probability = "high"
)

// Unknown is the overall risk reported when the latest session carries
// no classifiable labels.
const Unknown model.RiskLabel = "unknown"

const defaultDropThreshold = 0.20

// Point is one observation of a target within the year, ordered by the
// BOY -> MOY -> EOY window sequence.
type Point struct {
	TimeOfYear model.TimeOfYear
	RawScore   *float64
	Risk       model.RiskLabel
}

// Result is the outcome of one trajectory evaluation. Declining false
// means no alert: callers omit the student entirely.
type Result struct {
	Declining   bool            `json:"is_declining"`
	Factors     []string        `json:"contributing_factors"`
	Probability Probability     `json:"probability"`
	CurrentRisk model.RiskLabel `json:"current_risk"`
}

// Detector evaluates score trajectories. It is stateless apart from its
// configuration and safe for concurrent use.
type Detector struct {
	dropThreshold float64
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithDropThreshold sets the fractional score drop that marks a target
// declining. Values outside (0, 1] keep the default.
func WithDropThreshold(threshold float64) Option {
	return func(d *Detector) {
		if threshold > 0 && threshold <= 1 {
			d.dropThreshold = threshold
		}
	}
}

// NewDetector creates a detector with the default 20% drop threshold.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{dropThreshold: defaultDropThreshold}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Evaluate inspects a student's completed sessions and reports whether
// their trajectory is declining, the contributing factors, and the
// probability of further decline. Callers handle the zero-session case
// with NoAssessment before calling.
func (d *Detector) Evaluate(sessions []model.TestSession) Result {
	trajectory := d.trajectories(sessions)
	declining, factors := d.detect(trajectory)
	current := OverallRisk(sessions)

	res := Result{
		Declining:   declining,
		Factors:     factors,
		CurrentRisk: current,
	}
	if !declining {
		return res
	}
	switch current {
	case model.RiskModerate, model.RiskHigh:
		res.Probability = High
	case model.RiskBenchmark:
		res.Probability = Medium
	default:
		res.Probability = Low
	}
	return res
}

// NoAssessment is the data-gap signal for a student with zero completed
// sessions. It is reported alongside computed trends, not derived from
// one.
func NoAssessment() Result {
	return Result{
		Declining:   false,
		Factors:     []string{"No recent assessment"},
		Probability: Medium,
		CurrentRisk: Unknown,
	}
}

// trajectories builds per-target point series for the most recent
// academic year in the history, ordered BOY -> MOY -> EOY. Sub-target
// rows are excluded.
func (d *Detector) trajectories(sessions []model.TestSession) map[string][]Point {
	if len(sessions) == 0 {
		return nil
	}

	latestYear := sessions[0].AcademicYear
	for _, s := range sessions[1:] {
		if s.AcademicYear > latestYear {
			latestYear = s.AcademicYear
		}
	}

	yearSessions := make([]model.TestSession, 0, len(sessions))
	for _, s := range sessions {
		if s.AcademicYear == latestYear {
			yearSessions = append(yearSessions, s)
		}
	}
	sort.SliceStable(yearSessions, func(i, j int) bool {
		return yearSessions[i].TimeOfYear.Order() < yearSessions[j].TimeOfYear.Order()
	})

	trajectory := make(map[string][]Point)
	for _, sess := range yearSessions {
		for _, obs := range sess.Scores {
			if obs.SubTarget != "" {
				continue
			}
			key := sess.Subtest + "_" + obs.Target
			trajectory[key] = append(trajectory[key], Point{
				TimeOfYear: sess.TimeOfYear,
				RawScore:   obs.RawScore,
				Risk:       obs.Risk,
			})
		}
	}
	return trajectory
}

// detect applies the drop and escalation rules per target. Targets are
// visited in sorted key order so factor output is deterministic.
func (d *Detector) detect(trajectory map[string][]Point) (bool, []string) {
	keys := make([]string, 0, len(trajectory))
	for k := range trajectory {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	declining := false
	var factors []string
	for _, key := range keys {
		points := trajectory[key]
		name := strings.ReplaceAll(key, "_", " ")

		if len(points) < 2 {
			// A lone high-risk observation is a reporting signal, not
			// a confirmed trend.
			if len(points) == 1 && points[0].Risk == model.RiskHigh {
				factors = append(factors, fmt.Sprintf("High risk on %s", name))
			}
			continue
		}

		recent := points[len(points)-1]
		previous := points[len(points)-2]

		if recent.RawScore != nil && previous.RawScore != nil && *previous.RawScore > 0 {
			dropPct := (*previous.RawScore - *recent.RawScore) / *previous.RawScore
			if dropPct >= d.dropThreshold {
				declining = true
				factors = append(factors, fmt.Sprintf("Declining %s scores", name))
			}
		}

		escalated := (previous.Risk == model.RiskBenchmark || previous.Risk == model.RiskModerate) &&
			recent.Risk == model.RiskHigh
		if escalated {
			declining = true
			factors = append(factors, fmt.Sprintf("Risk escalated to high on %s", name))
		}
	}
	return declining, factors
}

// OverallRisk derives the student's current risk from the single latest
// completed session: high if at least half its labels are high, else
// moderate if high and moderate together reach half, else benchmark.
func OverallRisk(sessions []model.TestSession) model.RiskLabel {
	if len(sessions) == 0 {
		return Unknown
	}
	latest := sessions[0]
	for _, s := range sessions[1:] {
		if s.CompletedAt.After(latest.CompletedAt) {
			latest = s
		}
	}

	var total, high, moderate int
	for _, obs := range latest.Scores {
		if obs.SubTarget != "" || obs.Risk == "" {
			continue
		}
		total++
		switch obs.Risk {
		case model.RiskHigh:
			high++
		case model.RiskModerate:
			moderate++
		}
	}
	if total == 0 {
		return Unknown
	}
	half := float64(total) / 2
	switch {
	case float64(high) >= half:
		return model.RiskHigh
	case float64(high+moderate) >= half:
		return model.RiskModerate
	default:
		return model.RiskBenchmark
	}
}
