package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/internal/domain/narrative"
	"github.com/edulytics/screener/internal/domain/recommend"
	"github.com/edulytics/screener/internal/domain/risk"
	"github.com/edulytics/screener/internal/domain/trend"
	"github.com/edulytics/screener/pkg/metrics"
)

// RiskDetail is one most-recent labeled observation with its
// intervention guidance.
type RiskDetail struct {
	Subtest        string          `json:"subtest"`
	Target         string          `json:"target"`
	RiskLevel      model.RiskLabel `json:"risk_level"`
	Recommendation string          `json:"recommendation,omitempty"`
}

// StudentTier is a student's aggregated support tier with the labels
// that produced it.
type StudentTier struct {
	StudentID  string       `json:"student_id"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	Grade      string       `json:"grade"`
	School     string       `json:"school"`
	Tier       int          `json:"tier"`
	RiskLevels []RiskDetail `json:"risk_levels"`
}

// TierBucket is one tier's share of the screened population.
type TierBucket struct {
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

// TierSummary is the population breakdown across support tiers.
// Students with no classifiable data are not counted anywhere.
type TierSummary struct {
	Tier1 TierBucket `json:"tier1"`
	Tier2 TierBucket `json:"tier2"`
	Tier3 TierBucket `json:"tier3"`
	Total int        `json:"total"`
}

// TierPeriod is a student's tier in one assessment window.
type TierPeriod struct {
	Period string `json:"period"`
	Tier   int    `json:"tier"`
}

// LatestScore is one entry of an at-risk student's latest session.
type LatestScore struct {
	RawScore  *float64        `json:"raw_score"`
	RiskLevel model.RiskLabel `json:"risk_level"`
}

// AtRiskStudent is one early-warning entry.
type AtRiskStudent struct {
	StudentID           string                 `json:"student_id"`
	StudentName         string                 `json:"student_name"`
	Grade               string                 `json:"grade"`
	School              string                 `json:"school"`
	Probability         trend.Probability      `json:"probability"`
	ContributingFactors []string               `json:"contributing_factors"`
	CurrentRisk         model.RiskLabel        `json:"current_risk"`
	LatestScores        map[string]LatestScore `json:"latest_scores"`
}

// StudentTier computes a student's current worst-case support tier.
// Returns repository.ErrNotFound for unknown students and
// risk.ErrNoData when the student has no classifiable labels.
func (s *Service) StudentTier(ctx context.Context, studentID string) (StudentTier, error) {
	student, err := s.store.Student(ctx, studentID)
	if err != nil {
		return StudentTier{}, err
	}
	sessions, err := s.store.Sessions(ctx, studentID)
	if err != nil {
		return StudentTier{}, err
	}

	observations := risk.LatestObservations(sessions)
	labels := make([]model.RiskLabel, 0, len(observations))
	for _, obs := range observations {
		labels = append(labels, obs.Risk)
	}
	tier, err := risk.AggregateTier(labels)
	if err != nil {
		return StudentTier{}, err
	}
	metrics.RecordTierComputation(strconv.Itoa(int(tier)))

	details := make([]RiskDetail, 0, len(observations))
	for _, obs := range observations {
		details = append(details, RiskDetail{
			Subtest:        obs.Subtest,
			Target:         obs.Target,
			RiskLevel:      obs.Risk,
			Recommendation: recommend.For(obs.Subtest, obs.Target, obs.Risk),
		})
	}

	return StudentTier{
		StudentID:  student.ID,
		FirstName:  student.FirstName,
		LastName:   student.LastName,
		Grade:      student.Grade,
		School:     student.School,
		Tier:       int(tier),
		RiskLevels: details,
	}, nil
}

// TierSummary computes tier counts and percentages across every
// student with classifiable data.
func (s *Service) TierSummary(ctx context.Context) (TierSummary, error) {
	counts := map[risk.Tier]int{}
	for _, student := range s.store.Students(ctx) {
		sessions, err := s.store.Sessions(ctx, student.ID)
		if err != nil {
			return TierSummary{}, err
		}
		tier, err := risk.AggregateTier(risk.LatestLabels(sessions))
		if err != nil {
			// No classifiable data: the student is not yet screened
			// and belongs in no bucket.
			continue
		}
		counts[tier]++
		metrics.RecordTierComputation(strconv.Itoa(int(tier)))
	}

	total := counts[risk.Tier1] + counts[risk.Tier2] + counts[risk.Tier3]
	pct := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return math.Round(float64(n)/float64(total)*1000) / 10
	}
	return TierSummary{
		Tier1: TierBucket{Count: counts[risk.Tier1], Pct: pct(counts[risk.Tier1])},
		Tier2: TierBucket{Count: counts[risk.Tier2], Pct: pct(counts[risk.Tier2])},
		Tier3: TierBucket{Count: counts[risk.Tier3], Pct: pct(counts[risk.Tier3])},
		Total: total,
	}, nil
}

// TierStudents lists every screened student with their tier, optionally
// filtered to one tier (0 means all).
func (s *Service) TierStudents(ctx context.Context, tier int) ([]StudentTier, error) {
	var out []StudentTier
	for _, student := range s.store.Students(ctx) {
		st, err := s.StudentTier(ctx, student.ID)
		if err != nil {
			continue
		}
		if tier != 0 && st.Tier != tier {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

// TierHistory computes a student's tier per assessment window, ordered
// by academic year then window.
func (s *Service) TierHistory(ctx context.Context, studentID string) ([]TierPeriod, error) {
	sessions, err := s.store.Sessions(ctx, studentID)
	if err != nil {
		return nil, err
	}

	type window struct {
		year string
		toy  model.TimeOfYear
	}
	labelsByWindow := make(map[window][]model.RiskLabel)
	for _, sess := range sessions {
		w := window{year: sess.AcademicYear, toy: sess.TimeOfYear}
		for _, obs := range sess.Scores {
			if obs.SubTarget != "" || obs.Risk == "" {
				continue
			}
			labelsByWindow[w] = append(labelsByWindow[w], obs.Risk)
		}
	}

	windows := make([]window, 0, len(labelsByWindow))
	for w := range labelsByWindow {
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool {
		if windows[i].year != windows[j].year {
			return windows[i].year < windows[j].year
		}
		return windows[i].toy.Order() < windows[j].toy.Order()
	})

	history := make([]TierPeriod, 0, len(windows))
	for _, w := range windows {
		tier, err := risk.AggregateTier(labelsByWindow[w])
		if err != nil {
			continue
		}
		metrics.RecordTierComputation(strconv.Itoa(int(tier)))
		history = append(history, TierPeriod{
			Period: fmt.Sprintf("%s %s", w.year, w.toy),
			Tier:   int(tier),
		})
	}
	return history, nil
}

// AtRisk evaluates every student's trajectory and returns the
// early-warning list: students whose scores are declining, plus
// students with no assessment at all. Sorted most urgent first.
func (s *Service) AtRisk(ctx context.Context) ([]AtRiskStudent, error) {
	var out []AtRiskStudent
	for _, student := range s.store.Students(ctx) {
		sessions, err := s.store.Sessions(ctx, student.ID)
		if err != nil {
			return nil, err
		}

		var res trend.Result
		if len(sessions) == 0 {
			res = trend.NoAssessment()
		} else {
			metrics.RecordTrendEvaluation()
			res = s.detector.Evaluate(sessions)
			if !res.Declining {
				continue
			}
			metrics.RecordTrendAlert(string(res.Probability))
		}

		out = append(out, AtRiskStudent{
			StudentID:           student.ID,
			StudentName:         fmt.Sprintf("%s, %s", student.LastName, student.FirstName),
			Grade:               student.Grade,
			School:              student.School,
			Probability:         res.Probability,
			ContributingFactors: res.Factors,
			CurrentRisk:         res.CurrentRisk,
			LatestScores:        latestScores(sessions),
		})
	}

	urgency := map[trend.Probability]int{trend.High: 0, trend.Medium: 1, trend.Low: 2}
	sort.SliceStable(out, func(i, j int) bool {
		return urgency[out[i].Probability] < urgency[out[j].Probability]
	})
	return out, nil
}

// latestScores flattens the most recent session into a per-target map.
func latestScores(sessions []model.TestSession) map[string]LatestScore {
	scores := make(map[string]LatestScore)
	if len(sessions) == 0 {
		return scores
	}
	latest := sessions[0]
	for _, sess := range sessions[1:] {
		if sess.CompletedAt.After(latest.CompletedAt) {
			latest = sess
		}
	}
	for _, obs := range latest.Scores {
		if obs.SubTarget != "" {
			continue
		}
		key := latest.Subtest + "_" + obs.Target
		scores[key] = LatestScore{RawScore: obs.RawScore, RiskLevel: obs.Risk}
	}
	return scores
}

// AnalyzeTranscript scores a retell transcript.
func (s *Service) AnalyzeTranscript(ctx context.Context, transcript string) narrative.Result {
	metrics.RecordTranscriptAnalyzed()
	return s.analyzer.Analyze(transcript)
}

// ToggleWatch flips the watch relation between a user and a student.
func (s *Service) ToggleWatch(ctx context.Context, userID, studentID string) (bool, error) {
	return s.store.ToggleWatch(ctx, userID, studentID)
}

// Watched returns the student IDs a user watches.
func (s *Service) Watched(ctx context.Context, userID string) []string {
	return s.store.Watched(ctx, userID)
}
