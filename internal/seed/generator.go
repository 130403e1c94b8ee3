package seed

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/edulytics/screener/internal/domain/benchmark"
	"github.com/edulytics/screener/internal/domain/catalog"
	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/pkg/logger"
	"github.com/google/uuid"
)

const randomFloatDivisor = 1_000_000

// Risk profiles assigned round-robin across the roster. A declining
// student screens at benchmark in the fall and at high risk midyear,
// which exercises the early-warning list.
const (
	profileBenchmark = "benchmark"
	profileModerate  = "moderate"
	profileHigh      = "high"
	profileDeclining = "declining"
)

var profiles = []string{profileBenchmark, profileBenchmark, profileModerate, profileHigh, profileDeclining}

var firstNames = []string{
	"Emma", "Liam", "Olivia", "Noah", "Ava", "Ethan", "Sophia", "Mason",
	"Isabella", "Logan", "Mia", "Lucas", "Amelia", "Aiden", "Harper",
	"Elijah", "Maya", "James", "Priya", "Mateo", "Sakura", "Chen",
	"Yuki", "Arjun", "Valentina", "Diego", "Luna", "Wei", "Hana", "Kai",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Wilson", "Anderson", "Taylor", "Torres",
	"Nguyen", "Chen", "Kim", "Patel", "Singh", "Wang", "Tanaka",
	"Murphy", "Sullivan", "Silva", "Santos", "O'Brien", "Okafor",
}

var schools = []string{
	"Lincoln Elementary", "Roosevelt Middle", "Jefferson Academy",
	"Washington STEM", "Sunset Elementary", "River Park Middle",
}

var grades = []string{"1", "2", "3"}

// randomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func pick(list []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	return list[n.Int64()]
}

// scoreForRisk generates a raw score inside the desired risk band. Keys
// without cut points for the grade and window get a low uniform score.
func scoreForRisk(table *benchmark.Table, key, grade string, toy model.TimeOfYear, desired string) float64 {
	cp, ok := table.Lookup(key, grade, toy)
	if !ok || cp.Benchmark == nil || cp.Moderate == nil {
		return round1(randomFloat() * 20)
	}
	benchmarkVal := *cp.Benchmark
	moderateVal := *cp.Moderate

	switch desired {
	case profileBenchmark:
		return round1(benchmarkVal + randomFloat()*(benchmarkVal*0.3+5))
	case profileModerate:
		return round1(moderateVal + randomFloat()*(benchmarkVal-0.1-moderateVal))
	default:
		low := moderateVal * 0.3
		return round1(low + randomFloat()*(moderateVal-0.1-low))
	}
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// windowRisk resolves the desired band for one assessment window.
func windowRisk(profile string, toy model.TimeOfYear) string {
	if profile != profileDeclining {
		return profile
	}
	if toy == model.BOY {
		return profileBenchmark
	}
	return profileHigh
}

// subtestsForGrade picks the battery administered at each grade.
func subtestsForGrade(grade string) []string {
	switch grade {
	case "1", "2":
		return []string{"NLM_READING", "DDM_PA"}
	default:
		return []string{"NLM_READING", "DDM_DI"}
	}
}

// completedAt places a session inside its assessment window.
func completedAt(academicYear string, toy model.TimeOfYear) string {
	startYear := academicYear[:4]
	var t time.Time
	switch toy {
	case model.BOY:
		t, _ = time.Parse("2006-01-02", startYear+"-09-15")
	case model.MOY:
		t, _ = time.Parse("2006-01-02", startYear+"-01-20")
		t = t.AddDate(1, 0, 0)
	default:
		t, _ = time.Parse("2006-01-02", startYear+"-05-20")
		t = t.AddDate(1, 0, 0)
	}
	return t.Format(time.RFC3339)
}

// generateSessions builds the full session set for a generated roster.
func generateSessions(ctx context.Context, config *Config, stats *Stats) ([]sessionPayload, error) {
	log := logger.Get().Named("seed")
	log.Info(ctx, "generating roster", logger.Int("students", config.NumStudents))

	table, err := benchmark.Load()
	if err != nil {
		return nil, err
	}

	var sessions []sessionPayload
	for i := 0; i < config.NumStudents; i++ {
		student := studentPayload{
			ID:        uuid.NewString(),
			FirstName: pick(firstNames),
			LastName:  pick(lastNames),
			Grade:     pick(grades),
			School:    pick(schools),
		}
		profile := profiles[i%len(profiles)]

		for _, toy := range []model.TimeOfYear{model.BOY, model.MOY} {
			desired := windowRisk(profile, toy)
			for _, subtestID := range subtestsForGrade(student.Grade) {
				sub, _ := catalog.Lookup(subtestID)
				var scores []scorePayload
				for _, target := range sub.Targets {
					key, ok := catalog.BenchmarkKey(subtestID, target)
					if !ok {
						continue
					}
					if _, ok := table.Lookup(key, student.Grade, toy); !ok {
						continue
					}
					scores = append(scores, scorePayload{
						Target:   target,
						RawScore: scoreForRisk(table, key, student.Grade, toy, desired),
					})
				}
				if len(scores) == 0 {
					continue
				}
				sessions = append(sessions, sessionPayload{
					SessionID:    uuid.NewString(),
					Student:      student,
					Subtest:      subtestID,
					Grade:        student.Grade,
					AcademicYear: config.AcademicYear,
					TimeOfYear:   string(toy),
					CompletedAt:  completedAt(config.AcademicYear, toy),
					Scores:       scores,
				})
			}
		}
		stats.StudentsGenerated++
	}

	stats.SessionsGenerated = len(sessions)
	log.Info(ctx, "roster generated",
		logger.Int("students", stats.StudentsGenerated),
		logger.Int("sessions", stats.SessionsGenerated))
	return sessions, nil
}
