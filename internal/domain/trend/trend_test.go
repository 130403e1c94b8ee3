package trend_test

import (
	"testing"
	"time"

	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/internal/domain/trend"
	. "github.com/smartystreets/goconvey/convey"
)

func session(year string, toy model.TimeOfYear, completed time.Time, scores ...model.Observation) model.TestSession {
	return model.TestSession{
		SessionID:    "sess-" + string(toy) + "-" + year,
		StudentID:    "student-1",
		Subtest:      "NLM_READING",
		Grade:        "3",
		AcademicYear: year,
		TimeOfYear:   toy,
		CompletedAt:  completed,
		Scores:       scores,
	}
}

func obs(target string, score float64, risk model.RiskLabel) model.Observation {
	return model.Observation{
		Subtest:  "NLM_READING",
		Target:   target,
		RawScore: model.Float64(score),
		Risk:     risk,
	}
}

func TestEvaluateDrop(t *testing.T) {
	Convey("Given a detector with the default threshold", t, func() {
		d := trend.NewDetector()
		boy := time.Date(2025, time.September, 15, 9, 0, 0, 0, time.UTC)
		moy := time.Date(2026, time.January, 20, 9, 0, 0, 0, time.UTC)

		Convey("When a target drops 25% between windows", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.BOY, boy, obs("DECODING_FLUENCY", 80, model.RiskBenchmark)),
				session("2025-2026", model.MOY, moy, obs("DECODING_FLUENCY", 60, model.RiskModerate)),
			}
			res := d.Evaluate(sessions)

			Convey("Then the trajectory is declining with a factor naming the target", func() {
				So(res.Declining, ShouldBeTrue)
				So(res.Factors, ShouldContain, "Declining NLM READING DECODING FLUENCY scores")
			})

			Convey("And current risk moderate yields high probability", func() {
				So(res.CurrentRisk, ShouldEqual, model.RiskModerate)
				So(res.Probability, ShouldEqual, trend.High)
			})
		})

		Convey("When a target drops less than the threshold", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.BOY, boy, obs("DECODING_FLUENCY", 80, model.RiskBenchmark)),
				session("2025-2026", model.MOY, moy, obs("DECODING_FLUENCY", 70, model.RiskBenchmark)),
			}
			res := d.Evaluate(sessions)

			Convey("Then no alert is raised", func() {
				So(res.Declining, ShouldBeFalse)
				So(res.Factors, ShouldBeEmpty)
			})
		})

		Convey("When the drop threshold is tightened", func() {
			strict := trend.NewDetector(trend.WithDropThreshold(0.10))
			sessions := []model.TestSession{
				session("2025-2026", model.BOY, boy, obs("DECODING_FLUENCY", 80, model.RiskBenchmark)),
				session("2025-2026", model.MOY, moy, obs("DECODING_FLUENCY", 70, model.RiskBenchmark)),
			}
			res := strict.Evaluate(sessions)

			Convey("Then the same history becomes declining", func() {
				So(res.Declining, ShouldBeTrue)
			})
		})
	})
}

func TestEvaluateEscalation(t *testing.T) {
	Convey("Given a detector", t, func() {
		d := trend.NewDetector()
		boy := time.Date(2025, time.September, 15, 9, 0, 0, 0, time.UTC)
		moy := time.Date(2026, time.January, 20, 9, 0, 0, 0, time.UTC)

		Convey("When risk escalates benchmark to high with no score change", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.BOY, boy, obs("NLM_RETELL", 15, model.RiskBenchmark)),
				session("2025-2026", model.MOY, moy, obs("NLM_RETELL", 15, model.RiskHigh)),
			}
			res := d.Evaluate(sessions)

			Convey("Then the escalation rule marks the trajectory declining", func() {
				So(res.Declining, ShouldBeTrue)
				So(res.Factors, ShouldContain, "Risk escalated to high on NLM READING NLM RETELL")
			})
		})

		Convey("When risk moves high to high", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.BOY, boy, obs("NLM_RETELL", 5, model.RiskHigh)),
				session("2025-2026", model.MOY, moy, obs("NLM_RETELL", 5, model.RiskHigh)),
			}
			res := d.Evaluate(sessions)

			Convey("Then stability at high risk is not an escalation", func() {
				So(res.Declining, ShouldBeFalse)
			})
		})
	})
}

func TestEvaluateEdgeCases(t *testing.T) {
	Convey("Given a detector", t, func() {
		d := trend.NewDetector()
		boy := time.Date(2025, time.September, 15, 9, 0, 0, 0, time.UTC)
		moy := time.Date(2026, time.January, 20, 9, 0, 0, 0, time.UTC)

		Convey("When a target has a single high-risk observation", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.BOY, boy, obs("NLM_RETELL", 4, model.RiskHigh)),
			}
			res := d.Evaluate(sessions)

			Convey("Then it is a reporting factor but not a decline", func() {
				So(res.Declining, ShouldBeFalse)
				So(res.Factors, ShouldContain, "High risk on NLM READING NLM RETELL")
			})
		})

		Convey("When a raw score is missing at an endpoint", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.BOY, boy, model.Observation{
					Subtest: "NLM_READING", Target: "NLM_RETELL", Risk: model.RiskBenchmark,
				}),
				session("2025-2026", model.MOY, moy, obs("NLM_RETELL", 10, model.RiskBenchmark)),
			}
			res := d.Evaluate(sessions)

			Convey("Then the comparison is skipped without a false positive", func() {
				So(res.Declining, ShouldBeFalse)
			})
		})

		Convey("When older academic years carry steep drops", func() {
			prevYear := time.Date(2024, time.September, 15, 9, 0, 0, 0, time.UTC)
			sessions := []model.TestSession{
				session("2024-2025", model.BOY, prevYear, obs("DECODING_FLUENCY", 100, model.RiskBenchmark)),
				session("2024-2025", model.MOY, prevYear.AddDate(0, 4, 0), obs("DECODING_FLUENCY", 40, model.RiskHigh)),
				session("2025-2026", model.BOY, boy, obs("DECODING_FLUENCY", 90, model.RiskBenchmark)),
			}
			res := d.Evaluate(sessions)

			Convey("Then only the most recent year is considered", func() {
				So(res.Declining, ShouldBeFalse)
			})
		})

		Convey("When sub-target rows drop sharply", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.BOY, boy, model.Observation{
					Subtest: "NLM_READING", Target: "NLM_RETELL", SubTarget: "EC",
					RawScore: model.Float64(3), Risk: model.RiskBenchmark,
				}),
				session("2025-2026", model.MOY, moy, model.Observation{
					Subtest: "NLM_READING", Target: "NLM_RETELL", SubTarget: "EC",
					RawScore: model.Float64(1), Risk: model.RiskHigh,
				}),
			}
			res := d.Evaluate(sessions)

			Convey("Then sub-targets never enter the trajectory", func() {
				So(res.Declining, ShouldBeFalse)
				So(res.Factors, ShouldBeEmpty)
			})
		})
	})
}

func TestOverallRisk(t *testing.T) {
	Convey("Given the majority rule over the latest session", t, func() {
		boy := time.Date(2025, time.September, 15, 9, 0, 0, 0, time.UTC)
		moy := time.Date(2026, time.January, 20, 9, 0, 0, 0, time.UTC)

		Convey("When half the labels are high", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.MOY, moy,
					obs("NLM_RETELL", 5, model.RiskHigh),
					obs("DECODING_FLUENCY", 90, model.RiskBenchmark),
				),
			}
			So(trend.OverallRisk(sessions), ShouldEqual, model.RiskHigh)
		})

		Convey("When high and moderate together reach half", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.MOY, moy,
					obs("NLM_RETELL", 12, model.RiskModerate),
					obs("NLM_QUESTIONS", 7, model.RiskModerate),
					obs("DECODING_FLUENCY", 90, model.RiskBenchmark),
					obs("VOCAB", 20, model.RiskBenchmark),
				),
			}
			So(trend.OverallRisk(sessions), ShouldEqual, model.RiskModerate)
		})

		Convey("When benchmark labels dominate", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.MOY, moy,
					obs("NLM_RETELL", 20, model.RiskBenchmark),
					obs("NLM_QUESTIONS", 12, model.RiskBenchmark),
					obs("DECODING_FLUENCY", 60, model.RiskModerate),
				),
			}
			So(trend.OverallRisk(sessions), ShouldEqual, model.RiskBenchmark)
		})

		Convey("When only an older session carries high labels", func() {
			sessions := []model.TestSession{
				session("2025-2026", model.BOY, boy, obs("NLM_RETELL", 3, model.RiskHigh)),
				session("2025-2026", model.MOY, moy, obs("NLM_RETELL", 20, model.RiskBenchmark)),
			}

			Convey("Then only the latest session is consulted", func() {
				So(trend.OverallRisk(sessions), ShouldEqual, model.RiskBenchmark)
			})
		})

		Convey("When there are no sessions or no labels", func() {
			So(trend.OverallRisk(nil), ShouldEqual, trend.Unknown)

			sessions := []model.TestSession{
				session("2025-2026", model.MOY, moy, model.Observation{
					Subtest: "NLM_READING", Target: "NLM_RETELL",
				}),
			}
			So(trend.OverallRisk(sessions), ShouldEqual, trend.Unknown)
		})
	})
}

func TestNoAssessment(t *testing.T) {
	Convey("Given a student with zero completed sessions", t, func() {
		res := trend.NoAssessment()

		Convey("Then the data-gap signal uses medium probability", func() {
			So(res.Declining, ShouldBeFalse)
			So(res.Probability, ShouldEqual, trend.Medium)
			So(res.Factors, ShouldResemble, []string{"No recent assessment"})
			So(res.CurrentRisk, ShouldEqual, trend.Unknown)
		})
	})
}
