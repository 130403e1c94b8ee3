package risk_test

import (
	"errors"
	"testing"
	"time"

	"github.com/edulytics/screener/internal/domain/benchmark"
	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given a classifier over the reference table", t, func() {
		table, err := benchmark.Load()
		So(err, ShouldBeNil)
		c := risk.NewClassifier(table)

		Convey("When classifying decoding fluency in grade 3 at MOY", func() {
			// benchmark: 80, moderate: 50
			Convey("Then a score above benchmark earns benchmark", func() {
				label, ok := c.Classify("DECODING_FLUENCY", "3", model.MOY, 85)
				So(ok, ShouldBeTrue)
				So(label, ShouldEqual, model.RiskBenchmark)
			})

			Convey("And a score between the cut points earns moderate", func() {
				label, ok := c.Classify("DECODING_FLUENCY", "3", model.MOY, 60)
				So(ok, ShouldBeTrue)
				So(label, ShouldEqual, model.RiskModerate)
			})

			Convey("And a score below the lowest cut point earns high", func() {
				label, ok := c.Classify("DECODING_FLUENCY", "3", model.MOY, 20)
				So(ok, ShouldBeTrue)
				So(label, ShouldEqual, model.RiskHigh)
			})

			Convey("And a score equal to a cut point takes the better label", func() {
				label, ok := c.Classify("DECODING_FLUENCY", "3", model.MOY, 80)
				So(ok, ShouldBeTrue)
				So(label, ShouldEqual, model.RiskBenchmark)

				label, ok = c.Classify("DECODING_FLUENCY", "3", model.MOY, 50)
				So(ok, ShouldBeTrue)
				So(label, ShouldEqual, model.RiskModerate)
			})

			Convey("And a score at the advanced cut point earns advanced", func() {
				label, ok := c.Classify("DECODING_FLUENCY", "3", model.MOY, 112)
				So(ok, ShouldBeTrue)
				So(label, ShouldEqual, model.RiskAdvanced)
			})
		})

		Convey("When no benchmark entry exists for the triple", func() {
			_, ok := c.Classify("DECODING_FLUENCY", "PreK", model.MOY, 40)
			So(ok, ShouldBeFalse)

			_, ok = c.Classify("UNKNOWN_KEY", "3", model.MOY, 40)
			So(ok, ShouldBeFalse)

			_, ok = c.Classify("_meta", "3", model.MOY, 40)
			So(ok, ShouldBeFalse)
		})

		Convey("Then classification is monotonically non-decreasing in the score", func() {
			order := map[model.RiskLabel]int{
				model.RiskHigh:      0,
				model.RiskModerate:  1,
				model.RiskBenchmark: 2,
				model.RiskAdvanced:  3,
			}
			prev := -1
			for score := 0.0; score <= 160; score += 2.5 {
				label, ok := c.Classify("DECODING_FLUENCY", "3", model.MOY, score)
				So(ok, ShouldBeTrue)
				So(order[label], ShouldBeGreaterThanOrEqualTo, prev)
				prev = order[label]
			}
		})
	})
}

func TestAggregateTier(t *testing.T) {
	Convey("Given the tier aggregator", t, func() {
		Convey("When aggregating moderate and high", func() {
			tier, err := risk.AggregateTier([]model.RiskLabel{model.RiskModerate, model.RiskHigh})
			So(err, ShouldBeNil)
			So(tier, ShouldEqual, risk.Tier3)
		})

		Convey("When one high label hides among many benchmark labels", func() {
			labels := []model.RiskLabel{
				model.RiskBenchmark, model.RiskBenchmark, model.RiskBenchmark,
				model.RiskHigh, model.RiskBenchmark,
			}
			tier, err := risk.AggregateTier(labels)
			So(err, ShouldBeNil)
			So(tier, ShouldEqual, risk.Tier3)
		})

		Convey("When every label is benchmark or advanced", func() {
			tier, err := risk.AggregateTier([]model.RiskLabel{model.RiskAdvanced, model.RiskBenchmark})
			So(err, ShouldBeNil)
			So(tier, ShouldEqual, risk.Tier1)
		})

		Convey("When the worst label is moderate", func() {
			tier, err := risk.AggregateTier([]model.RiskLabel{model.RiskBenchmark, model.RiskModerate})
			So(err, ShouldBeNil)
			So(tier, ShouldEqual, risk.Tier2)
		})

		Convey("Then aggregation is order-independent", func() {
			a := []model.RiskLabel{model.RiskHigh, model.RiskBenchmark, model.RiskModerate}
			b := []model.RiskLabel{model.RiskModerate, model.RiskHigh, model.RiskBenchmark}
			ta, errA := risk.AggregateTier(a)
			tb, errB := risk.AggregateTier(b)
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)
			So(ta, ShouldEqual, tb)
		})

		Convey("When the input is empty", func() {
			_, err := risk.AggregateTier(nil)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, risk.ErrNoData), ShouldBeTrue)
		})
	})
}

func TestLatestLabels(t *testing.T) {
	Convey("Given a student's session history", t, func() {
		day := func(d int) time.Time {
			return time.Date(2025, time.September, d, 9, 0, 0, 0, time.UTC)
		}

		Convey("When a target was re-tested", func() {
			sessions := []model.TestSession{
				{
					Subtest: "NLM_READING", CompletedAt: day(1),
					Scores: []model.Observation{
						{Subtest: "NLM_READING", Target: "NLM_RETELL", Risk: model.RiskHigh},
					},
				},
				{
					Subtest: "NLM_READING", CompletedAt: day(15),
					Scores: []model.Observation{
						{Subtest: "NLM_READING", Target: "NLM_RETELL", Risk: model.RiskBenchmark},
					},
				},
			}

			Convey("Then only the latest label per target survives", func() {
				labels := risk.LatestLabels(sessions)
				So(labels, ShouldResemble, []model.RiskLabel{model.RiskBenchmark})
			})
		})

		Convey("When completion times tie", func() {
			sessions := []model.TestSession{
				{
					Subtest: "NLM_READING", CompletedAt: day(1),
					Scores: []model.Observation{
						{Subtest: "NLM_READING", Target: "NLM_RETELL", Risk: model.RiskHigh},
					},
				},
				{
					Subtest: "NLM_READING", CompletedAt: day(1),
					Scores: []model.Observation{
						{Subtest: "NLM_READING", Target: "NLM_RETELL", Risk: model.RiskModerate},
					},
				},
			}

			Convey("Then the session later in the input wins", func() {
				labels := risk.LatestLabels(sessions)
				So(labels, ShouldResemble, []model.RiskLabel{model.RiskModerate})
			})
		})

		Convey("When observations carry sub-targets or no label", func() {
			sessions := []model.TestSession{
				{
					Subtest: "NLM_READING", CompletedAt: day(1),
					Scores: []model.Observation{
						{Subtest: "NLM_READING", Target: "NLM_RETELL", Risk: model.RiskModerate},
						{Subtest: "NLM_READING", Target: "NLM_RETELL", SubTarget: "EC", Risk: model.RiskHigh},
						{Subtest: "NLM_READING", Target: "DECODING_FLUENCY"},
					},
				},
			}

			Convey("Then those rows are excluded", func() {
				labels := risk.LatestLabels(sessions)
				So(labels, ShouldResemble, []model.RiskLabel{model.RiskModerate})
			})
		})

		Convey("When different targets exist", func() {
			sessions := []model.TestSession{
				{
					Subtest: "NLM_READING", CompletedAt: day(1),
					Scores: []model.Observation{
						{Subtest: "NLM_READING", Target: "NLM_RETELL", Risk: model.RiskBenchmark},
						{Subtest: "NLM_READING", Target: "DECODING_FLUENCY", Risk: model.RiskHigh},
					},
				},
			}

			Convey("Then each target keeps its own label, sorted by target", func() {
				labels := risk.LatestLabels(sessions)
				So(labels, ShouldResemble, []model.RiskLabel{model.RiskHigh, model.RiskBenchmark})
			})
		})
	})
}
