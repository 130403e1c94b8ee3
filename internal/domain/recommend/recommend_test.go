package recommend_test

import (
	"strings"
	"testing"

	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFor(t *testing.T) {
	Convey("Given the intervention guidance", t, func() {
		Convey("When risk is at or above benchmark", func() {
			So(recommend.For("NLM_READING", "DECODING_FLUENCY", model.RiskBenchmark), ShouldBeEmpty)
			So(recommend.For("NLM_READING", "DECODING_FLUENCY", model.RiskAdvanced), ShouldBeEmpty)
			So(recommend.For("NLM_READING", "DECODING_FLUENCY", ""), ShouldBeEmpty)
		})

		Convey("When a moderate decoding fluency score needs guidance", func() {
			text := recommend.For("NLM_READING", "DECODING_FLUENCY", model.RiskModerate)
			So(text, ShouldContainSubstring, "fluency practice")
			So(text, ShouldContainSubstring, "prosody")
		})

		Convey("When the target has subtest-level guidance only", func() {
			text := recommend.For("DDM_PA", "PHONEME_SEGMENTATION", model.RiskHigh)
			So(text, ShouldContainSubstring, "segmenting and blending")
		})

		Convey("When a decoding inventory target has no specific entry", func() {
			text := recommend.For("DDM_DI", "VOWEL_TEAMS", model.RiskHigh)
			So(text, ShouldContainSubstring, "word patterns")

			Convey("And a target with its own entry overrides the default", func() {
				So(recommend.For("DDM_DI", "CLOSED_SYLLABLES", model.RiskHigh),
					ShouldContainSubstring, "letter-by-letter")
			})
		})

		Convey("When a retell target lacks a sub-dimension match", func() {
			text := recommend.For("NLM_LISTENING", "NLM_RETELL", model.RiskHigh)
			So(text, ShouldContainSubstring, "retelling simple stories")
		})

		Convey("When nothing matches at all", func() {
			So(recommend.For("UNKNOWN", "UNKNOWN_TARGET", model.RiskHigh), ShouldBeEmpty)
		})

		Convey("Then moderate and high risk share the same text", func() {
			mod := recommend.For("DDM_OM", "IRREGULAR_WORDS", model.RiskModerate)
			high := recommend.For("DDM_OM", "IRREGULAR_WORDS", model.RiskHigh)
			So(mod, ShouldNotBeEmpty)
			So(strings.Compare(mod, high), ShouldEqual, 0)
		})
	})
}
