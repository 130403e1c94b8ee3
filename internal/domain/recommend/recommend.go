// Package recommend maps an at-risk score onto intervention guidance
// for the teacher. The texts come from the published intervention
// playbook and are keyed by target first, subtest second, so
// target-specific guidance wins over subtest-level guidance.
package recommend

import "github.com/edulytics/screener/internal/domain/model"

const fallbackKey = "default"

var guidance = map[string]map[string]string{
	"NLM_RETELL": {
		"EC1": "Provide 15-30 minutes of explicit instruction in large or small groups twice a week. Practice retelling simple stories that include a problem, an attempt, and a consequence/ending.",
		"SC":  "Encourage and prompt complex language structures while retelling narratives. Targets: 'because', 'so that', 'when', 'after', and modifiers. Students should also use relative subordinate clauses with 'who', 'that', or 'which'.",
		"VC":  "Teach more complex tier 2 words as well as adjectives and adverbs during narrative retelling activities.",
		"EC2": "Encourage students to include two sets of problems, attempts, and consequences in retells. Use Story Champs Level J stories and selected children's literature.",
		fallbackKey: "Provide 15-30 minutes of explicit instruction in large or small groups twice a week. Practice retelling simple stories that include a problem, an attempt, and a consequence/ending.",
	},
	"NLM_QUESTIONS": {
		"FACTUAL":                "Provide repeated practice during retell intervention sessions to answer questions about story grammar elements: Who? What was the problem? How did they feel? What did they do? How did it end?",
		"INFERENTIAL_VOCABULARY": "Encourage use of clues in the story to infer meaning of words and provide definitions of target vocabulary words.",
		"INFERENTIAL_REASONING":  "Encourage use of clues in the story to infer meaning. Provide practice making inferences using story context.",
		"EXPOSITORY":             "Provide explicit instruction to identify important information and comprehend specific discourse structures. Pre-reading, during reading, and post-reading strategies with key words and graphic organizers.",
		fallbackKey:              "Provide repeated practice during retell intervention sessions to answer questions about story grammar elements: Who? What was the problem? How did they feel? What did they do? How did it end?",
	},
	"DECODING_FLUENCY": {
		fallbackKey: "Students should receive 5-15 minutes of fluency practice multiple times a week. Focus on prosody and comprehension, not just speed. Use repeated reading of passages or short one-minute reading sprints.",
	},
	"DDM_PA": {
		"PHONEME_SEGMENTATION":        "Practice segmenting and blending words orally, starting with simple CV, VC, and CVC patterns. Use visuals like finger counting or chip moving for each phoneme.",
		"PHONEME_BLENDING":            "Practice blending words orally, starting with simple CV, VC, and CVC patterns.",
		"FIRST_SOUNDS":                "Practice identifying first sounds with onset-rime segmentation. Integrate with letters so visuals help students understand each letter makes its own sound.",
		"CONTINUOUS_PHONEME_BLENDING": "Practice continuous phoneme blending with increasingly complex words.",
	},
	"DDM_PM": {
		"PHONEME_DELETION":     "Phoneme manipulation tasks are the best measures of phonological awareness skills needed for reading. Practice adding, deleting, and substituting phonemes.",
		"PHONEME_ADDITION":     "Practice phoneme addition tasks with increasingly complex words.",
		"PHONEME_SUBSTITUTION": "Practice phoneme substitution tasks with increasingly complex words.",
	},
	"DDM_OM": {
		"IRREGULAR_WORDS": "Provide explicit instruction for irregular words in small groups. Practice irregular words as they appear in books rather than in isolation. Use flash cards or drill-type instruction.",
		"LETTER_SOUNDS":   "Practice saying sounds that correspond to each letter. Separate visually and auditorily similar letters. Start with useful continuous sounds (m, s, f, l, r, n) using lowercase letters.",
		"LETTER_NAMES":    "Practice letter name identification alongside letter sounds.",
	},
	"DDM_DI": {
		"CLOSED_SYLLABLES": "Teach letter-by-letter sounding out strategy for CVC words before introducing more complex patterns.",
		fallbackKey:        "Teach various word patterns beginning with most frequently occurring patterns. Use systematic instruction for consonant digraphs, vowel digraphs, diphthongs, and r/l-controlled vowels.",
	},
}

// For returns the intervention text for a subtest/target at the given
// risk, or "" when the student is at or above benchmark or no guidance
// exists. Only moderate and high risk warrant intervention.
func For(subtest, target string, risk model.RiskLabel) string {
	if risk != model.RiskModerate && risk != model.RiskHigh {
		return ""
	}

	texts, ok := guidance[target]
	if !ok {
		texts = guidance[subtest]
	}
	if len(texts) == 0 {
		return ""
	}
	if text, ok := texts[target]; ok {
		return text
	}
	return texts[fallbackKey]
}
