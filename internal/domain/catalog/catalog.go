// Package catalog describes the screening battery: which subtests
// exist, the grades they cover, and how each subtest/target pair maps
// onto a benchmark table key.
package catalog

// Subtest categories.
const (
	CategoryNLM = "NLM"
	CategoryDDM = "DDM"
)

// Subtest is the static metadata for one assessment in the battery.
type Subtest struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Grades   []string `json:"grades"`
	Targets  []string `json:"targets"`
}

var subtests = []Subtest{
	{
		ID: "NLM_LISTENING", Name: "NLM Listening", Category: CategoryNLM,
		Grades:  []string{"PreK", "K", "1", "2", "3"},
		Targets: []string{"NLM_RETELL", "NLM_QUESTIONS"},
	},
	{
		ID: "NLM_READING", Name: "NLM Reading", Category: CategoryNLM,
		Grades:  []string{"1", "2", "3", "4", "5", "6", "7", "8"},
		Targets: []string{"NLM_RETELL", "NLM_QUESTIONS", "DECODING_FLUENCY"},
	},
	{
		ID: "DDM_PA", Name: "DDM Phonemic Awareness", Category: CategoryDDM,
		Grades:  []string{"PreK", "K", "1", "2"},
		Targets: []string{"PHONEME_SEGMENTATION", "PHONEME_BLENDING", "FIRST_SOUNDS", "CONTINUOUS_PHONEME_BLENDING"},
	},
	{
		ID: "DDM_PM", Name: "DDM Phoneme Manipulation", Category: CategoryDDM,
		Grades:  []string{"1", "2"},
		Targets: []string{"PHONEME_DELETION", "PHONEME_ADDITION", "PHONEME_SUBSTITUTION"},
	},
	{
		ID: "DDM_OM", Name: "DDM Orthographic Mapping", Category: CategoryDDM,
		Grades:  []string{"PreK", "K", "1", "2"},
		Targets: []string{"IRREGULAR_WORDS", "LETTER_SOUNDS", "LETTER_NAMES"},
	},
	{
		ID: "DDM_DI", Name: "DDM Decoding Inventory", Category: CategoryDDM,
		Grades: []string{"K", "1", "2", "3", "4"},
		Targets: []string{
			"CLOSED_SYLLABLES", "VCE", "BASIC_AFFIXES", "VOWEL_TEAMS",
			"VOWEL_R_CONTROLLED", "ADVANCED_AFFIXES", "COMPLEX_VOWELS", "ADVANCED_WORD_FORMS",
		},
	},
}

type pair struct{ subtest, target string }

// benchmarkKeys resolves subtest/target pairs to benchmark table keys.
// The NLM keys disambiguate modality because the same target is normed
// differently for listening and reading. Pairs without an entry, like
// LETTER_NAMES, have no norms and stay unscored.
var benchmarkKeys = map[pair]string{
	{"NLM_LISTENING", "NLM_RETELL"}:         "NLM_RETELL_LISTENING",
	{"NLM_LISTENING", "NLM_QUESTIONS"}:      "NLM_QUESTIONS_LISTENING",
	{"NLM_READING", "NLM_RETELL"}:           "NLM_RETELL_READING",
	{"NLM_READING", "NLM_QUESTIONS"}:        "NLM_QUESTIONS_READING",
	{"NLM_READING", "DECODING_FLUENCY"}:     "DECODING_FLUENCY",
	{"NLM_READING", "ACCURACY"}:             "ACCURACY",
	{"DDM_PA", "PHONEME_SEGMENTATION"}:      "DDM_PA_PHONEME_SEGMENTATION",
	{"DDM_PA", "PHONEME_BLENDING"}:          "DDM_PA_PHONEME_BLENDING",
	{"DDM_PA", "FIRST_SOUNDS"}:              "DDM_PA_FIRST_SOUNDS",
	{"DDM_PA", "CONTINUOUS_PHONEME_BLENDING"}: "DDM_PA_CONTINUOUS_BLENDING",
	{"DDM_PM", "PHONEME_DELETION"}:          "DDM_PM_DELETION",
	{"DDM_PM", "PHONEME_ADDITION"}:          "DDM_PM_ADDITION",
	{"DDM_PM", "PHONEME_SUBSTITUTION"}:      "DDM_PM_SUBSTITUTION",
	{"DDM_OM", "IRREGULAR_WORDS"}:           "DDM_OM_IRREGULAR_WORDS",
	{"DDM_OM", "LETTER_SOUNDS"}:             "DDM_OM_LETTER_SOUNDS",
	{"DDM_DI", "CLOSED_SYLLABLES"}:          "DDM_DI_CLOSED_SYLLABLES",
	{"DDM_DI", "VCE"}:                       "DDM_DI_VCE",
	{"DDM_DI", "BASIC_AFFIXES"}:             "DDM_DI_BASIC_AFFIXES",
	{"DDM_DI", "VOWEL_TEAMS"}:               "DDM_DI_VOWEL_TEAMS",
	{"DDM_DI", "VOWEL_R_CONTROLLED"}:        "DDM_DI_VOWEL_R",
	{"DDM_DI", "ADVANCED_AFFIXES"}:          "DDM_DI_ADVANCED_AFFIXES",
	{"DDM_DI", "COMPLEX_VOWELS"}:            "DDM_DI_COMPLEX_VOWELS",
	{"DDM_DI", "ADVANCED_WORD_FORMS"}:       "DDM_DI_ADVANCED_WORD_FORMS",
	{"DDM_DI", "WORDS_IN_CONTEXT"}:          "DDM_DI_WORDS_IN_CONTEXT",
}

// Subtests returns the battery metadata. The result is a copy; callers
// may not mutate the catalog.
func Subtests() []Subtest {
	out := make([]Subtest, len(subtests))
	copy(out, subtests)
	return out
}

// Lookup returns the metadata for one subtest ID.
func Lookup(id string) (Subtest, bool) {
	for _, s := range subtests {
		if s.ID == id {
			return s, true
		}
	}
	return Subtest{}, false
}

// BenchmarkKey maps a subtest/target pair onto its benchmark table key.
// The second return is false when the pair carries no norms.
func BenchmarkKey(subtest, target string) (string, bool) {
	key, ok := benchmarkKeys[pair{subtest, target}]
	return key, ok
}

// ValidTarget reports whether target belongs to the given subtest.
func ValidTarget(subtest, target string) bool {
	s, ok := Lookup(subtest)
	if !ok {
		return false
	}
	for _, t := range s.Targets {
		if t == target {
			return true
		}
	}
	return false
}
