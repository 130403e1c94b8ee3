// Package narrative derives heuristic sub-scores for oral narrative
// retellings from free-text transcripts.
//
// The analyzer is a deterministic keyword heuristic, not a validated
// scoring model: it approximates the retell rubric well enough to
// prefill scores a clinician then confirms. Word lists are
// configuration data so thresholds can be tuned without touching the
// algorithm.
package narrative

import (
	"fmt"
	"regexp"
	"strings"
)

// Sub-score dimension keys.
const (
	EpisodeComplexity    = "EC"
	SentenceComplexity   = "SC"
	VocabularyComplexity = "VC"
	DiscourseComplexity  = "NDC"
)

// MaxSubScore caps each dimension; MaxTotal caps their sum.
const (
	MaxSubScore = 3
	MaxTotal    = 12
)

// SubScore is one scored rubric dimension with its rationale.
type SubScore struct {
	Score  int    `json:"score"`
	Max    int    `json:"max"`
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// Result holds the lexical statistics and sub-scores for one
// transcript. The zero value is the empty result returned for blank or
// placeholder input.
type Result struct {
	WordCount      int                 `json:"word_count"`
	SentenceCount  int                 `json:"sentence_count"`
	UniqueWords    int                 `json:"unique_words"`
	TypeTokenRatio float64             `json:"type_token_ratio"`
	SubScores      map[string]SubScore `json:"sub_scores,omitempty"`
	Total          int                 `json:"total_retell_score"`
	Max            int                 `json:"max_retell_score"`
}

// Empty reports whether the result carries no analysis.
func (r Result) Empty() bool {
	return r.SubScores == nil
}

// Analyzer computes transcript statistics and sub-scores. It compiles
// its patterns once and is safe for concurrent use.
type Analyzer struct {
	lexicon Lexicon

	subordinating *regexp.Regexp
	relative      *regexp.Regexp
	causal        *regexp.Regexp
	problem       *regexp.Regexp
	attempt       *regexp.Regexp
	consequence   *regexp.Regexp

	sentenceSplit *regexp.Regexp
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithLexicon replaces the default word lists. Empty lists within the
// lexicon keep their defaults.
func WithLexicon(lex Lexicon) Option {
	return func(a *Analyzer) {
		a.lexicon = a.lexicon.merge(lex)
	}
}

// NewAnalyzer creates an analyzer with the default rubric vocabulary.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{lexicon: DefaultLexicon()}
	for _, opt := range opts {
		opt(a)
	}

	a.subordinating = wordPattern(a.lexicon.Subordinating)
	a.relative = wordPattern(a.lexicon.RelativeClause)
	a.causal = wordPattern(a.lexicon.Causal)
	a.problem = wordPattern(a.lexicon.Problem)
	a.attempt = wordPattern(a.lexicon.Attempt)
	a.consequence = wordPattern(a.lexicon.Consequence)
	a.sentenceSplit = regexp.MustCompile(`[.!?]+`)

	return a
}

// wordPattern compiles a case-insensitive word-boundary alternation.
func wordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Analyze scores a retell transcript. Blank input and placeholder text
// (a leading "[" marks transcription-pending markers) return the empty
// result rather than an error.
func (a *Analyzer) Analyze(transcript string) Result {
	if transcript == "" || strings.HasPrefix(transcript, "[") {
		return Result{}
	}

	words := strings.Fields(transcript)
	wordCount := len(words)

	sentenceCount := 0
	for _, fragment := range a.sentenceSplit.Split(transcript, -1) {
		if strings.TrimSpace(fragment) != "" {
			sentenceCount++
		}
	}

	unique := make(map[string]struct{}, wordCount)
	for _, w := range words {
		unique[strings.Trim(strings.ToLower(w), ".,!?;:")] = struct{}{}
	}
	uniqueWords := len(unique)

	ratio := 0.0
	if wordCount > 0 {
		ratio = float64(uniqueWords) / float64(wordCount)
	}

	subordinating := len(a.subordinating.FindAllString(transcript, -1))
	relative := len(a.relative.FindAllString(transcript, -1))
	causal := len(a.causal.FindAllString(transcript, -1))
	problems := len(a.problem.FindAllString(transcript, -1))
	attempts := len(a.attempt.FindAllString(transcript, -1))
	consequences := len(a.consequence.FindAllString(transcript, -1))

	hasProblem := problems > 0
	hasAttempt := attempts > 0
	hasConsequence := consequences > 0
	episodeComplete := hasProblem && hasAttempt && hasConsequence

	ec := 0
	for _, present := range []bool{hasProblem, hasAttempt, hasConsequence} {
		if present {
			ec++
		}
	}

	sc := subordinating + relative
	if sc > MaxSubScore {
		sc = MaxSubScore
	}

	vc := 0
	switch {
	case ratio > 0.7:
		vc = 3
	case ratio > 0.5:
		vc = 2
	case ratio > 0.3:
		vc = 1
	}

	ndc := 0
	switch {
	case episodeComplete && subordinating >= 2 && ratio > 0.5:
		ndc = 3
	case episodeComplete && subordinating >= 1:
		ndc = 2
	case hasProblem || hasAttempt:
		ndc = 1
	}

	return Result{
		WordCount:      wordCount,
		SentenceCount:  sentenceCount,
		UniqueWords:    uniqueWords,
		TypeTokenRatio: ratio,
		SubScores: map[string]SubScore{
			EpisodeComplexity: {
				Score: ec, Max: MaxSubScore, Label: "Episode Complexity",
				Detail: fmt.Sprintf("Problem: %s, Attempt: %s, Consequence: %s",
					yesNo(hasProblem), yesNo(hasAttempt), yesNo(hasConsequence)),
			},
			SentenceComplexity: {
				Score: sc, Max: MaxSubScore, Label: "Sentence Complexity",
				Detail: fmt.Sprintf("%d subordinating conjunctions, %d relative clauses",
					subordinating, relative),
			},
			VocabularyComplexity: {
				Score: vc, Max: MaxSubScore, Label: "Vocabulary Complexity",
				Detail: fmt.Sprintf("Type-token ratio: %.3f (%d/%d)", ratio, uniqueWords, wordCount),
			},
			DiscourseComplexity: {
				Score: ndc, Max: MaxSubScore, Label: "Narrative Discourse Complexity",
				Detail: fmt.Sprintf("Episode complete: %s, causal connectors: %d",
					yesNo(episodeComplete), causal),
			},
		},
		Total: ec + sc + vc + ndc,
		Max:   MaxTotal,
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
