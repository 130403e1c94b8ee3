package narrative

// Lexicon holds the word lists driving each rubric dimension. All
// matching is case-insensitive and word-boundary anchored, so
// multi-word entries like "so that" are allowed.
type Lexicon struct {
	Subordinating  []string `koanf:"subordinating"`
	RelativeClause []string `koanf:"relative_clause"`
	Causal         []string `koanf:"causal"`
	Problem        []string `koanf:"problem"`
	Attempt        []string `koanf:"attempt"`
	Consequence    []string `koanf:"consequence"`
}

// DefaultLexicon returns the rubric vocabulary the analyzer ships with.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Subordinating: []string{
			"because", "so that", "when", "after", "before", "although",
			"while", "since", "if", "unless", "until",
		},
		RelativeClause: []string{"who", "which", "that"},
		Causal:         []string{"because", "so", "therefore", "caused", "made"},
		Problem: []string{
			"problem", "trouble", "wrong", "broke", "lost", "fell", "hurt",
			"scared", "worried", "upset", "sad", "angry", "stuck",
		},
		Attempt: []string{
			"tried", "decided", "went", "looked", "asked", "helped",
			"made", "used", "thought", "wanted",
		},
		Consequence: []string{
			"finally", "then", "happy", "better", "fixed", "found",
			"learned", "end", "resolved", "glad", "relieved",
		},
	}
}

// merge overlays non-empty lists from other onto the receiver.
func (l Lexicon) merge(other Lexicon) Lexicon {
	if len(other.Subordinating) > 0 {
		l.Subordinating = other.Subordinating
	}
	if len(other.RelativeClause) > 0 {
		l.RelativeClause = other.RelativeClause
	}
	if len(other.Causal) > 0 {
		l.Causal = other.Causal
	}
	if len(other.Problem) > 0 {
		l.Problem = other.Problem
	}
	if len(other.Attempt) > 0 {
		l.Attempt = other.Attempt
	}
	if len(other.Consequence) > 0 {
		l.Consequence = other.Consequence
	}
	return l
}
