package text

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultCutoff is the minimum similarity ratio for a correction candidate.
const DefaultCutoff = 0.6

// Corrector maps out-of-vocabulary query tokens to their closest
// in-vocabulary match by Ratcliff/Obershelp sequence similarity.
type Corrector struct {
	cutoff float64
}

// NewCorrector creates a corrector. Cutoffs outside (0, 1] fall back to
// DefaultCutoff.
func NewCorrector(cutoff float64) *Corrector {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}
	return &Corrector{cutoff: cutoff}
}

// Correct rewrites the query with the nearest vocabulary token substituted
// for each unknown token. It reports false when the query is empty, the
// vocabulary is empty, or no token needed substitution.
func (c *Corrector) Correct(query string, vocab []string) (string, bool) {
	if query == "" || len(vocab) == 0 {
		return "", false
	}

	known := make(map[string]struct{}, len(vocab))
	for _, w := range vocab {
		known[w] = struct{}{}
	}

	words := strings.Fields(strings.ToLower(query))
	corrected := make([]string, len(words))
	substituted := false
	for i, word := range words {
		corrected[i] = word
		if _, ok := known[word]; ok {
			continue
		}
		if match, ok := c.closest(word, vocab); ok {
			corrected[i] = match
			substituted = true
		}
	}

	if !substituted {
		return "", false
	}
	return strings.Join(corrected, " "), true
}

// closest scans the sorted vocabulary keeping the candidate with the highest
// ratio at or above the cutoff. Only a strictly greater ratio replaces the
// current best, so ties resolve to the lexicographically smallest token.
func (c *Corrector) closest(word string, vocab []string) (string, bool) {
	target := splitRunes(word)
	best := ""
	bestRatio := 0.0
	for _, candidate := range vocab {
		ratio := difflib.NewMatcher(target, splitRunes(candidate)).Ratio()
		if ratio >= c.cutoff && ratio > bestRatio {
			best, bestRatio = candidate, ratio
		}
	}
	return best, best != ""
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
