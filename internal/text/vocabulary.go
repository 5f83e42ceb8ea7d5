package text

import (
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\w+`)

// Tokenize returns the maximal runs of word characters (letters, digits,
// underscore) in the lowercased text.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// BuildVocabulary extracts the distinct tokens across all texts, sorted
// lexicographically. The sorted order is what makes the typo corrector's
// tie-break deterministic. Rebuilt per request, so it always reflects the
// corpus's current state.
func BuildVocabulary(texts []string) []string {
	seen := make(map[string]struct{})
	for _, t := range texts {
		for _, tok := range Tokenize(t) {
			seen[tok] = struct{}{}
		}
	}
	vocab := make([]string, 0, len(seen))
	for tok := range seen {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)
	return vocab
}
