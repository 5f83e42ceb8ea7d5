// Package text implements the normalization pipeline shared by the retrieval
// strategies: case folding, stopword removal, stemming, tokenization and
// nearest-neighbor typo correction against the corpus vocabulary.
package text

import (
	"strings"
	"unicode"

	"github.com/RadhiFadlillah/go-sastrawi"
	"github.com/bbalet/stopwords"
	snowballeng "github.com/kljensen/snowball/english"
)

// Language selects the stemmer and stopword list.
type Language string

const (
	// LanguageIndonesian uses the Sastrawi stemmer and stopword dictionary.
	LanguageIndonesian Language = "indonesian"
	// LanguageEnglish uses the snowball stemmer and an English stopword list.
	LanguageEnglish Language = "english"
)

// Options control the optional stages of the pipeline. Case folding always runs.
type Options struct {
	Stem            bool
	RemoveStopwords bool
}

// Preprocessor normalizes raw text. The stage order is fixed:
// lowercase, then stopword removal, then stemming. Deterministic and
// side-effect free for a given language.
type Preprocessor struct {
	language  Language
	stemmer   sastrawi.Stemmer
	stopwords sastrawi.Dictionary
}

// NewPreprocessor creates a preprocessor for the given language.
// Unknown languages fall back to Indonesian, which is what the corpus is in.
func NewPreprocessor(language Language) *Preprocessor {
	if language != LanguageEnglish {
		language = LanguageIndonesian
	}
	p := &Preprocessor{language: language}
	if language == LanguageIndonesian {
		p.stemmer = sastrawi.NewStemmer(sastrawi.DefaultDictionary())
		p.stopwords = sastrawi.DefaultStopword()
	}
	return p
}

// Process runs the pipeline. Empty input yields empty output.
func (p *Preprocessor) Process(text string, opts Options) string {
	if text == "" {
		return ""
	}
	processed := strings.ToLower(text)
	if opts.RemoveStopwords {
		processed = p.removeStopwords(processed)
	}
	if opts.Stem {
		processed = p.stem(processed)
	}
	return processed
}

func (p *Preprocessor) removeStopwords(s string) string {
	if p.language == LanguageEnglish {
		return strings.TrimSpace(stopwords.CleanString(s, "en", false))
	}
	kept := make([]string, 0)
	for _, word := range strings.Fields(s) {
		if p.stopwords.Contains(trimPunct(word)) {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

func (p *Preprocessor) stem(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		bare := trimPunct(word)
		if bare == "" {
			continue
		}
		if p.language == LanguageEnglish {
			words[i] = snowballeng.Stem(bare, false)
		} else {
			words[i] = p.stemmer.Stem(bare)
		}
	}
	return strings.Join(words, " ")
}

func trimPunct(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
