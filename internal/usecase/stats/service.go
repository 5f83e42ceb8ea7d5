// Package stats computes corpus-level statistics for the frontend's word
// cloud and category breakdown.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/temu-lab/temudoc/internal/domain"
	"github.com/temu-lab/temudoc/internal/text"
)

// topTermLimit caps the word cloud size.
const topTermLimit = 50

// CorpusReader lists corpus documents.
type CorpusReader interface {
	List(ctx context.Context) ([]domain.Document, error)
}

// Service computes corpus statistics.
type Service struct {
	corpus CorpusReader
	pre    *text.Preprocessor
}

// New creates a stats service.
func New(corpus CorpusReader, pre *text.Preprocessor) *Service {
	return &Service{corpus: corpus, pre: pre}
}

// TopTerms returns the most frequent tokens across the corpus after
// stopword-only preprocessing, sorted by descending count (ties
// lexicographic), capped at 50.
func (s *Service) TopTerms(ctx context.Context) ([]domain.TermCount, error) {
	docs, err := s.corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text
	}
	cleaned := s.pre.Process(strings.Join(texts, " "), text.Options{RemoveStopwords: true})

	counts := make(map[string]int)
	for _, tok := range strings.Fields(cleaned) {
		counts[tok]++
	}

	terms := make([]domain.TermCount, 0, len(counts))
	for tok, n := range counts {
		terms = append(terms, domain.TermCount{Text: tok, Value: n})
	}
	sort.Slice(terms, func(a, b int) bool {
		if terms[a].Value != terms[b].Value {
			return terms[a].Value > terms[b].Value
		}
		return terms[a].Text < terms[b].Text
	})
	if len(terms) > topTermLimit {
		terms = terms[:topTermLimit]
	}
	return terms, nil
}

// Categories returns a mapping from category name to document count.
func (s *Service) Categories(ctx context.Context) (map[string]int, error) {
	docs, err := s.corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}

	categories := make(map[string]int)
	for _, doc := range docs {
		name := doc.Category
		if name == "" {
			name = domain.DefaultCategory
		}
		categories[name]++
	}
	return categories, nil
}
