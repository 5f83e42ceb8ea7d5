// Package analysis reconstructs a human-readable trace of why a document
// matched (or scored as it did) under a given retrieval method.
package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/temu-lab/temudoc/internal/domain"
	"github.com/temu-lab/temudoc/internal/text"
)

// NoMatchLabel is the chart sentinel used when no query token occurs in the
// target document.
const NoMatchLabel = "(No Match)"

// Service explains per-document matches.
type Service struct {
	corpus    CorpusReader
	clusterer Clusterer
}

// New creates an analysis service.
func New(corpus CorpusReader, clusterer Clusterer) *Service {
	return &Service{corpus: corpus, clusterer: clusterer}
}

// Explain builds the trace for a (method, query, document) triple.
// An unresolvable document id yields domain.ErrDocumentNotFound; an
// unrecognized method yields domain.ErrUnknownMethod.
func (s *Service) Explain(ctx context.Context, method, query string, docID int) (domain.Analysis, error) {
	doc, err := s.corpus.Get(ctx, docID)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("get document %d: %w", docID, err)
	}

	a := domain.Analysis{
		DocText:   doc.Text,
		Method:    method,
		ChartData: map[string]int{},
	}

	switch method {
	case "regex":
		a.Steps = s.explainRegex(query, doc)
	case "boolean":
		a.Steps = s.explainBoolean(query, doc)
	case "vsm", "feedback":
		a.Steps = s.explainVSM(query, doc)
	case "bim":
		a.Steps = s.explainBIM(query, doc)
	case "clustering":
		a.Steps = s.explainClustering(ctx, doc)
	default:
		return domain.Analysis{}, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, method)
	}

	if query != "" {
		a.ChartData = chartData(query, doc.Text)
	}
	return a, nil
}

// chartData counts literal occurrences of each distinct query token in the
// document's word-boundary token sequence. Zero-count tokens are omitted;
// when nothing matches the single NoMatchLabel sentinel is returned.
func chartData(query, docText string) map[string]int {
	docTokens := strings.Fields(strings.ToLower(docText))
	counts := make(map[string]int)
	seen := make(map[string]struct{})
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		n := 0
		for _, tok := range docTokens {
			if tok == term {
				n++
			}
		}
		if n > 0 {
			counts[term] = n
		}
	}
	if len(counts) == 0 {
		counts[NoMatchLabel] = 0
	}
	return counts
}

func (s *Service) explainRegex(query string, doc domain.Document) []string {
	steps := []string{fmt.Sprintf("Interpreting %q as a case-insensitive pattern.", query)}
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return append(steps, fmt.Sprintf("Pattern does not compile: %v.", err))
	}
	if loc := re.FindStringIndex(doc.Text); loc != nil {
		steps = append(steps, fmt.Sprintf("Pattern matches at offset %d: %q.", loc[0], doc.Text[loc[0]:loc[1]]))
	} else {
		steps = append(steps, "Pattern does not match this document.")
	}
	return steps
}

func (s *Service) explainBoolean(query string, doc domain.Document) []string {
	steps := []string{"Boolean OR: the document matches when at least one query term occurs in its text."}
	lower := strings.ToLower(doc.Text)
	var found []string
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	if len(found) > 0 {
		steps = append(steps, fmt.Sprintf("Terms found in this document: %s.", strings.Join(found, ", ")))
	} else {
		steps = append(steps, "None of the query terms occur in this document.")
	}
	return steps
}

func (s *Service) explainVSM(query string, doc domain.Document) []string {
	steps := []string{"Vector space model: query and document are TF-IDF vectors; the score is their cosine similarity."}
	docTokens := make(map[string]struct{})
	for _, tok := range text.Tokenize(doc.Text) {
		docTokens[tok] = struct{}{}
	}
	var shared []string
	seen := make(map[string]struct{})
	for _, tok := range text.Tokenize(query) {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := docTokens[tok]; ok {
			shared = append(shared, tok)
		}
	}
	if len(shared) > 0 {
		steps = append(steps, fmt.Sprintf("Query and document share terms: %s.", strings.Join(shared, ", ")))
		steps = append(steps, "Shared terms that are rare across the corpus contribute the most weight.")
	} else {
		steps = append(steps, "Query and document share no terms, so the cosine similarity is zero.")
	}
	return steps
}

func (s *Service) explainBIM(query string, doc domain.Document) []string {
	steps := []string{"Binary independence model: each distinct query term present in the document adds exactly 1 to the score, regardless of how often it occurs."}
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(doc.Text)) {
		tokens[tok] = struct{}{}
	}
	score := 0
	seen := make(map[string]struct{})
	for _, term := range strings.Fields(query) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		if _, ok := tokens[term]; ok {
			score++
		}
	}
	return append(steps, fmt.Sprintf("Score for this document: %d.", score))
}

func (s *Service) explainClustering(ctx context.Context, doc domain.Document) []string {
	steps := []string{"Clustering groups the whole corpus by TF-IDF similarity; no query is involved."}
	results, err := s.clusterer.Cluster(ctx)
	if err != nil {
		return append(steps, "Clustering could not be computed for the current corpus.")
	}
	for _, r := range results {
		if r.ID == doc.ID && r.Cluster != nil {
			return append(steps, fmt.Sprintf("This document is assigned to cluster %d.", *r.Cluster))
		}
	}
	return append(steps, "The corpus has fewer than two documents, so clustering was not performed.")
}
