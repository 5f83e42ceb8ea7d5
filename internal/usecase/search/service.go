// Package search implements the retrieval strategies: regex, boolean OR,
// vector-space model, binary independence model, and k-means clustering.
package search

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/temu-lab/temudoc/internal/domain"
	"github.com/temu-lab/temudoc/internal/metrics"
	"github.com/temu-lab/temudoc/internal/text"
)

// Config tunes the ranking engine.
type Config struct {
	Clusters   int   // k for clustering (default 2)
	KMeansRuns int   // random restarts per clustering call (default 10)
	KMeansSeed int64 // fixed seed for reproducible clustering (default 42)
}

// ApplyDefaults fills unset fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Clusters < 2 {
		c.Clusters = 2
	}
	if c.KMeansRuns <= 0 {
		c.KMeansRuns = 10
	}
	if c.KMeansSeed == 0 {
		c.KMeansSeed = 42
	}
}

// Service evaluates queries against the corpus. Each call reads a fresh
// corpus snapshot; nothing is cached between requests.
type Service struct {
	corpus    CorpusReader
	pre       *text.Preprocessor
	corrector *text.Corrector
	cfg       Config
}

// New creates a search service.
func New(corpus CorpusReader, pre *text.Preprocessor, corrector *text.Corrector, cfg Config) *Service {
	cfg.ApplyDefaults()
	return &Service{corpus: corpus, pre: pre, corrector: corrector, cfg: cfg}
}

// Regex returns every document whose text the case-insensitive pattern
// matches. A malformed pattern yields domain.ErrInvalidPattern. No typo
// suggestion: regex queries are not natural-language tokens.
func (s *Service) Regex(ctx context.Context, pattern string) ([]domain.Result, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPattern, err)
	}

	docs, err := s.corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}

	results := make([]domain.Result, 0)
	for _, doc := range docs {
		if re.MatchString(doc.Text) {
			results = append(results, domain.NewResult(doc))
		}
	}
	metrics.SearchesTotal.WithLabelValues("regex").Inc()
	return results, nil
}

// Boolean returns every document whose lowercased text contains at least one
// whitespace-split lowercased query token as a substring.
func (s *Service) Boolean(ctx context.Context, query string) ([]domain.Result, *string, error) {
	docs, err := s.corpus.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list corpus: %w", err)
	}

	terms := strings.Fields(strings.ToLower(query))
	results := make([]domain.Result, 0)
	for _, doc := range docs {
		lower := strings.ToLower(doc.Text)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				results = append(results, domain.NewResult(doc))
				break
			}
		}
	}
	metrics.SearchesTotal.WithLabelValues("boolean").Inc()
	return results, s.suggest(strings.Join(terms, " "), docs), nil
}

// VSM ranks documents by cosine similarity between TF-IDF vectors built over
// the preprocessed corpus plus the preprocessed query. Only documents with
// similarity strictly greater than zero are returned, sorted descending with
// ties kept in corpus order. A query that is empty after preprocessing
// yields an empty result set.
func (s *Service) VSM(ctx context.Context, query string, opts text.Options) ([]domain.Result, *string, error) {
	docs, err := s.corpus.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list corpus: %w", err)
	}

	cleanQuery := s.pre.Process(query, opts)
	cleanCorpus := make([]string, len(docs))
	for i := range docs {
		cleanCorpus[i] = s.pre.Process(docs[i].Text, opts)
	}

	results := make([]domain.Result, 0)
	if len(docs) > 0 && strings.TrimSpace(cleanQuery) != "" {
		collection := append(append(make([]string, 0, len(docs)+1), cleanCorpus...), cleanQuery)
		vec := newVectorizer(collection)
		queryVec := vec.transform(cleanQuery)

		sims := make([]float64, len(docs))
		for i := range docs {
			sims[i] = cosine(queryVec, vec.transform(cleanCorpus[i]))
		}

		order := make([]int, len(docs))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return sims[order[a]] > sims[order[b]]
		})

		for _, idx := range order {
			if sims[idx] <= 0 {
				continue
			}
			r := domain.NewResult(docs[idx]).WithScore(sims[idx])
			r.ProcessedText = cleanCorpus[idx]
			results = append(results, r)
		}
	}

	// The suggestion runs on the raw query; a no-op correction is not surfaced.
	suggestion := s.suggest(query, docs)
	if suggestion != nil && *suggestion == strings.ToLower(query) {
		suggestion = nil
	}
	metrics.SearchesTotal.WithLabelValues("vsm").Inc()
	return results, suggestion, nil
}

// Feedback is the relevance-feedback strategy. It is a documented
// pass-through to VSM: no feedback loop is implemented.
func (s *Service) Feedback(ctx context.Context, query string, opts text.Options) ([]domain.Result, *string, error) {
	return s.VSM(ctx, query, opts)
}

// BIM scores each document by the number of distinct raw query terms present
// in the document's lowercased token set. Presence only, not term frequency.
// Zero-score documents are excluded; results sort descending by score with
// ties kept in corpus order.
func (s *Service) BIM(ctx context.Context, query string) ([]domain.Result, *string, error) {
	docs, err := s.corpus.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list corpus: %w", err)
	}

	terms := strings.Fields(query)
	distinct := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		distinct = append(distinct, t)
	}

	results := make([]domain.Result, 0)
	for _, doc := range docs {
		tokens := make(map[string]struct{})
		for _, tok := range strings.Fields(strings.ToLower(doc.Text)) {
			tokens[tok] = struct{}{}
		}
		score := 0
		for _, term := range distinct {
			if _, ok := tokens[term]; ok {
				score++
			}
		}
		if score > 0 {
			results = append(results, domain.NewResult(doc).WithScore(float64(score)))
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return *results[a].Score > *results[b].Score
	})
	metrics.SearchesTotal.WithLabelValues("bim").Inc()
	return results, s.suggest(strings.Join(terms, " "), docs), nil
}

// Cluster partitions the whole corpus into Config.Clusters groups over a
// TF-IDF matrix of the raw document texts. With fewer than two documents the
// corpus is returned unchanged, without cluster labels. Result order equals
// corpus order; there is no ranking.
func (s *Service) Cluster(ctx context.Context) ([]domain.Result, error) {
	docs, err := s.corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}

	results := make([]domain.Result, 0, len(docs))
	if len(docs) < 2 {
		for _, doc := range docs {
			results = append(results, domain.NewResult(doc))
		}
		return results, nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text
	}
	vec := newVectorizer(texts)
	rows := make([][]float64, len(texts))
	for i := range texts {
		rows[i] = vec.transform(texts[i])
	}

	labels := kmeans(rows, s.cfg.Clusters, s.cfg.KMeansRuns, s.cfg.KMeansSeed)
	for i, doc := range docs {
		results = append(results, domain.NewResult(doc).WithCluster(labels[i]))
	}
	metrics.SearchesTotal.WithLabelValues("clustering").Inc()
	return results, nil
}

// suggest rebuilds the vocabulary from the corpus snapshot and runs the typo
// corrector. Returns nil when no substitution occurred.
func (s *Service) suggest(query string, docs []domain.Document) *string {
	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text
	}
	vocab := text.BuildVocabulary(texts)
	if corrected, ok := s.corrector.Correct(query, vocab); ok {
		return &corrected
	}
	return nil
}
