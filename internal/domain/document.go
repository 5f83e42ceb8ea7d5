package domain

// DefaultCategory is assigned to documents created without an explicit category.
const DefaultCategory = "Umum"

// Document is a corpus entry. Stored documents are immutable once inserted;
// searches operate on copies and never touch the canonical record.
type Document struct {
	ID       int
	Text     string
	Category string
}

// Result is a per-query snapshot of a document, annotated with whatever the
// strategy that produced it computed. Score, Cluster and ProcessedText are
// transient: they belong to one retrieval call, never to the stored document.
type Result struct {
	Document
	Score         *float64
	Cluster       *int
	ProcessedText string
}

// NewResult wraps a document copy with no annotations.
func NewResult(doc Document) Result {
	return Result{Document: doc}
}

// WithScore returns a copy of the result carrying a similarity or match score.
func (r Result) WithScore(score float64) Result {
	r.Score = &score
	return r
}

// WithCluster returns a copy of the result carrying a cluster label.
func (r Result) WithCluster(label int) Result {
	r.Cluster = &label
	return r
}

// TermCount is a vocabulary term with its corpus-wide frequency.
type TermCount struct {
	Text  string
	Value int
}

// Analysis is the explainer output for a (method, query, document) triple.
type Analysis struct {
	DocText   string
	Method    string
	Steps     []string
	ChartData map[string]int
}
