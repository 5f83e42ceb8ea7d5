package search

import (
	"math"

	"github.com/temu-lab/temudoc/internal/text"
)

// vectorizer builds L2-normalized TF-IDF vectors over a fixed collection.
// IDF uses the smoothed form ln((1+n)/(1+df))+1, so a term appearing in every
// document still carries weight 1 and two identical texts map to identical
// vectors (cosine 1.0). The query is fitted as part of the collection so its
// vector lies in the same term space as the documents.
type vectorizer struct {
	columns map[string]int
	idf     []float64
}

func newVectorizer(collection []string) *vectorizer {
	v := &vectorizer{columns: make(map[string]int)}

	var df []int
	for _, doc := range collection {
		seen := make(map[string]struct{})
		for _, tok := range text.Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			col, ok := v.columns[tok]
			if !ok {
				col = len(v.columns)
				v.columns[tok] = col
				df = append(df, 0)
			}
			df[col]++
		}
	}

	n := float64(len(collection))
	v.idf = make([]float64, len(df))
	for col, d := range df {
		v.idf[col] = math.Log((1+n)/float64(1+d)) + 1
	}
	return v
}

// transform returns the L2-normalized TF-IDF vector for doc. Terms outside
// the fitted collection are ignored. A doc with no known terms yields the
// zero vector.
func (v *vectorizer) transform(doc string) []float64 {
	row := make([]float64, len(v.idf))
	for _, tok := range text.Tokenize(doc) {
		if col, ok := v.columns[tok]; ok {
			row[col] += v.idf[col]
		}
	}
	var norm float64
	for _, x := range row {
		norm += x * x
	}
	if norm == 0 {
		return row
	}
	norm = math.Sqrt(norm)
	for i := range row {
		row[i] /= norm
	}
	return row
}

// cosine of two L2-normalized vectors is their dot product.
func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}
