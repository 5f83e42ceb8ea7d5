package search

import (
	"math"
	"testing"
)

func TestVectorizer_IdenticalTextsAreParallel(t *testing.T) {
	collection := []string{"nasi goreng enak", "satu dua tiga", "nasi goreng enak"}
	vec := newVectorizer(collection)

	a := vec.transform(collection[0])
	b := vec.transform(collection[2])
	if got := cosine(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("identical texts: expected cosine 1.0, got %g", got)
	}
}

func TestVectorizer_DisjointTextsAreOrthogonal(t *testing.T) {
	collection := []string{"nasi goreng", "gunung bromo"}
	vec := newVectorizer(collection)

	a := vec.transform(collection[0])
	b := vec.transform(collection[1])
	if got := cosine(a, b); got != 0 {
		t.Errorf("disjoint texts: expected cosine 0, got %g", got)
	}
}

func TestVectorizer_UnknownTermsYieldZeroVector(t *testing.T) {
	vec := newVectorizer([]string{"nasi goreng"})

	row := vec.transform("zzz yyy")
	for i, x := range row {
		if x != 0 {
			t.Errorf("expected zero vector, got %g at column %d", x, i)
		}
	}
}

func TestVectorizer_RowsAreNormalized(t *testing.T) {
	collection := []string{"nasi goreng enak sekali", "nasi pedas", "gunung bromo indah"}
	vec := newVectorizer(collection)

	for _, doc := range collection {
		var norm float64
		for _, x := range vec.transform(doc) {
			norm += x * x
		}
		if math.Abs(norm-1.0) > 1e-9 {
			t.Errorf("doc %q: expected unit norm, got %g", doc, math.Sqrt(norm))
		}
	}
}

func TestVectorizer_SharedTermScoresBetweenZeroAndOne(t *testing.T) {
	collection := []string{"nasi goreng", "nasi pedas"}
	vec := newVectorizer(collection)

	got := cosine(vec.transform(collection[0]), vec.transform(collection[1]))
	if got <= 0 || got >= 1 {
		t.Errorf("partially overlapping texts: expected cosine in (0,1), got %g", got)
	}
}
